package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/opsbrain/ceo-operator/internal/config"
	"github.com/opsbrain/ceo-operator/internal/database"
	"github.com/opsbrain/ceo-operator/internal/goals"
	"github.com/opsbrain/ceo-operator/internal/handlers"
	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/logger"
	"github.com/opsbrain/ceo-operator/internal/middleware"
	"github.com/opsbrain/ceo-operator/internal/persona"
	"github.com/opsbrain/ceo-operator/internal/queue"
	"github.com/opsbrain/ceo-operator/internal/scheduler"
	"github.com/opsbrain/ceo-operator/internal/services/ai"
	"github.com/opsbrain/ceo-operator/internal/services/notion"
	"github.com/opsbrain/ceo-operator/internal/services/slack"
	"github.com/opsbrain/ceo-operator/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "ceo-operator-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry (optional)
	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	// Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	if err := db.Migrate(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	// Redis for rate limiting
	redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	zapLogger.Info("connected_to_redis")

	// RabbitMQ, retried to ride out broker startup delays
	jobQueue, err := connectQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
	}
	defer func() { _ = jobQueue.Close() }()

	// Self-healing core
	monitor := healing.NewErrorMonitor(zapLogger)

	// Task store: Notion behind the error monitor's circuit breaker
	notionClient := notion.NewClient(cfg.NotionKey, cfg.NotionDatabaseID, zapLogger)
	store := notion.NewGuardedStore(notionClient, monitor)

	// Repositories
	conversationRepo := database.NewConversationRepository(db)
	recoveryRepo := database.NewRecoveryLogRepository(db)

	// Slack + LLM
	notifier := slack.NewNotifier(cfg.SlackBotToken, zapLogger)
	provider := ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)

	// Goals
	goalManager, err := goals.NewManager(cfg.GoalsFile, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_load_goals", zap.Error(err))
	}

	// Recovery coordinator files tasks into the same Notion store
	coordinator := healing.NewRecoveryCoordinator(monitor, store, recoveryRepo, zapLogger)

	// Health probes over the real dependencies
	healthMonitor := healing.NewHealthMonitor(monitor, zapLogger)
	healthMonitor.RegisterProbe(healing.ComponentDatabase, db.HealthCheck)
	healthMonitor.RegisterProbe(healing.ComponentNotionAPI, notionClient.Ping)
	healthMonitor.RegisterProbe(healing.ComponentNetwork, jobQueue.HealthCheck)

	// Handlers
	slackHandler := handlers.NewSlackHandler(store, provider, persona.NewComposer(), notifier,
		jobQueue, goalManager, conversationRepo, monitor, zapLogger)
	dashboardHandler := handlers.NewDashboardHandler(store, monitor, goalManager, zapLogger)
	healthChecker := handlers.NewHealthChecker(monitor)

	// Router
	r := mux.NewRouter()
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.DashboardOrigins))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimitRate)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	slackRouter := r.PathPrefix("/slack").Subrouter()
	slackRouter.Use(middleware.VerifySlackSignature(cfg.SlackSigningSecret, zapLogger))
	slackRouter.HandleFunc("/events", slackHandler.HandleEvent).Methods("POST")

	apiRouter := r.PathPrefix("/api/dashboard").Subrouter()
	apiRouter.Use(rateLimitMW)
	apiRouter.HandleFunc("/tasks", dashboardHandler.TaskDistribution).Methods("GET")
	apiRouter.HandleFunc("/cleanup", dashboardHandler.CleanupCandidates).Methods("GET")
	apiRouter.HandleFunc("/health", dashboardHandler.HealthSummary).Methods("GET")
	apiRouter.HandleFunc("/goals", dashboardHandler.Goals).Methods("GET")

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Background loops: health probes, recovery watch, weekly cadence
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go healthMonitor.Start(bgCtx)
	go watchForRecovery(bgCtx, monitor, coordinator)

	if cfg.SlackChannel != "" {
		schedCfg := scheduler.Config{
			Channel:        cfg.SlackChannel,
			MondayPlan:     cfg.Scheduler.MondayPlan,
			WednesdayNudge: cfg.Scheduler.WednesdayNudge,
			FridayRetro:    cfg.Scheduler.FridayRetro,
			WeeklyHours:    cfg.Scheduler.WeeklyHours,
		}
		sched := scheduler.New(schedCfg, store, goalManager, provider, notifier,
			conversationRepo, monitor, zapLogger)
		go sched.Start(bgCtx)
	} else {
		zapLogger.Warn("scheduler_disabled_no_slack_channel")
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue dials RabbitMQ with exponential backoff
func connectQueue(amqpURL string, zapLogger *zap.Logger) (queue.JobQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue, nil
		}
		lastErr = err

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
	return nil, lastErr
}

// watchForRecovery checks overall health every five minutes and kicks off
// system recovery when it leaves healthy
func watchForRecovery(ctx context.Context, monitor *healing.ErrorMonitor, coordinator *healing.RecoveryCoordinator) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary := monitor.GetHealthSummary()
			if summary.OverallHealth == "healthy" {
				continue
			}
			recent := monitor.RecentErrors()
			if len(recent) == 0 {
				continue
			}
			coordinator.InitiateSystemRecovery(ctx, recent[len(recent)-1])
		}
	}
}
