package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/opsbrain/ceo-operator/internal/config"
	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/logger"
	"github.com/opsbrain/ceo-operator/internal/queue"
	"github.com/opsbrain/ceo-operator/internal/services/notion"
	"github.com/opsbrain/ceo-operator/internal/services/slack"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"github.com/opsbrain/ceo-operator/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() { _ = jobQueue.Close() }()
	zapLogger.Info("connected_to_rabbitmq")

	monitor := healing.NewErrorMonitor(zapLogger)

	notionClient := notion.NewClient(cfg.NotionKey, cfg.NotionDatabaseID, zapLogger)
	store := notion.NewGuardedStore(notionClient, monitor)
	engine := taskops.NewEngine(store, zapLogger)

	notifier := slack.NewNotifier(cfg.SlackBotToken, zapLogger)

	worker := workers.NewBulkOpsWorker(engine, store, jobQueue, notifier, monitor, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		zapLogger.Info("worker_shutting_down")
		cancel()
	}()

	if err := worker.Run(ctx, cfg.RabbitMQPrefetch); err != nil && ctx.Err() == nil {
		zapLogger.Fatal("worker_stopped_with_error", zap.Error(err))
	}

	zapLogger.Info("worker_exited")
}
