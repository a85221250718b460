// Package config loads application configuration from environment variables,
// with an optional YAML overlay for scheduler and goal settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string `validate:"required"`
	ServerPort  string
	BaseURL     string

	SlackBotToken      string `validate:"required"`
	SlackSigningSecret string
	SlackChannel       string

	NotionKey        string `validate:"required"`
	NotionDatabaseID string `validate:"required"`

	OpenAIKey string
	AIModel   string
	AIBaseURL string

	RedisURL         string
	RabbitMQURL      string `validate:"required"`
	RabbitMQPrefetch int

	GoalsFile     string
	RateLimitRate string

	EnableHSTS       bool
	DashboardOrigins string

	WorkerDebugMode bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string

	Scheduler SchedulerConfig
}

// SchedulerConfig controls the recurring update cadence. Only the YAML
// overlay can change it; the defaults enable the full week.
type SchedulerConfig struct {
	MondayPlan     bool `yaml:"monday_plan"`
	WednesdayNudge bool `yaml:"wednesday_nudge"`
	FridayRetro    bool `yaml:"friday_retro"`
	WeeklyHours    int  `yaml:"weekly_hours"`
}

// overlay is the YAML overlay file shape
type overlay struct {
	Scheduler *SchedulerConfig `yaml:"scheduler"`
	Goals     struct {
		File string `yaml:"file"`
	} `yaml:"goals"`
	Slack struct {
		Channel string `yaml:"channel"`
	} `yaml:"slack"`
}

// Load loads configuration from environment variables. If CONFIG_FILE is set,
// the YAML overlay it names is applied on top.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		SlackChannel:       getEnv("SLACK_CHANNEL", ""),
		NotionKey:          getEnv("NOTION_API_KEY", ""),
		NotionDatabaseID:   getEnv("NOTION_DATABASE_ID", ""),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		AIModel:            getEnv("AI_MODEL", ""),
		AIBaseURL:          getEnv("AI_BASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:   getEnvInt("RABBITMQ_PREFETCH", 1),
		GoalsFile:          getEnv("GOALS_FILE", "data/business_goals.json"),
		RateLimitRate:      getEnv("RATE_LIMIT_RATE", "5-S"),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		DashboardOrigins:   getEnv("DASHBOARD_ORIGINS", "http://localhost:3000"),
		WorkerDebugMode:    getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Scheduler: SchedulerConfig{
			MondayPlan:     true,
			WednesdayNudge: true,
			FridayRetro:    true,
			WeeklyHours:    5,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyOverlay(path); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return nil, fmt.Errorf("missing required configuration: %s", errs[0].Field())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config overlay %s: %w", path, err)
	}

	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parsing config overlay %s: %w", path, err)
	}

	if o.Scheduler != nil {
		c.Scheduler = *o.Scheduler
	}
	if o.Goals.File != "" {
		c.GoalsFile = o.Goals.File
	}
	if o.Slack.Channel != "" {
		c.SlackChannel = o.Slack.Channel
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
