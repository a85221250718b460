package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/opsbrain")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("NOTION_API_KEY", "secret_test")
	t.Setenv("NOTION_DATABASE_ID", "db123")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")
	t.Setenv("CONFIG_FILE", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %s", cfg.ServerPort)
	}
	if cfg.RateLimitRate != "5-S" {
		t.Errorf("RateLimitRate = %s", cfg.RateLimitRate)
	}
	if !cfg.Scheduler.MondayPlan || cfg.Scheduler.WeeklyHours != 5 {
		t.Errorf("Scheduler = %+v", cfg.Scheduler)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadOverlay(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "opsbrain.yaml")
	content := `
scheduler:
  monday_plan: true
  wednesday_nudge: false
  friday_retro: true
  weekly_hours: 8
goals:
  file: /data/goals.json
slack:
  channel: C-ops
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scheduler.WednesdayNudge || cfg.Scheduler.WeeklyHours != 8 {
		t.Errorf("Scheduler = %+v", cfg.Scheduler)
	}
	if cfg.GoalsFile != "/data/goals.json" || cfg.SlackChannel != "C-ops" {
		t.Errorf("overlay not applied: %+v", cfg)
	}
}

func TestLoadBadOverlay(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("scheduler: ["), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed overlay")
	}
}
