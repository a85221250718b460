package commands

import (
	"fmt"

	"github.com/opsbrain/ceo-operator/internal/config"
	"github.com/opsbrain/ceo-operator/internal/goals"
	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/scheduler"
	"github.com/opsbrain/ceo-operator/internal/services/ai"
	"github.com/opsbrain/ceo-operator/internal/services/notion"
	"github.com/opsbrain/ceo-operator/internal/services/slack"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewUpdateCmd creates the update command for manually triggering a
// scheduled update
func NewUpdateCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Manually trigger a scheduled update",
		Long:  "Build and post one scheduled update (weekly_plan, midweek_nudge, friday_retro) immediately.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.SlackChannel == "" {
				return fmt.Errorf("SLACK_CHANNEL is not configured")
			}

			logger := zap.NewNop()
			monitor := healing.NewErrorMonitor(logger)
			store := notion.NewGuardedStore(notion.NewClient(cfg.NotionKey, cfg.NotionDatabaseID, logger), monitor)
			goalManager, err := goals.NewManager(cfg.GoalsFile, logger)
			if err != nil {
				return fmt.Errorf("load goals: %w", err)
			}
			provider := ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, logger, false)
			notifier := slack.NewNotifier(cfg.SlackBotToken, logger)

			schedCfg := scheduler.DefaultConfig(cfg.SlackChannel)
			schedCfg.WeeklyHours = cfg.Scheduler.WeeklyHours

			sched := scheduler.New(schedCfg, store, goalManager, provider, notifier, nil, monitor, logger)
			if err := sched.TriggerUpdate(cmd.Context(), scheduler.UpdateKind(kind)); err != nil {
				return err
			}
			fmt.Printf("Posted %s to %s\n", kind, cfg.SlackChannel)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "weekly_plan", "Update kind: weekly_plan, midweek_nudge, or friday_retro")
	return cmd
}
