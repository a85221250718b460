package commands

import (
	"fmt"
	"strings"

	"github.com/opsbrain/ceo-operator/internal/config"
	"github.com/opsbrain/ceo-operator/internal/goals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewGoalsCmd creates the goals command with dashboard, actions, and research
// subcommands
func NewGoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Inspect business goals",
	}
	cmd.AddCommand(newGoalsDashboardCmd())
	cmd.AddCommand(newGoalsActionsCmd())
	cmd.AddCommand(newGoalsResearchCmd())
	return cmd
}

func loadGoals() (*goals.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	manager, err := goals.NewManager(cfg.GoalsFile, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	return manager, nil
}

func newGoalsDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the goal overview with progress by area",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadGoals()
			if err != nil {
				return err
			}

			d := manager.BuildDashboard()
			fmt.Printf("Goals: %d total, %d completed (%.1f%%)\n",
				d.Overview.TotalGoals, d.Overview.CompletedGoals, d.Overview.CompletionRate)
			fmt.Printf("In progress: %d, blocked: %d\n\n", d.Overview.InProgress, d.Overview.BlockedGoals)

			fmt.Println("Progress by area:")
			for _, area := range []string{"SALES", "DELIVERY", "PRODUCT", "FINANCIAL", "TEAM", "PROCESS"} {
				fmt.Printf("  %-10s %.1f%%\n", area, d.AreaProgress[area])
			}

			if len(d.HighPriorityActions) > 0 {
				fmt.Println("\nHigh priority actions this week:")
				for i, a := range d.HighPriorityActions {
					fmt.Printf("  %d. [%s] %s\n", i+1, a.Area, a.Action)
				}
			}
			return nil
		},
	}
}

func newGoalsActionsCmd() *cobra.Command {
	var area string
	var daily bool
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List planned actions across active goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadGoals()
			if err != nil {
				return err
			}

			items := manager.WeeklyActions(area)
			label := "Weekly"
			if daily {
				items = manager.DailyActions(area)
				label = "Daily"
			}

			suffix := ""
			if area != "" {
				suffix = " - " + strings.ToUpper(area)
			}
			fmt.Printf("%s actions%s:\n", label, suffix)
			if len(items) == 0 {
				fmt.Println("  (none)")
				return nil
			}
			for i, item := range items {
				fmt.Printf("  %d. [%s] %s\n", i+1, item.Area, item.Action)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "Filter by business area (e.g. SALES)")
	cmd.Flags().BoolVar(&daily, "daily", false, "Show daily actions instead of weekly")
	return cmd
}

func newGoalsResearchCmd() *cobra.Command {
	var area string
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Suggest research directions for an area",
		RunE: func(cmd *cobra.Command, args []string) error {
			if area == "" {
				area = "SALES"
			}
			prompts := goals.ResearchPrompts(area)
			if prompts == nil {
				return fmt.Errorf("unknown area %q", area)
			}
			fmt.Printf("Research opportunities - %s:\n", strings.ToUpper(area))
			for i, p := range prompts {
				fmt.Printf("  %d. %s\n", i+1, p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "Business area (SALES, DELIVERY, PRODUCT, FINANCIAL, TEAM, PROCESS)")
	return cmd
}
