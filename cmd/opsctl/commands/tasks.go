package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/opsbrain/ceo-operator/internal/config"
	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/services/notion"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewTasksCmd creates the tasks command with distribution and cleanup
// subcommands
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect the task backlog",
	}
	cmd.AddCommand(newTasksDistributionCmd())
	cmd.AddCommand(newTasksCleanupCmd())
	return cmd
}

func fetchTasks(ctx context.Context) ([]models.Task, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	client := notion.NewClient(cfg.NotionKey, cfg.NotionDatabaseID, zap.NewNop())
	tasks, err := client.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func newTasksDistributionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distribution",
		Short: "Show task counts by status, priority, and project",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := fetchTasks(cmd.Context())
			if err != nil {
				return err
			}

			dist := taskops.AnalyzeDistribution(tasks)
			fmt.Printf("Total tasks: %d\n", dist.Total)
			printCounts("By status", dist.ByStatus)
			printCounts("By priority", dist.ByPriority)
			printCounts("By project", dist.ByProject)
			fmt.Printf("\nWith due dates: %d, without: %d\n", dist.WithDueDates, dist.WithoutDueDates)
			return nil
		},
	}
}

func newTasksCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "List tasks that look like cleanup candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := fetchTasks(cmd.Context())
			if err != nil {
				return err
			}

			candidates := taskops.IdentifyCleanupCandidates(tasks)
			if len(candidates) == 0 {
				fmt.Println("No cleanup candidates found.")
				return nil
			}
			fmt.Printf("Cleanup candidates: %d\n\n", len(candidates))
			for _, c := range candidates {
				fmt.Printf("  [%s] %q: %s\n", c.Reason, c.Task.Title, c.Description)
			}
			return nil
		},
	}
}

func printCounts(label string, counts map[string]int) {
	fmt.Printf("\n%s:\n", label)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}
