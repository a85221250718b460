package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opsbrain/ceo-operator/internal/config"
	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/spf13/cobra"
)

// NewHealthCmd creates the health command, which queries the running server
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show system health from the running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client := &http.Client{Timeout: 10 * time.Second}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				cfg.BaseURL+"/healthz?mode=extended", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("server unreachable at %s: %w", cfg.BaseURL, err)
			}
			defer func() { _ = resp.Body.Close() }()

			var health struct {
				Status string                 `json:"status"`
				Detail *healing.HealthSummary `json:"detail"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}

			fmt.Printf("Overall health: %s\n", health.Status)
			if health.Detail == nil {
				return nil
			}
			fmt.Printf("Recent errors: %d (%d critical, %d high)\n",
				health.Detail.RecentErrors, health.Detail.CriticalErrors, health.Detail.HighErrors)

			if len(health.Detail.ComponentHealth) > 0 {
				fmt.Println("\nComponent health:")
				for component, healthy := range health.Detail.ComponentHealth {
					state := "healthy"
					if !healthy {
						state = "unhealthy"
					}
					fmt.Printf("  %-20s %s\n", component, state)
				}
			}
			if len(health.Detail.CircuitBreakers) > 0 {
				fmt.Println("\nCircuit breakers:")
				for component, state := range health.Detail.CircuitBreakers {
					fmt.Printf("  %-20s %s\n", component, state)
				}
			}
			return nil
		},
	}
}
