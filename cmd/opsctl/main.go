package main

import (
	"fmt"
	"os"

	"github.com/opsbrain/ceo-operator/cmd/opsctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "opsctl",
		Short: "Operator tool for the OpsBrain assistant",
		Long:  "CLI tool for inspecting tasks, goals, and system health",
	}

	rootCmd.AddCommand(commands.NewTasksCmd())
	rootCmd.AddCommand(commands.NewGoalsCmd())
	rootCmd.AddCommand(commands.NewHealthCmd())
	rootCmd.AddCommand(commands.NewUpdateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
