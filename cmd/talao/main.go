package main

import (
	"os"

	"github.com/spf13/cobra"

	"talao/internal/interfaces/cli/assign"
	"talao/internal/interfaces/cli/migrate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "talao",
		Short: "Talao - ticket inventory, allocation and reconciliation engine",
		Long:  `Talao manages numbered ticket ranges for fundraising events: inventory generation, deficit-driven assignment, door check-in and payment reconciliation.`,
	}

	rootCmd.AddCommand(
		assign.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
