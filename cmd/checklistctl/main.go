package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"duediligence/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "checklistctl",
		Short: "Manage due diligence checklist templates",
		Long: `checklistctl validates and publishes versioned due diligence checklist
templates and issues development tokens for the onboarding API.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.TemplateCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
