package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dailybrief/pkg/pipeline"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Run the daily text pipeline once",
	Long: "Fetches today's snippet from the configured source, stages it and\n" +
		"delivers it unless it was already sent today.",
	Args: cobra.NoArgs,
	RunE: runDaily,
}

func runDaily(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	outcome, err := a.scheduler.RunDaily(ctx)
	if err != nil {
		return err
	}
	if outcome == pipeline.Suppressed {
		fmt.Fprintln(cmd.OutOrStdout(), "Already sent today, nothing to do.")
	}
	return nil
}
