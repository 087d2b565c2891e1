package main

import (
	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart <SYMBOL> [startDate] [endDate]",
	Short: "Render and deliver a technical-analysis chart",
	Long: "Invokes the external renderer for the given symbol and delivers the\n" +
		"resulting chart image. Dates are YYYY-MM-DD; when omitted the renderer\n" +
		"defaults to a 2-year lookback ending today. On-demand requests are\n" +
		"never deduplicated: every explicit invocation sends.",
	Args: cobra.RangeArgs(1, 3),
	RunE: runChart,
}

func runChart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	symbol := args[0]
	var startDate, endDate string
	if len(args) > 1 {
		startDate = args[1]
	}
	if len(args) > 2 {
		endDate = args[2]
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	_, err = a.scheduler.RunChart(ctx, symbol, startDate, endDate)
	return err
}
