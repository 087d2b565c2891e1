package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "dailybrief",
	Short: "Personal automation agent for daily snippets and chart notifications",
	Long: "Dailybrief runs a scheduled content-retrieval and notification-dispatch\n" +
		"pipeline: a daily scraped text snippet and on-demand financial charts,\n" +
		"delivered to a single operator over a messaging channel.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Path to config file")
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
