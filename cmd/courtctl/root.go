package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL   string
	apiToken string
)

var rootCmd = &cobra.Command{
	Use:   "courtctl",
	Short: "Inspect arbitration courts and dispute timelines",
	Long: `courtctl queries a courtflow daemon for tracked courts and disputes,
and can resolve a dispute snapshot offline without a running daemon.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("COURTFLOW_API", "http://localhost:8080"), "courtflow API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("COURTFLOW_TOKEN"), "bearer token for authenticated endpoints")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
