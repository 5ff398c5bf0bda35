// Package main implements the recruiterctl CLI for driving interview
// scheduling workflows: starting negotiations, booking dates, and
// inspecting their progress.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/fyrsmithlabs/interviewd/internal/config"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recruiterctl",
	Short: "CLI for the interview scheduling system",
	Long: `recruiterctl drives interview scheduling negotiations.

Typical flow:
  # Start a negotiation (emails go out once a date is booked)
  recruiterctl start --candidate "Asha Rao" --candidate-email asha@example.com \
      --interviewer "Vik Shah" --interviewer-email vik@example.com

  # Book the interview date
  recruiterctl book interview-4f9c... --date tomorrow

  # Watch it progress
  recruiterctl status interview-4f9c...
  recruiterctl list`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default ~/.config/interviewd/config.yaml)")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(authCmd)
}

// loadConfig loads and validates the shared configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dial connects to Temporal using the configured host and namespace.
// The caller owns the returned client.
func dial(cfg *config.Config) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to Temporal at %s: %w", cfg.Temporal.HostPort, err)
	}
	return c, nil
}
