package main

import (
	"os"

	"github.com/go-push-inbox/internal/config"
	"github.com/go-push-inbox/internal/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logrus.Logger

	agentURL string

	rootCmd = &cobra.Command{
		Use:   "inboxctl",
		Short: "Inspect and drive a running push inbox agent",
		Long: `inboxctl talks to a running agent over its HTTP API.

It lists, marks and deletes stored notifications, prints the device
token and sends test messages through the webhook or Redis.`,
		SilenceUsage: true,
	}
)

func init() {
	_ = godotenv.Load()
	cfg = config.Load()
	log = logging.NewWithOutput(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	rootCmd.PersistentFlags().StringVar(&agentURL, "agent", cfg.AgentURL, "base URL of the running agent")
	rootCmd.AddCommand(listCmd, readCmd, deleteCmd, clearCmd, tokenCmd, sendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
