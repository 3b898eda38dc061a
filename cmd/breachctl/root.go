package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/console/client"
	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
)

var (
	apiAddr    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "breachctl",
	Short:         "Operator CLI for the ICS breach simulator",
	Long:          "breachctl triggers, inspects and restores the simulated dashboards, either through the simd API or directly through the shared breach flag store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "addr", "http://localhost:8080", "simd API base URL")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (redis settings for trigger)")

	rootCmd.AddCommand(triggerCmd, statusCmd, breachCmd, restoreCmd, notificationsCmd, watchCmd)
}

func apiClient() *client.Client {
	return client.New(apiAddr)
}

func targetArg(args []string) (domain.Target, error) {
	return domain.ParseTarget(args[0])
}

// cliLogger — консольный логгер для прямой работы с Redis.
func cliLogger(cfg infra.LoggerConfig) *zap.Logger {
	cfg.Format = "console"
	if cfg.Level == "" || cfg.Level == "info" {
		cfg.Level = "warn"
	}
	logger, err := infra.NewLogger(cfg)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
