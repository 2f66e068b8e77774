package main

import (
	"fmt"
	"os"

	"mediscan/internal/config"
	"mediscan/internal/logger"

	"github.com/spf13/cobra"
)

// @title                       MediScan API
// @version                     1.0
// @description                 Medical assistant: chat, image analysis, diabetes risk and session-scoped auth.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

var configDir string

var rootCmd = &cobra.Command{
	Use:   "mediscan",
	Short: "MediScan medical assistant service",
	Long: `MediScan serves the medical assistant API: login/signup gate,
chat and image analysis on Gemini with translation and speech, and a
glucose-based diabetes risk check.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory holding config.yml")
	rootCmd.AddCommand(serveCmd, userAddCmd, riskCmd)
}

// loadConfig reads config.yml and sets up the process logger.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configDir, ".")
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Get(cfg.LogLevel, cfg.LogFormat), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
