package main

import (
	"context"
	"fmt"
	"time"

	"agent86/internal/di"
	"agent86/internal/infrastructure/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the model backend is reachable and serves the configured model",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "How long to wait for the backend")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	settings, envFiles, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerAdapter(logger.Options{Level: settings.LogLevel})
	if err != nil {
		return err
	}
	defer log.Close()
	log.Debug("Settings loaded", "env_files", envFiles)

	llm, err := di.NewCompletion(settings, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	if err := llm.Ping(ctx); err != nil {
		color.New(color.FgRed).Printf("✗ %s backend at %s: %v\n", settings.Backend, settings.BaseURL, err)
		return fmt.Errorf("backend check failed: %w", err)
	}

	color.New(color.FgGreen).Printf("✓ %s backend at %s serves %s\n", settings.Backend, settings.BaseURL, settings.Model)
	return nil
}
