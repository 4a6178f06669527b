package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"agent86/internal/di"
	"agent86/internal/infrastructure/env"
	"agent86/internal/infrastructure/userinteraction"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	maxIterations int
	maxSteps      int
	noTerminal    bool
	noInternet    bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "agent86 [goal...]",
	Short: "Local AI agent that plans a goal into tasks and works them with terminal and web tools",
	Long: `agent86 asks a small local language model to split a goal into a few tasks,
then works each task in a think/act/observe loop using a shell and HTTP client.

Without a goal argument it prompts for goals interactively until "quit".`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runAgent,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Global step ceiling (default from MAX_ITERATIONS)")
	rootCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Per-task step ceiling (default from MAX_REASONING_STEPS)")
	rootCmd.Flags().BoolVar(&noTerminal, "no-terminal", false, "Disable the terminal tool")
	rootCmd.Flags().BoolVar(&noInternet, "no-internet", false, "Disable the internet tool")

	rootCmd.AddCommand(checkCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadSettings(cmd *cobra.Command) (env.Settings, []string, error) {
	envService := env.NewEnvService()

	s, err := env.LoadSettings(envService)
	if err != nil {
		return env.Settings{}, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-iterations") {
		s.MaxIterations = maxIterations
	}
	if flags.Changed("max-steps") {
		s.MaxStepsPerTask = maxSteps
	}
	if noTerminal {
		s.EnableTerminal = false
	}
	if noInternet {
		s.EnableInternet = false
	}
	if verbose {
		s.LogLevel = "debug"
	}
	if err := s.Validate(); err != nil {
		return env.Settings{}, nil, fmt.Errorf("invalid flags: %w", err)
	}
	return s, envService.Loaded(), nil
}

func runAgent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, envFiles, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ui := userinteraction.NewConsoleUserInteraction()
	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal != "" {
		return runGoal(ctx, di.Config{Settings: settings, EnvFiles: envFiles, LogName: goal, UI: ui}, goal, true)
	}

	checked := false
	for {
		goal, err := ui.AskGoal(ctx)
		if errors.Is(err, userinteraction.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		err = runGoal(ctx, di.Config{Settings: settings, EnvFiles: envFiles, LogName: goal, UI: ui}, goal, !checked)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			color.New(color.FgRed).Printf("\nRun failed: %v\n", err)
		default:
			checked = true
		}
	}
}

// runGoal builds a container per goal so each goal gets its own log file.
func runGoal(ctx context.Context, cfg di.Config, goal string, ping bool) error {
	container, err := di.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer container.Close()

	if path := container.Logger.Path(); path != "" {
		color.New(color.Faint).Printf("Logging to %s\n", path)
	}

	if ping {
		if err := container.LLM.Ping(ctx); err != nil {
			return fmt.Errorf("model backend at %s is not ready: %w", cfg.Settings.BaseURL, err)
		}
	}

	container.Logger.Info("Goal received", "goal", goal)

	result, err := container.Agent.Run(ctx, goal)
	if err != nil {
		return err
	}
	cfg.UI.ShowResult(ctx, result)
	return nil
}
