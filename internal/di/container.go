package di

import (
	"fmt"
	"io"

	"agent86/internal/application/port/input"
	"agent86/internal/application/port/output"
	"agent86/internal/application/service"
	"agent86/internal/infrastructure/browser/rod"
	"agent86/internal/infrastructure/env"
	"agent86/internal/infrastructure/llm/ollama"
	"agent86/internal/infrastructure/llm/openai"
	"agent86/internal/infrastructure/logger"
	"agent86/internal/infrastructure/prompts"
	"agent86/internal/infrastructure/tools/internet"
	"agent86/internal/infrastructure/tools/terminal"
	"agent86/internal/usecase/controller"
)

type Container struct {
	Settings env.Settings
	Logger   *logger.LoggerAdapter
	LLM      output.CompletionPort
	Tools    output.ToolRegistry
	Renderer output.PageRenderer
	Agent    input.AgentRunner
}

// LogName names the run log file, usually the goal.
type Config struct {
	Settings   env.Settings
	EnvFiles   []string
	LogName    string
	LogConsole io.Writer
	UI         output.UserInteractionPort
}

func NewContainer(cfg Config) (*Container, error) {
	s := cfg.Settings

	log, err := logger.NewLoggerAdapter(logger.Options{
		Level:   s.LogLevel,
		Dir:     s.LogDir,
		Name:    cfg.LogName,
		Console: cfg.LogConsole,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	log.Debug("Settings loaded",
		"env_files", cfg.EnvFiles,
		"backend", s.Backend,
		"model", s.Model,
		"max_iterations", s.MaxIterations,
		"max_steps", s.MaxStepsPerTask,
	)

	llm, err := NewCompletion(s, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	counter, err := prompts.NewTokenCounter(s.Tokenizer)
	if err != nil {
		log.Warn("Tokenizer unavailable, using approximate token counts", "tokenizer", s.Tokenizer, "error", err)
	}
	generator, err := prompts.NewGenerator(prompts.NewBudget(counter, s.ContextSize))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	var renderer output.PageRenderer
	if s.InternetRender {
		renderer = rod.NewRenderer(rod.Config{
			Timeout:   2 * s.InternetTimeout,
			IdleWait:  rod.DefaultConfig().IdleWait,
			NoSandbox: true,
			Logger:    log,
		})
	}

	tools := service.NewToolRegistry(
		terminal.New(terminal.Config{
			Enabled:   s.EnableTerminal,
			Shell:     s.TerminalShell,
			Timeout:   s.TerminalTimeout,
			MaxOutput: s.TerminalMaxOutput,
			Logger:    log,
		}),
		internet.New(internet.Config{
			Enabled:   s.EnableInternet,
			Timeout:   s.InternetTimeout,
			MaxChars:  s.InternetMaxChars,
			RateLimit: s.InternetRateLimit,
			Renderer:  renderer,
			Logger:    log,
		}),
	)

	agent := controller.New(llm, tools, generator, log, controller.Config{
		MaxIterations:   s.MaxIterations,
		MaxStepsPerTask: s.MaxStepsPerTask,
		ContextWindow:   s.ContextWindow,
	}, controller.WithUserInteraction(cfg.UI))

	log.Debug("Container ready",
		"backend", s.Backend,
		"model", s.Model,
		"terminal", s.EnableTerminal,
		"internet", s.EnableInternet,
		"render", s.InternetRender,
	)

	return &Container{
		Settings: s,
		Logger:   log,
		LLM:      llm,
		Tools:    tools,
		Renderer: renderer,
		Agent:    agent,
	}, nil
}

// NewCompletion builds the inference adapter selected by LLM_BACKEND.
func NewCompletion(s env.Settings, log output.LoggerPort) (output.CompletionPort, error) {
	switch s.Backend {
	case env.BackendOpenAI:
		return openai.NewAdapter(openai.Config{
			APIKey:      s.APIKey,
			BaseURL:     s.BaseURL,
			Model:       s.Model,
			Temperature: s.Temperature,
			SlotID:      s.SlotID,
			Timeout:     s.LLMTimeout,
			Logger:      log,
		}), nil
	case env.BackendOllama:
		llm, err := ollama.NewAdapter(ollama.Config{
			ServerURL:   s.BaseURL,
			Model:       s.Model,
			Temperature: s.Temperature,
			ContextSize: s.ContextSize,
			Timeout:     s.LLMTimeout,
			Logger:      log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama backend: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", s.Backend)
	}
}

func (c *Container) Close() {
	if c.Renderer != nil {
		c.Renderer.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
