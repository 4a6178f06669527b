package env

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"agent86/internal/application/port/output"
)

const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

type Settings struct {
	Backend     string
	BaseURL     string
	APIKey      string
	SlotID      int
	LLMTimeout  time.Duration
	Model       string
	ContextSize int
	Temperature float64
	Tokenizer   string

	MaxIterations   int
	MaxStepsPerTask int
	ContextWindow   int

	EnableTerminal    bool
	EnableInternet    bool
	TerminalTimeout   time.Duration
	TerminalMaxOutput int
	TerminalShell     string
	InternetTimeout   time.Duration
	InternetMaxChars  int
	InternetRateLimit float64
	InternetRender    bool

	LogLevel string
	LogDir   string
}

func DefaultSettings() Settings {
	return Settings{
		Backend:     BackendOpenAI,
		BaseURL:     "http://localhost:8080/v1",
		APIKey:      "sk-no-key-required",
		SlotID:      0,
		LLMTimeout:  2 * time.Minute,
		Model:       "LFM2.5-1.2B-Instruct-Q4_K_M",
		ContextSize: 4096,
		Temperature: 0.7,
		Tokenizer:   "cl100k_base",

		MaxIterations:   10,
		MaxStepsPerTask: 5,
		ContextWindow:   3,

		EnableTerminal:    true,
		EnableInternet:    true,
		TerminalTimeout:   30 * time.Second,
		TerminalMaxOutput: 20000,
		TerminalShell:     "/bin/sh",
		InternetTimeout:   10 * time.Second,
		InternetMaxChars:  5000,
		InternetRateLimit: 2,
		InternetRender:    false,

		LogLevel: "info",
		LogDir:   "log",
	}
}

// LoadSettings reads every setting from cfg, falling back to defaults, and
// validates the result.
func LoadSettings(cfg output.ConfigPort) (Settings, error) {
	d := DefaultSettings()
	s := Settings{
		Backend:     strings.ToLower(cfg.GetWithDefault("LLM_BACKEND", d.Backend)),
		BaseURL:     cfg.GetWithDefault("LLM_BASE_URL", d.BaseURL),
		APIKey:      cfg.GetWithDefault("LLM_API_KEY", d.APIKey),
		SlotID:      cfg.GetInt("LLM_SLOT_ID", d.SlotID),
		LLMTimeout:  cfg.GetDuration("LLM_TIMEOUT", d.LLMTimeout),
		Model:       cfg.GetWithDefault("MODEL_NAME", d.Model),
		ContextSize: cfg.GetInt("MODEL_N_CTX", d.ContextSize),
		Temperature: cfg.GetFloat("MODEL_TEMPERATURE", d.Temperature),
		Tokenizer:   cfg.GetWithDefault("TOKENIZER", d.Tokenizer),

		MaxIterations:   cfg.GetInt("MAX_ITERATIONS", d.MaxIterations),
		MaxStepsPerTask: cfg.GetInt("MAX_REASONING_STEPS", d.MaxStepsPerTask),
		ContextWindow:   cfg.GetInt("CONTEXT_WINDOW", d.ContextWindow),

		EnableTerminal:    cfg.GetBool("ENABLE_TERMINAL", d.EnableTerminal),
		EnableInternet:    cfg.GetBool("ENABLE_INTERNET", d.EnableInternet),
		TerminalTimeout:   cfg.GetDuration("TERMINAL_TIMEOUT", d.TerminalTimeout),
		TerminalMaxOutput: cfg.GetInt("TERMINAL_MAX_OUTPUT", d.TerminalMaxOutput),
		TerminalShell:     cfg.GetWithDefault("TERMINAL_SHELL", d.TerminalShell),
		InternetTimeout:   cfg.GetDuration("INTERNET_TIMEOUT", d.InternetTimeout),
		InternetMaxChars:  cfg.GetInt("INTERNET_MAX_CHARS", d.InternetMaxChars),
		InternetRateLimit: cfg.GetFloat("INTERNET_RATE_LIMIT", d.InternetRateLimit),
		InternetRender:    cfg.GetBool("INTERNET_RENDER", d.InternetRender),

		LogLevel: strings.ToLower(cfg.GetWithDefault("LOG_LEVEL", d.LogLevel)),
		LogDir:   cfg.GetWithDefault("LOG_DIR", d.LogDir),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func (s Settings) Validate() error {
	var errs []error

	switch s.Backend {
	case BackendOpenAI, BackendOllama:
	default:
		errs = append(errs, fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", BackendOpenAI, BackendOllama, s.Backend))
	}
	if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("LLM_BASE_URL is not an absolute URL: %q", s.BaseURL))
	}
	if s.Model == "" {
		errs = append(errs, errors.New("MODEL_NAME is empty"))
	}
	if s.LLMTimeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}
	if s.ContextSize < 256 {
		errs = append(errs, fmt.Errorf("MODEL_N_CTX must be at least 256, got %d", s.ContextSize))
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		errs = append(errs, fmt.Errorf("MODEL_TEMPERATURE must be within [0, 2], got %g", s.Temperature))
	}
	if s.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("MAX_ITERATIONS must be at least 1, got %d", s.MaxIterations))
	}
	if s.MaxStepsPerTask < 1 {
		errs = append(errs, fmt.Errorf("MAX_REASONING_STEPS must be at least 1, got %d", s.MaxStepsPerTask))
	}
	if s.ContextWindow < 0 {
		errs = append(errs, fmt.Errorf("CONTEXT_WINDOW must not be negative, got %d", s.ContextWindow))
	}
	if s.TerminalTimeout <= 0 {
		errs = append(errs, errors.New("TERMINAL_TIMEOUT must be positive"))
	}
	if s.TerminalMaxOutput < 1 {
		errs = append(errs, errors.New("TERMINAL_MAX_OUTPUT must be positive"))
	}
	if s.TerminalShell == "" {
		errs = append(errs, errors.New("TERMINAL_SHELL is empty"))
	}
	if s.InternetTimeout <= 0 {
		errs = append(errs, errors.New("INTERNET_TIMEOUT must be positive"))
	}
	if s.InternetMaxChars < 1 {
		errs = append(errs, errors.New("INTERNET_MAX_CHARS must be positive"))
	}
	if s.InternetRateLimit < 0 {
		errs = append(errs, errors.New("INTERNET_RATE_LIMIT must not be negative"))
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s.LogLevel))
	}

	return errors.Join(errs...)
}
