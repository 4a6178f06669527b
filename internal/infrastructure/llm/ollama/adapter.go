package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agent86/internal/application/port/output"
	"agent86/internal/infrastructure/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

var _ output.CompletionPort = (*Adapter)(nil)

// Ollama keeps no per-client cache, so Reset is a no-op.
type Adapter struct {
	llm         llms.Model
	httpClient  *http.Client
	serverURL   string
	model       string
	temperature float64
	logger      output.LoggerPort
}

type Config struct {
	ServerURL   string
	Model       string
	Temperature float64
	ContextSize int
	Timeout     time.Duration
	Logger      output.LoggerPort
}

func NewAdapter(cfg Config) (*Adapter, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	opts := []ollama.Option{
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	}
	if cfg.ContextSize > 0 {
		opts = append(opts, ollama.WithRunnerNumCtx(cfg.ContextSize))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	var log output.LoggerPort = logger.NewNop()
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	return &Adapter{
		llm:         llm,
		httpClient:  httpClient,
		serverURL:   strings.TrimRight(cfg.ServerURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      log,
	}, nil
}

func (a *Adapter) Complete(ctx context.Context, req output.CompletionRequest) (string, error) {
	a.logger.Debug("Creating completion",
		"model", a.model,
		"promptChars", len(req.Prompt),
		"maxTokens", req.MaxTokens,
		"stop", req.Stop,
	)

	opts := []llms.CallOption{llms.WithTemperature(a.temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if len(req.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(req.Stop))
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, a.llm, req.Prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	a.logger.Debug("Completion received", "textLen", len(text))
	return text, nil
}

func (a *Adapter) Reset(context.Context) error {
	return nil
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

func (a *Adapter) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.serverURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build tags request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("list models: unexpected status %s", resp.Status)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if sameModel(m.Name, a.model) || sameModel(m.Model, a.model) {
			return nil
		}
		names = append(names, m.Name)
	}
	return fmt.Errorf("model %q not pulled (available: %s)", a.model, strings.Join(names, ", "))
}

// sameModel treats "name" and "name:latest" as the same tag.
func sameModel(a, b string) bool {
	return strings.TrimSuffix(a, ":latest") == strings.TrimSuffix(b, ":latest")
}
