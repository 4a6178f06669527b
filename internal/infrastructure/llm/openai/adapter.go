package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"agent86/internal/application/port/output"
	"agent86/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
)

var _ output.CompletionPort = (*Adapter)(nil)

// Adapter uses raw completions so the model continues the prompt verbatim.
type Adapter struct {
	client      *openai.Client
	httpClient  *http.Client
	root        string
	model       string
	temperature float32
	slotID      int
	logger      output.LoggerPort

	slotsUnsupported atomic.Bool
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	// SlotID is the llama-server slot erased by Reset; negative disables.
	SlotID  int
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig(baseURL, model string) Config {
	return Config{
		APIKey:      "sk-no-key-required",
		BaseURL:     baseURL,
		Model:       model,
		Temperature: 0.7,
		Timeout:     2 * time.Minute,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		bodyBytes, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	var requestData map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &requestData)
	}

	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"body", requestData,
	)

	started := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("HTTP Request failed", "error", err, "duration", time.Since(started))
		return nil, err
	}

	t.logger.Debug("HTTP Response",
		"status", resp.Status,
		"statusCode", resp.StatusCode,
		"duration", time.Since(started),
	)
	return resp, nil
}

func NewAdapter(cfg Config) *Adapter {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Logger != nil {
		transport = &loggingTransport{base: transport, logger: cfg.Logger}
	}
	httpClient := &http.Client{Transport: transport, Timeout: cfg.Timeout}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	config.HTTPClient = httpClient

	var log output.LoggerPort = logger.NewNop()
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	return &Adapter{
		client:      openai.NewClientWithConfig(config),
		httpClient:  httpClient,
		root:        strings.TrimSuffix(config.BaseURL, "/v1"),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		slotID:      cfg.SlotID,
		logger:      log,
	}
}

func (a *Adapter) Complete(ctx context.Context, req output.CompletionRequest) (string, error) {
	a.logger.Debug("Creating completion",
		"model", a.model,
		"promptChars", len(req.Prompt),
		"maxTokens", req.MaxTokens,
		"stop", req.Stop,
	)

	resp, err := a.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       a.model,
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: a.temperature,
		Stop:        req.Stop,
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	choice := resp.Choices[0]
	a.logger.Debug("Completion received",
		"finishReason", choice.FinishReason,
		"textLen", len(choice.Text),
		"completionTokens", resp.Usage.CompletionTokens,
	)
	return choice.Text, nil
}

func (a *Adapter) Reset(ctx context.Context) error {
	if a.slotID < 0 || a.slotsUnsupported.Load() {
		return nil
	}

	url := fmt.Sprintf("%s/slots/%d?action=erase", a.root, a.slotID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build slot erase request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erase slot %d: %w", a.slotID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotImplemented:
		a.slotsUnsupported.Store(true)
		a.logger.Warn("Server does not support slot erase, cache reset disabled", "status", resp.StatusCode)
		return nil
	case resp.StatusCode >= 300:
		return fmt.Errorf("erase slot %d: unexpected status %s", a.slotID, resp.Status)
	}
	return nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	models, err := a.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		if m.ID == a.model || strings.TrimSuffix(m.ID, ".gguf") == a.model {
			return nil
		}
		ids = append(ids, m.ID)
	}
	// llama-server serves a single model and may report it by file path
	if len(ids) == 1 {
		a.logger.Warn("Server model id differs from configured model", "server", ids[0], "configured", a.model)
		return nil
	}
	return fmt.Errorf("model %q not served (available: %s)", a.model, strings.Join(ids, ", "))
}
