package internet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"
	"agent86/internal/infrastructure/logger"

	"golang.org/x/time/rate"
)

const maxBodyBytes = 2 << 20

var (
	ErrDisabled       = errors.New("internet tool is disabled")
	ErrRenderDisabled = errors.New("page rendering is disabled")
	ErrTimeout        = errors.New("request timed out")
)

type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %s for url: %s", e.Status, e.URL)
}

var _ output.ToolPort = (*Tool)(nil)

type Config struct {
	Enabled  bool
	Timeout  time.Duration
	MaxChars int
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	UserAgent string
	// Renderer serves `internet: render: <url>`; nil disables it.
	Renderer output.PageRenderer
	Client   *http.Client
	Logger   output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Timeout:   10 * time.Second,
		MaxChars:  5000,
		RateLimit: 2,
		UserAgent: "agent86/1.0",
	}
}

type Tool struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  output.LoggerPort
}

func New(cfg Config) *Tool {
	d := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = d.MaxChars
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = d.UserAgent
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	var log output.LoggerPort = logger.NewNop()
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	return &Tool{
		cfg:     cfg,
		client:  client,
		limiter: limiter,
		logger:  log.WithField("tool", entity.ToolInternet),
	}
}

func (t *Tool) Name() entity.ToolName {
	return entity.ToolInternet
}

func (t *Tool) Description() string {
	desc := "Fetch a web page or API over HTTP(S) and return its content as text. POST sends the body as JSON when it is valid JSON."
	if t.cfg.Renderer != nil {
		desc += " RENDER loads the page in a headless browser first, for pages built by JavaScript."
	}
	return desc
}

func (t *Tool) Usage() string {
	if t.cfg.Renderer != nil {
		return "internet: <url> | internet: post: <url> <body> | internet: render: <url>"
	}
	return "internet: <url> | internet: post: <url> <body>"
}

func (t *Tool) Parameters() map[string]interface{} {
	methods := []string{string(entity.MethodGet), string(entity.MethodPost)}
	if t.cfg.Renderer != nil {
		methods = append(methods, string(entity.MethodRender))
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute http(s) URL",
			},
			"method": map[string]interface{}{
				"type": "string",
				"enum": methods,
			},
			"body": map[string]interface{}{
				"type":        "string",
				"description": "Request body for POST",
			},
		},
		"required": []string{"url"},
	}
}

func (t *Tool) Enabled() bool {
	return t.cfg.Enabled
}

func (t *Tool) Execute(ctx context.Context, action entity.Action) (entity.ToolResult, error) {
	if action.Kind != entity.ActionInternet {
		return entity.ToolResult{}, fmt.Errorf("internet tool cannot execute %s action", action.Kind)
	}

	text, err := t.Fetch(ctx, action.Method, action.URL, action.Body)
	switch {
	case errors.Is(err, ErrDisabled):
		return entity.FailedToolResult("Internet tool is disabled"), nil
	case errors.Is(err, ErrTimeout):
		return entity.FailedToolResult("Request timed out after %s", t.cfg.Timeout), nil
	case err != nil:
		return entity.FailedToolResult("%v", err), nil
	}
	return entity.NewToolResult(text), nil
}

func (t *Tool) Fetch(ctx context.Context, method entity.HTTPMethod, url, body string) (string, error) {
	if !t.cfg.Enabled {
		return "", ErrDisabled
	}
	if method == "" {
		method = entity.MethodGet
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	t.logger.Info("Fetching", "method", method, "url", url)
	started := time.Now()

	var (
		text string
		err  error
	)
	switch method {
	case entity.MethodRender:
		text, err = t.render(ctx, url)
	case entity.MethodGet, entity.MethodPost:
		text, err = t.do(ctx, method, url, body)
	default:
		return "", fmt.Errorf("unsupported method %q", method)
	}
	if err != nil {
		t.logger.Warn("Fetch failed", "url", url, "error", err, "duration", time.Since(started))
		return "", err
	}

	text = truncate(text, t.cfg.MaxChars)
	t.logger.Debug("Fetch completed", "url", url, "chars", len([]rune(text)), "duration", time.Since(started))
	return text, nil
}

func (t *Tool) do(ctx context.Context, method entity.HTTPMethod, url, body string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	var reqBody io.Reader
	if method == entity.MethodPost {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(reqCtx, string(method), url, reqBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", t.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,text/plain;q=0.8,*/*;q=0.5")
	if method == entity.MethodPost {
		if json.Valid([]byte(body)) {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w after %s", ErrTimeout, t.cfg.Timeout)
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, t.cfg.Timeout)
		}
		return "", fmt.Errorf("read response: %w", err)
	}

	return toText(resp.Header.Get("Content-Type"), string(data), t.logger), nil
}

func (t *Tool) render(ctx context.Context, url string) (string, error) {
	if t.cfg.Renderer == nil {
		return "", ErrRenderDisabled
	}
	html, err := t.cfg.Renderer.Render(ctx, url)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return toText("text/html", html, t.logger), nil
}

func toText(contentType, body string, log output.LoggerPort) string {
	if !isHTML(contentType, body) {
		return strings.TrimSpace(body)
	}
	text, err := htmlToText(body)
	if err != nil {
		log.Warn("HTML conversion failed, returning raw body", "error", err)
		return strings.TrimSpace(body)
	}
	return text
}

func truncate(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars])
}
