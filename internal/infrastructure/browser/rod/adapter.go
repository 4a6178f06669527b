package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"agent86/internal/application/port/output"
	"agent86/internal/infrastructure/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.PageRenderer = (*Renderer)(nil)

var ErrClosed = errors.New("renderer is closed")

type Config struct {
	Timeout   time.Duration
	IdleWait  time.Duration
	NoSandbox bool
	// Bin overrides browser discovery; empty uses launcher.LookPath.
	Bin    string
	Logger output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		Timeout:  20 * time.Second,
		IdleWait: 2 * time.Second,
	}
}

// The browser is launched on first use and shared afterwards.
type Renderer struct {
	cfg    Config
	logger output.LoggerPort

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool
}

func NewRenderer(cfg Config) *Renderer {
	d := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.IdleWait < 0 {
		cfg.IdleWait = 0
	}

	var log output.LoggerPort = logger.NewNop()
	if cfg.Logger != nil {
		log = cfg.Logger
	}
	return &Renderer{cfg: cfg, logger: log.WithField("component", "renderer")}
}

func Available() bool {
	_, ok := launcher.LookPath()
	return ok
}

func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return "", err
	}

	started := time.Now()
	page, err := browser.Context(ctx).Timeout(r.cfg.Timeout).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait for page load: %w", err)
	}
	if r.cfg.IdleWait > 0 {
		_ = page.WaitIdle(r.cfg.IdleWait)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read page HTML: %w", err)
	}

	r.logger.Debug("Page rendered", "url", url, "htmlLen", len(html), "duration", time.Since(started))
	return html, nil
}

func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().
		Headless(true).
		NoSandbox(r.cfg.NoSandbox).
		Set("disable-gpu")
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	r.logger.Info("Browser launched", "controlURL", controlURL)
	r.launcher = l
	r.browser = browser
	return browser, nil
}

func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			r.logger.Warn("Failed to close browser", "error", err)
		}
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
	}
}
