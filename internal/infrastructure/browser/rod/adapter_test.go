package rod

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutBrowser(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if !Available() {
		t.Skip("no local Chromium found")
	}
}

func TestRenderer_RendersScriptContent(t *testing.T) {
	skipWithoutBrowser(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div id="out"></div>
<script>document.getElementById("out").textContent = "built by script";</script>
</body></html>`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.NoSandbox = true
	r := NewRenderer(cfg)
	defer r.Close()

	html, err := r.Render(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "built by script")

	// the browser is reused
	html, err = r.Render(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "built by script")
}

func TestRenderer_ClosedRenderer(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	r.Close()
	r.Close()

	_, err := r.Render(context.Background(), "http://127.0.0.1:1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer(Config{IdleWait: -time.Second})

	assert.Equal(t, DefaultConfig().Timeout, r.cfg.Timeout)
	assert.Zero(t, r.cfg.IdleWait)
}
