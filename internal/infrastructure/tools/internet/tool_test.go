package internet

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agent86/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Example</title><script>track()</script><style>body{}</style></head>
<body>
<nav><a href="/home">Home</a></nav>
<main>
<h1>Hello</h1>
<!-- hidden comment -->
<p onclick="x()" class="lead">Read the <a href="/docs" data-id="1">docs</a> first.</p>
</main>
<footer>copyright</footer>
</body>
</html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, testPage)
	})
	mux.HandleFunc("GET /json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ip":"127.0.0.1"}`)
	})
	mux.HandleFunc("GET /big", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, strings.Repeat("a", 6000))
	})
	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, r.Header.Get("Content-Type")+" "+string(body))
	})
	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestTool(cfg Config) *Tool {
	cfg.RateLimit = 0
	return New(cfg)
}

func get(t *testing.T, tool *Tool, url string) entity.ToolResult {
	t.Helper()
	res, err := tool.Execute(context.Background(), entity.Action{Kind: entity.ActionInternet, Method: entity.MethodGet, URL: url})
	require.NoError(t, err)
	return res
}

func TestTool_GetHTMLBecomesMarkdown(t *testing.T) {
	srv := newTestServer(t)

	res := get(t, newTestTool(DefaultConfig()), srv.URL+"/page")
	require.True(t, res.Success, res.Error)

	assert.Contains(t, res.Output, "# Hello")
	assert.Contains(t, res.Output, "[docs](/docs)")
	assert.NotContains(t, res.Output, "track()")
	assert.NotContains(t, res.Output, "Home")
	assert.NotContains(t, res.Output, "copyright")
	assert.NotContains(t, res.Output, "hidden comment")
}

func TestTool_GetJSONIsVerbatim(t *testing.T) {
	srv := newTestServer(t)

	res := get(t, newTestTool(DefaultConfig()), srv.URL+"/json")

	assert.True(t, res.Success)
	assert.Equal(t, `{"ip":"127.0.0.1"}`, res.Output)
}

func TestTool_OutputCapped(t *testing.T) {
	srv := newTestServer(t)

	res := get(t, newTestTool(DefaultConfig()), srv.URL+"/big")

	assert.True(t, res.Success)
	assert.Len(t, res.Output, 5000)
}

func TestTool_Post(t *testing.T) {
	srv := newTestServer(t)
	tool := newTestTool(DefaultConfig())

	res, err := tool.Execute(context.Background(), entity.Action{
		Kind:   entity.ActionInternet,
		Method: entity.MethodPost,
		URL:    srv.URL + "/echo",
		Body:   `{"q":"go"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, `application/json {"q":"go"}`, res.Output)

	text, err := tool.Fetch(context.Background(), entity.MethodPost, srv.URL+"/echo", "plain words")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8 plain words", text)
}

func TestTool_NonSuccessStatus(t *testing.T) {
	srv := newTestServer(t)
	tool := newTestTool(DefaultConfig())

	res := get(t, tool, srv.URL+"/missing")
	assert.False(t, res.Success)
	assert.Equal(t, "HTTP 404 Not Found for url: "+srv.URL+"/missing", res.Error)

	_, err := tool.Fetch(context.Background(), entity.MethodGet, srv.URL+"/missing", "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestTool_Timeout(t *testing.T) {
	srv := newTestServer(t)
	cfg := DefaultConfig()
	cfg.Timeout = 100 * time.Millisecond

	res := get(t, newTestTool(cfg), srv.URL+"/slow")

	assert.False(t, res.Success)
	assert.Equal(t, "Request timed out after 100ms", res.Error)
}

func TestTool_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := get(t, newTestTool(DefaultConfig()), url)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "request failed")
}

func TestTool_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	tool := newTestTool(cfg)

	res := get(t, tool, "http://example.com")
	assert.False(t, res.Success)
	assert.Equal(t, "Internet tool is disabled", res.Error)

	_, err := tool.Fetch(context.Background(), entity.MethodGet, "http://example.com", "")
	assert.ErrorIs(t, err, ErrDisabled)
}

type fakeRenderer struct {
	html string
	err  error
	urls []string
}

func (f *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.html, f.err
}

func (f *fakeRenderer) Close() {}

func TestTool_Render(t *testing.T) {
	renderer := &fakeRenderer{html: "<html><body><p>rendered <b>text</b></p></body></html>"}
	cfg := DefaultConfig()
	cfg.Renderer = renderer
	tool := newTestTool(cfg)

	text, err := tool.Fetch(context.Background(), entity.MethodRender, "https://example.com/app", "")
	require.NoError(t, err)

	assert.Equal(t, "rendered **text**", text)
	assert.Equal(t, []string{"https://example.com/app"}, renderer.urls)
	assert.Contains(t, tool.Usage(), "render:")
}

func TestTool_RenderDisabled(t *testing.T) {
	tool := newTestTool(DefaultConfig())

	_, err := tool.Fetch(context.Background(), entity.MethodRender, "https://example.com", "")
	assert.ErrorIs(t, err, ErrRenderDisabled)
	assert.NotContains(t, tool.Usage(), "render:")
}

func TestTool_RateLimited(t *testing.T) {
	srv := newTestServer(t)
	cfg := DefaultConfig()
	cfg.RateLimit = 10
	tool := New(cfg)

	started := time.Now()
	for i := 0; i < 3; i++ {
		_, err := tool.Fetch(context.Background(), entity.MethodGet, srv.URL+"/json", "")
		require.NoError(t, err)
	}

	// burst of one: the second and third requests wait ~100ms each
	assert.GreaterOrEqual(t, time.Since(started), 150*time.Millisecond)
}

func TestTool_ExecuteWrongAction(t *testing.T) {
	_, err := newTestTool(DefaultConfig()).Execute(context.Background(), entity.Action{Kind: entity.ActionTerminal})
	assert.Error(t, err)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML("text/html; charset=utf-8", ""))
	assert.True(t, isHTML("", "<!DOCTYPE html><html></html>"))
	assert.False(t, isHTML("application/json", "<html>"))
	assert.False(t, isHTML("", `{"a":1}`))
}
