package di

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"agent86/internal/domain/entity"
	"agent86/internal/infrastructure/env"
	"agent86/internal/infrastructure/llm/ollama"
	"agent86/internal/infrastructure/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) env.Settings {
	t.Helper()
	s := env.DefaultSettings()
	s.Tokenizer = "approx"
	s.LogDir = t.TempDir()
	return s
}

func TestNewContainer(t *testing.T) {
	s := testSettings(t)
	s.EnableInternet = false

	c, err := NewContainer(Config{Settings: s, LogName: "List files", LogConsole: &bytes.Buffer{}})
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &openai.Adapter{}, c.LLM)
	assert.Nil(t, c.Renderer)
	require.NotNil(t, c.Agent)

	terminalTool, ok := c.Tools.Get(entity.ToolTerminal)
	require.True(t, ok)
	assert.True(t, terminalTool.Enabled())

	internetTool, ok := c.Tools.Get(entity.ToolInternet)
	require.True(t, ok)
	assert.False(t, internetTool.Enabled())

	defs := c.Tools.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, entity.ToolTerminal, defs[0].Name)

	entries, err := os.ReadDir(s.LogDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewContainer_LogsSettingsSource(t *testing.T) {
	s := testSettings(t)
	s.LogLevel = "debug"
	console := &bytes.Buffer{}

	c, err := NewContainer(Config{Settings: s, EnvFiles: []string{".env", ".env.test"}, LogConsole: console})
	require.NoError(t, err)
	defer c.Close()

	assert.Contains(t, console.String(), "Settings loaded")
	assert.Contains(t, console.String(), ".env.test")
}

func TestNewContainer_LogFilePerGoal(t *testing.T) {
	s := testSettings(t)

	for _, goal := range []string{"List files", "Fetch page"} {
		c, err := NewContainer(Config{Settings: s, LogName: goal, LogConsole: &bytes.Buffer{}})
		require.NoError(t, err)
		c.Close()
	}

	entries, err := os.ReadDir(s.LogDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.True(t, hasSuffix(names, "_List_files.log"), "files: %v", names)
	assert.True(t, hasSuffix(names, "_Fetch_page.log"), "files: %v", names)
}

func hasSuffix(names []string, suffix string) bool {
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			return true
		}
	}
	return false
}

func TestNewContainer_WithRenderer(t *testing.T) {
	s := testSettings(t)
	s.InternetRender = true

	c, err := NewContainer(Config{Settings: s, LogConsole: &bytes.Buffer{}})
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Renderer)
	internetTool, ok := c.Tools.Get(entity.ToolInternet)
	require.True(t, ok)
	assert.Contains(t, internetTool.Usage(), "render:")
}

func TestNewCompletion(t *testing.T) {
	s := testSettings(t)

	s.Backend = env.BackendOllama
	s.BaseURL = "http://localhost:11434"
	llm, err := NewCompletion(s, nil)
	require.NoError(t, err)
	assert.IsType(t, &ollama.Adapter{}, llm)

	s.Backend = "bogus"
	_, err = NewCompletion(s, nil)
	assert.ErrorContains(t, err, "unknown LLM backend")
}
