package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"agent86/internal/domain/entity"
	"agent86/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func execute(t *testing.T, tool *Tool, command string) entity.ToolResult {
	t.Helper()
	res, err := tool.Execute(context.Background(), entity.Action{Kind: entity.ActionTerminal, Command: command})
	require.NoError(t, err)
	return res
}

func TestTool_ExecuteSuccess(t *testing.T) {
	res := execute(t, New(DefaultConfig()), "echo hello")

	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Output)
	assert.Empty(t, res.Error)
}

func TestTool_ExecutePipeline(t *testing.T) {
	res := execute(t, New(DefaultConfig()), "printf 'b\\na\\n' | sort | tr a-z A-Z")

	assert.True(t, res.Success)
	assert.Equal(t, "A\nB", res.Output)
}

func TestTool_ExecuteNonZeroExit(t *testing.T) {
	res := execute(t, New(DefaultConfig()), "echo oops >&2; exit 3")

	assert.False(t, res.Success)
	assert.Equal(t, "oops", res.Error)
}

func TestTool_ExecuteNonZeroExitWithoutStderr(t *testing.T) {
	res := execute(t, New(DefaultConfig()), "exit 2")

	assert.False(t, res.Success)
	assert.Equal(t, "exit status 2", res.Error)
}

func TestTool_ExecuteNoOutput(t *testing.T) {
	res := execute(t, New(DefaultConfig()), "true")

	assert.True(t, res.Success)
	assert.Equal(t, "(no output)", res.Output)
}

func TestTool_ExecuteTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 200 * time.Millisecond

	started := time.Now()
	res := execute(t, New(cfg), "sleep 5")

	assert.False(t, res.Success)
	assert.Equal(t, "Command timed out after 200ms", res.Error)
	assert.Less(t, time.Since(started), 4*time.Second)
}

func TestTool_ExecuteDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	tool := New(cfg)

	res := execute(t, tool, "echo hello")
	assert.False(t, res.Success)
	assert.Equal(t, "Terminal tool is disabled", res.Error)
	assert.False(t, tool.Enabled())

	_, err := tool.Run(context.Background(), "echo hello")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTool_RunRejectsEmptyCommand(t *testing.T) {
	tool := New(DefaultConfig())

	for _, command := range []string{"", "   ", "\t\n"} {
		_, err := tool.Run(context.Background(), command)
		assert.ErrorIs(t, err, ErrInvalidCommand, "command %q", command)
	}
}

func TestTool_ExecuteShellSyntax(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"subshell", "(echo sub)", "sub"},
		{"function", "f() { echo fn; }; f", "fn"},
		{"trailing comment", "echo a # trailing (comment", "a"},
		{"command substitution", "echo $(echo inner)", "inner"},
		{"backticks", "echo `echo tick`", "tick"},
		{"loop", "for i in 1 2; do printf $i; done", "12"},
		{"group and redirect", "{ echo grouped; } 2>&1", "grouped"},
		{"and list", "true && echo both", "both"},
	}

	tool := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tool, tt.command)

			assert.True(t, res.Success, "error: %s", res.Error)
			assert.Equal(t, tt.want, res.Output)
		})
	}
}

func TestTool_ExecuteUnterminatedQuoteLeftToShell(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultConfig()
	cfg.Logger = logger.NewFromZap(zap.New(core))

	res := execute(t, New(cfg), `echo 'open`)

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.NotContains(t, res.Error, "invalid command")
	assert.Equal(t, 1, logs.FilterMessage("Command not tokenizable").Len())
}

func TestTool_RunTruncatesOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutput = 10

	res, err := New(cfg).Run(context.Background(), "printf '0123456789abcdef'")
	require.NoError(t, err)

	assert.Equal(t, "0123456789", res.Stdout)
	assert.True(t, res.Truncated)
	assert.Equal(t, "0123456789\n[output truncated]", res.Output())
}

func TestTool_RunWorkingDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()

	res, err := New(cfg).Run(context.Background(), "pwd")
	require.NoError(t, err)

	assert.Equal(t, cfg.Dir, strings.TrimSpace(res.Stdout))
	assert.Zero(t, res.ExitCode)
}

func TestTool_RunContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Run(ctx, "sleep 5")
	assert.Error(t, err)
}

func TestTool_ExecuteWrongAction(t *testing.T) {
	_, err := New(DefaultConfig()).Execute(context.Background(), entity.Action{Kind: entity.ActionInternet})
	assert.Error(t, err)
}

func TestTool_Definition(t *testing.T) {
	tool := New(DefaultConfig())

	assert.Equal(t, entity.ToolTerminal, tool.Name())
	assert.Equal(t, "terminal: <shell command>", tool.Usage())
	assert.Contains(t, tool.Parameters()["required"], "command")
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, max: 5}

	n, err := lw.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, lw.truncated)

	n, err = lw.Write([]byte("defg"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, lw.truncated)

	n, err = lw.Write([]byte("h"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "abcde", buf.String())
}
