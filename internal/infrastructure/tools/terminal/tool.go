package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"
	"agent86/internal/infrastructure/logger"

	"github.com/mattn/go-shellwords"
)

var (
	ErrDisabled       = errors.New("terminal tool is disabled")
	ErrInvalidCommand = errors.New("invalid command")
	ErrTimeout        = errors.New("command timed out")
)

var _ output.ToolPort = (*Tool)(nil)

type Config struct {
	Enabled   bool
	Shell     string
	Timeout   time.Duration
	MaxOutput int
	Dir       string
	Logger    output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Shell:     "/bin/sh",
		Timeout:   30 * time.Second,
		MaxOutput: 20000,
	}
}

type Tool struct {
	cfg    Config
	logger output.LoggerPort
}

func New(cfg Config) *Tool {
	d := DefaultConfig()
	if cfg.Shell == "" {
		cfg.Shell = d.Shell
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.MaxOutput <= 0 {
		cfg.MaxOutput = d.MaxOutput
	}

	var log output.LoggerPort = logger.NewNop()
	if cfg.Logger != nil {
		log = cfg.Logger
	}
	return &Tool{cfg: cfg, logger: log.WithField("tool", entity.ToolTerminal)}
}

func (t *Tool) Name() entity.ToolName {
	return entity.ToolTerminal
}

func (t *Tool) Description() string {
	return "Run a shell command on the local machine and return its standard output."
}

func (t *Tool) Usage() string {
	return "terminal: <shell command>"
}

func (t *Tool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"command": map[string]interface{}{
				"type":        "string",
				"description": "Shell command to execute",
			},
		},
		"required": []string{"command"},
	}
}

func (t *Tool) Enabled() bool {
	return t.cfg.Enabled
}

func (t *Tool) Execute(ctx context.Context, action entity.Action) (entity.ToolResult, error) {
	if action.Kind != entity.ActionTerminal {
		return entity.ToolResult{}, fmt.Errorf("terminal tool cannot execute %s action", action.Kind)
	}

	res, err := t.Run(ctx, action.Command)
	switch {
	case errors.Is(err, ErrDisabled):
		return entity.FailedToolResult("Terminal tool is disabled"), nil
	case errors.Is(err, ErrTimeout):
		return entity.FailedToolResult("Command timed out after %s", t.cfg.Timeout), nil
	case err != nil:
		return entity.FailedToolResult("%v", err), nil
	}

	if res.ExitCode != 0 {
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return entity.FailedToolResult("%s", msg), nil
		}
		return entity.FailedToolResult("exit status %d", res.ExitCode), nil
	}
	return entity.NewToolResult(res.Output()), nil
}

type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	Truncated bool
}

func (r *Result) Output() string {
	out := strings.TrimSpace(r.Stdout)
	if out == "" {
		out = strings.TrimSpace(r.Stderr)
	}
	if out == "" {
		out = "(no output)"
	}
	if r.Truncated {
		out += "\n[output truncated]"
	}
	return out
}

// Run reports a non-zero exit in Result.ExitCode, not as an error.
func (t *Tool) Run(ctx context.Context, command string) (*Result, error) {
	if !t.cfg.Enabled {
		return nil, ErrDisabled
	}
	if err := validate(command); err != nil {
		return nil, err
	}
	t.inspect(command)

	t.logger.Info("Executing command", "command", command)

	runCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.cfg.Shell, "-c", command)
	cmd.Dir = t.cfg.Dir
	// orphaned children may hold the pipes open after the shell is killed
	cmd.WaitDelay = time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := &limitedWriter{w: &stdoutBuf, max: int64(t.cfg.MaxOutput)}
	stderr := &limitedWriter{w: &stderrBuf, max: int64(t.cfg.MaxOutput)}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	started := time.Now()
	err := cmd.Run()

	res := &Result{
		Stdout:    stdoutBuf.String(),
		Stderr:    stderrBuf.String(),
		Duration:  time.Since(started),
		Truncated: stdout.truncated || stderr.truncated,
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		t.logger.Warn("Command timed out", "command", command, "timeout", t.cfg.Timeout)
		res.ExitCode = -1
		return res, fmt.Errorf("%w after %s", ErrTimeout, t.cfg.Timeout)
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case err != nil:
		return nil, fmt.Errorf("run command: %w", err)
	}

	t.logger.Debug("Command finished",
		"exitCode", res.ExitCode,
		"duration", res.Duration,
		"stdoutLen", len(res.Stdout),
		"truncated", res.Truncated,
	)
	return res, nil
}

func validate(command string) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}
	return nil
}

// shellwords rejects valid sh syntax such as subshells, so this only logs.
func (t *Tool) inspect(command string) {
	args, err := shellwords.Parse(command)
	if err != nil {
		t.logger.Debug("Command not tokenizable", "command", command, "error", err)
		return
	}
	if len(args) > 0 {
		t.logger.Debug("Command tokenized", "program", args[0], "args", len(args)-1)
	}
}
