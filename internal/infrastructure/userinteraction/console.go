package userinteraction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"

	"github.com/fatih/color"
)

// ErrQuit is returned by AskGoal when the user asks to leave.
var ErrQuit = errors.New("user quit")

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

type ConsoleUserInteraction struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewConsoleUserInteraction() *ConsoleUserInteraction {
	return NewConsole(os.Stdin, color.Output)
}

func NewConsole(in io.Reader, out io.Writer) *ConsoleUserInteraction {
	return &ConsoleUserInteraction{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (u *ConsoleUserInteraction) AskGoal(ctx context.Context) (string, error) {
	color.New(color.FgMagenta, color.Bold).Fprint(u.out, "\nWhat should I do? (quit to exit)\n> ")

	answer, err := u.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}

	goal := strings.TrimSpace(answer)
	switch strings.ToLower(goal) {
	case "", "quit", "exit", "q":
		return "", ErrQuit
	}
	return goal, nil
}

func (u *ConsoleUserInteraction) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	color.New(color.FgCyan, color.Bold).Fprintf(u.out, "\n━━━ Iteration %d/%d ━━━\n", iteration, maxIterations)
}

func (u *ConsoleUserInteraction) ShowTaskStart(ctx context.Context, task entity.Task) {
	color.New(color.FgMagenta, color.Bold).Fprintf(u.out, "\n▶ Task %d: %s\n", task.ID, task.Description)
}

func (u *ConsoleUserInteraction) ShowThinking(ctx context.Context, content string) {
	if content == "" {
		return
	}

	color.New(color.FgBlue).Fprint(u.out, "💭 Thought: ")
	color.New(color.Faint).Fprintln(u.out, truncate(content, 500))
}

func (u *ConsoleUserInteraction) ShowToolStart(ctx context.Context, toolName, arguments string) {
	icon := toolIcon(toolName)

	color.New(color.FgYellow, color.Bold).Fprintf(u.out, "%s %s\n", icon, toolName)
	if arguments != "" {
		color.New(color.Faint).Fprintf(u.out, "   %s\n", truncate(arguments, 120))
	}
}

func (u *ConsoleUserInteraction) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		color.New(color.FgRed).Fprint(u.out, "❌ Error: ")
		color.New(color.Faint).Fprintln(u.out, truncate(oneLine(result), 300))
		return
	}

	color.New(color.FgGreen).Fprintf(u.out, "✓ %s\n", truncate(oneLine(result), 100))
}

func (u *ConsoleUserInteraction) ShowResult(ctx context.Context, result *entity.RunResult) {
	if result == nil {
		return
	}
	fmt.Fprintln(u.out, renderResult(result))
}

func toolIcon(toolName string) string {
	switch entity.ToolName(toolName) {
	case entity.ToolTerminal:
		return "💻"
	case entity.ToolInternet:
		return "🌐"
	default:
		return "🔧"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
