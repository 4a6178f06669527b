package controller

import (
	"context"
	"errors"
	"sync"

	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"
)

type reply struct {
	text string
	err  error
}

// scriptedLLM replays canned completions in order.
type scriptedLLM struct {
	mu       sync.Mutex
	replies  []reply
	requests []output.CompletionRequest
	resets   int
	resetErr error
}

func script(texts ...string) *scriptedLLM {
	s := &scriptedLLM{}
	for _, t := range texts {
		s.replies = append(s.replies, reply{text: t})
	}
	return s
}

func (s *scriptedLLM) fail(err error) *scriptedLLM {
	s.replies = append(s.replies, reply{err: err})
	return s
}

func (s *scriptedLLM) Complete(_ context.Context, req output.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func (s *scriptedLLM) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return s.resetErr
}

func (s *scriptedLLM) Ping(context.Context) error { return nil }

type fakeTool struct {
	name    entity.ToolName
	enabled bool
	result  entity.ToolResult
	err     error
	panics  any
	calls   []entity.Action
}

func newFakeTool(name entity.ToolName, output string) *fakeTool {
	return &fakeTool{name: name, enabled: true, result: entity.NewToolResult(output)}
}

func (f *fakeTool) Name() entity.ToolName { return f.name }
func (f *fakeTool) Description() string { return "fake " + f.name.String() }
func (f *fakeTool) Usage() string { return f.name.String() + ": <args>" }
func (f *fakeTool) Parameters() map[string]interface{} { return map[string]interface{}{} }
func (f *fakeTool) Enabled() bool { return f.enabled }

func (f *fakeTool) Execute(_ context.Context, action entity.Action) (entity.ToolResult, error) {
	f.calls = append(f.calls, action)
	if f.panics != nil {
		panic(f.panics)
	}
	return f.result, f.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
func (l nopLogger) WithField(string, any) output.LoggerPort { return l }
func (l nopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error { return nil }

type recordingUI struct {
	nopUI
	iterations []int
	tasks      []int
	thoughts   []string
	toolErrors []bool
}

func (r *recordingUI) ShowIteration(_ context.Context, iteration, _ int) {
	r.iterations = append(r.iterations, iteration)
}

func (r *recordingUI) ShowTaskStart(_ context.Context, task entity.Task) {
	r.tasks = append(r.tasks, task.ID)
}

func (r *recordingUI) ShowThinking(_ context.Context, content string) {
	r.thoughts = append(r.thoughts, content)
}

func (r *recordingUI) ShowToolResult(_ context.Context, _, _ string, isError bool) {
	r.toolErrors = append(r.toolErrors, isError)
}
