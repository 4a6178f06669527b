package entity

import "fmt"

type ToolName string

const (
	ToolTerminal ToolName = "terminal"
	ToolInternet ToolName = "internet"
)

func (t ToolName) String() string {
	return string(t)
}

type ToolDefinition struct {
	Name        ToolName               `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
	Usage       string                 `json:"-"`
}

// ToolCall is a pythonic function call emitted by the model, e.g.
// [terminal(command="ls")].
type ToolCall struct {
	Name ToolName
	Args map[string]string
}

type ToolResult struct {
	Success bool
	Output  string
	Error   string
}

func NewToolResult(output string) ToolResult {
	return ToolResult{Success: true, Output: output}
}

func FailedToolResult(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}
