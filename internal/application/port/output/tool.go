package output

import (
	"context"

	"agent86/internal/domain/entity"
)

// ToolPort executes one kind of action. A returned error means the tool
// itself broke; ordinary failures are reported through ToolResult.
type ToolPort interface {
	Name() entity.ToolName
	Description() string
	Usage() string
	Parameters() map[string]interface{}
	Enabled() bool
	Execute(ctx context.Context, action entity.Action) (entity.ToolResult, error)
}

type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name entity.ToolName) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
}
