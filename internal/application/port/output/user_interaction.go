package output

import (
	"context"

	"agent86/internal/domain/entity"
)

type UserInteractionPort interface {
	AskGoal(ctx context.Context) (string, error)

	ShowIteration(ctx context.Context, iteration, maxIterations int)
	ShowTaskStart(ctx context.Context, task entity.Task)
	ShowThinking(ctx context.Context, content string)
	ShowToolStart(ctx context.Context, toolName, arguments string)
	ShowToolResult(ctx context.Context, toolName, result string, isError bool)
	ShowResult(ctx context.Context, result *entity.RunResult)
}
