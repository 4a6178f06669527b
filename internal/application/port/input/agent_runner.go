package input

import (
	"context"

	"agent86/internal/domain/entity"
)

type AgentRunner interface {
	Run(ctx context.Context, goal string) (*entity.RunResult, error)
}
