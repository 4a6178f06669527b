package controller

import (
	"context"
	"fmt"

	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"
	"agent86/internal/usecase/parse"
)

const decomposeStop = "\n\n"

// Decompose asks the model for a task list. It always returns at least one
// task: when nothing can be parsed the goal itself becomes the only task.
func (uc *UseCase) Decompose(ctx context.Context, goal string) ([]*entity.Task, error) {
	return uc.decompose(ctx, uc.logger, goal)
}

func (uc *UseCase) decompose(ctx context.Context, log output.LoggerPort, goal string) ([]*entity.Task, error) {
	log.Info("Creating task list", "goal", goal)

	if err := uc.llm.Reset(ctx); err != nil {
		return nil, &InferenceError{Stage: StageReset, Err: err}
	}

	prompt, err := uc.prompts.Decompose(goal)
	if err != nil {
		return nil, fmt.Errorf("build decomposition prompt: %w", err)
	}

	text, err := uc.llm.Complete(ctx, output.CompletionRequest{
		Prompt:    prompt,
		Stop:      []string{decomposeStop},
		MaxTokens: uc.cfg.DecomposeMaxTokens,
	})
	if err != nil {
		return nil, &InferenceError{Stage: StageDecompose, Err: err}
	}

	descriptions := parse.ParseTasks(text)
	if len(descriptions) == 0 {
		log.Warn("No tasks parsed from model output, using goal as the only task", "output", text)
		descriptions = []string{goal}
	}

	tasks := make([]*entity.Task, 0, len(descriptions))
	for i, description := range descriptions {
		tasks = append(tasks, entity.NewTask(i+1, description))
	}

	log.Info("Created task list", "count", len(tasks))
	return tasks, nil
}
