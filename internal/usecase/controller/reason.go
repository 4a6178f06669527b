package controller

import (
	"context"
	"fmt"
	"strings"

	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"
	"agent86/internal/infrastructure/prompts"
	"agent86/internal/usecase/parse"
)

const maxContextObservation = 200

// step runs one think/act/observe cycle for task and records it.
func (uc *UseCase) step(ctx context.Context, r *run, log output.LoggerPort, task *entity.Task) error {
	if err := uc.llm.Reset(ctx); err != nil {
		return &InferenceError{Stage: StageReset, Err: err}
	}

	prompt, err := uc.prompts.Reason(prompts.ReasonData{
		Goal:    r.goal,
		Task:    task.Description,
		Tools:   r.tools,
		Context: buildContext(r.steps, uc.cfg.ContextWindow),
	}, uc.cfg.ThoughtMaxTokens+uc.cfg.ActionMaxTokens)
	if err != nil {
		return fmt.Errorf("build reasoning prompt: %w", err)
	}

	thoughtText, err := uc.llm.Complete(ctx, output.CompletionRequest{
		Prompt:    prompt,
		Stop:      []string{"\n", entity.ActionLabel},
		MaxTokens: uc.cfg.ThoughtMaxTokens,
	})
	if err != nil {
		return &InferenceError{Stage: StageThought, Err: err}
	}
	thought := parse.StripLabel(thoughtText, entity.ThoughtLabel, parse.NoThought)
	uc.ui.ShowThinking(ctx, thought)

	actionText, err := uc.llm.Complete(ctx, output.CompletionRequest{
		Prompt:    prompts.Action(prompt, thought),
		Stop:      []string{"\n"},
		MaxTokens: uc.cfg.ActionMaxTokens,
	})
	if err != nil {
		return &InferenceError{Stage: StageAction, Err: err}
	}
	actionLine := parse.StripLabel(actionText, entity.ActionLabel, parse.NoAction)
	action := parse.ParseAction(actionLine)

	log.Debug("Reasoning step", "thought", thought, "action", actionLine, "kind", action.Kind)

	s := entity.ReasoningStep{
		TaskID:      task.ID,
		Index:       r.stepsFor(task.ID) + 1,
		Thought:     thought,
		Action:      actionLine,
		Kind:        action.Kind,
		Observation: uc.dispatch(ctx, log, action),
	}
	r.steps = append(r.steps, s)

	switch {
	case action.Kind == entity.ActionComplete:
		return task.Complete()
	case s.Index >= uc.cfg.MaxStepsPerTask:
		log.Warn("Max reasoning steps reached for task", "max", uc.cfg.MaxStepsPerTask)
		return task.Fail()
	}
	return nil
}

// buildContext renders the last window steps of the run, oldest first.
func buildContext(steps []entity.ReasoningStep, window int) []string {
	if window <= 0 || len(steps) == 0 {
		return nil
	}
	if len(steps) > window {
		steps = steps[len(steps)-window:]
	}

	lines := make([]string, 0, 3*len(steps))
	for _, s := range steps {
		lines = append(lines, "  - "+s.Thought)
		if s.Action != "" {
			lines = append(lines, "    Action: "+s.Action)
		}
		if s.Observation != "" {
			lines = append(lines, "    Result: "+truncate(oneLine(s.Observation), maxContextObservation))
		}
	}
	return lines
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
