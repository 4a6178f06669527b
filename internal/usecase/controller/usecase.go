package controller

import (
	"context"
	"time"

	"agent86/internal/application/port/input"
	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"
	"agent86/internal/infrastructure/prompts"

	"github.com/google/uuid"
)

var _ input.AgentRunner = (*UseCase)(nil)

type Config struct {
	MaxIterations   int
	MaxStepsPerTask int
	ContextWindow   int

	DecomposeMaxTokens int
	ThoughtMaxTokens   int
	ActionMaxTokens    int
}

func DefaultConfig() Config {
	return Config{
		MaxIterations:      10,
		MaxStepsPerTask:    5,
		ContextWindow:      3,
		DecomposeMaxTokens: 150,
		ThoughtMaxTokens:   150,
		ActionMaxTokens:    60,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.MaxStepsPerTask <= 0 {
		c.MaxStepsPerTask = d.MaxStepsPerTask
	}
	if c.ContextWindow < 0 {
		c.ContextWindow = 0
	}
	if c.DecomposeMaxTokens <= 0 {
		c.DecomposeMaxTokens = d.DecomposeMaxTokens
	}
	if c.ThoughtMaxTokens <= 0 {
		c.ThoughtMaxTokens = d.ThoughtMaxTokens
	}
	if c.ActionMaxTokens <= 0 {
		c.ActionMaxTokens = d.ActionMaxTokens
	}
	return c
}

type Option func(*UseCase)

func WithUserInteraction(ui output.UserInteractionPort) Option {
	return func(uc *UseCase) {
		if ui != nil {
			uc.ui = ui
		}
	}
}

func WithRunIDGenerator(fn func() string) Option {
	return func(uc *UseCase) {
		if fn != nil {
			uc.newRunID = fn
		}
	}
}

type UseCase struct {
	llm      output.CompletionPort
	tools    output.ToolRegistry
	prompts  *prompts.Generator
	logger   output.LoggerPort
	ui       output.UserInteractionPort
	cfg      Config
	newRunID func() string
}

func New(
	llm output.CompletionPort,
	tools output.ToolRegistry,
	generator *prompts.Generator,
	logger output.LoggerPort,
	cfg Config,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		llm:      llm,
		tools:    tools,
		prompts:  generator,
		logger:   logger,
		ui:       nopUI{},
		cfg:      cfg.withDefaults(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type run struct {
	goal       string
	log        output.LoggerPort
	tools      []entity.ToolDefinition
	steps      []entity.ReasoningStep
	iterations int
}

func (r *run) stepsFor(taskID int) int {
	n := 0
	for _, s := range r.steps {
		if s.TaskID == taskID {
			n++
		}
	}
	return n
}

func (uc *UseCase) Run(ctx context.Context, goal string) (*entity.RunResult, error) {
	started := time.Now()
	runID := uc.newRunID()
	log := uc.logger.WithField("run_id", runID)
	log.Info("Starting agent run", "goal", goal)

	tasks, err := uc.decompose(ctx, log, goal)
	if err != nil {
		log.Error("Decomposition failed", "error", err)
		return nil, err
	}

	r := &run{
		goal:  goal,
		log:   log,
		tools: uc.tools.Definitions(),
	}
	for _, task := range tasks {
		if err := uc.runTask(ctx, r, task); err != nil {
			log.Error("Agent run aborted", "task_id", task.ID, "error", err)
			return nil, err
		}
	}

	result := &entity.RunResult{
		RunID:      runID,
		Goal:       goal,
		Success:    true,
		Tasks:      make([]entity.Task, 0, len(tasks)),
		Steps:      r.steps,
		Iterations: r.iterations,
		Duration:   time.Since(started),
	}
	for _, task := range tasks {
		result.Tasks = append(result.Tasks, *task)
		if task.Status != entity.TaskStatusCompleted {
			result.Success = false
		}
	}

	log.Info("Agent run completed",
		"success", result.Success,
		"iterations", result.Iterations,
		"completed", result.CompletedTasks(),
		"tasks", len(result.Tasks),
	)
	return result, nil
}

func (uc *UseCase) runTask(ctx context.Context, r *run, task *entity.Task) error {
	log := r.log.WithField("task_id", task.ID)

	if r.iterations >= uc.cfg.MaxIterations {
		log.Warn("Max iterations reached before task started", "max", uc.cfg.MaxIterations)
		return task.Fail()
	}

	if err := task.Start(); err != nil {
		return err
	}
	log.Info("Working on task", "description", task.Description)
	uc.ui.ShowTaskStart(ctx, *task)

	for !task.Status.IsTerminal() {
		if r.iterations >= uc.cfg.MaxIterations {
			log.Warn("Max iterations reached", "max", uc.cfg.MaxIterations)
			return task.Fail()
		}
		r.iterations++
		uc.ui.ShowIteration(ctx, r.iterations, uc.cfg.MaxIterations)

		if err := uc.step(ctx, r, log, task); err != nil {
			return err
		}
	}

	if task.Status == entity.TaskStatusCompleted {
		log.Info("Task completed")
	} else {
		log.Warn("Task did not complete")
	}
	return nil
}

type nopUI struct{}

func (nopUI) AskGoal(context.Context) (string, error) { return "", nil }
func (nopUI) ShowIteration(context.Context, int, int) {}
func (nopUI) ShowTaskStart(context.Context, entity.Task) {}
func (nopUI) ShowThinking(context.Context, string) {}
func (nopUI) ShowToolStart(context.Context, string, string) {}
func (nopUI) ShowToolResult(context.Context, string, string, bool) {}
func (nopUI) ShowResult(context.Context, *entity.RunResult) {}
