package controller

import (
	"context"
	"fmt"

	"agent86/internal/application/port/output"
	"agent86/internal/domain/entity"
)

const ObservationComplete = "Task marked as complete"

// dispatch turns an action into an observation. Tool failures never escape
// as errors: they become observation text the model can react to.
func (uc *UseCase) dispatch(ctx context.Context, log output.LoggerPort, action entity.Action) string {
	switch action.Kind {
	case entity.ActionComplete:
		return ObservationComplete
	case entity.ActionUnrecognized:
		log.Warn("Unrecognized action", "action", action.Raw, "reason", action.Reason)
		return "Unknown action: " + action.Raw
	}

	name := action.Tool()
	tool, ok := uc.tools.Get(name)
	if !ok {
		log.Warn("Unknown tool called", "name", name)
		return fmt.Sprintf("Unknown tool: %s", name)
	}

	log.Info("Executing tool", "name", name, "action", action.String())
	uc.ui.ShowToolStart(ctx, name.String(), action.String())

	result := uc.execute(ctx, log, tool, action)
	if result.Success {
		log.Debug("Tool completed", "name", name, "outputLen", len(result.Output))
		uc.ui.ShowToolResult(ctx, name.String(), result.Output, false)
		return result.Output
	}

	errText := result.Error
	if errText == "" {
		errText = "no error output"
	}
	log.Debug("Tool reported failure", "name", name, "error", errText)
	uc.ui.ShowToolResult(ctx, name.String(), errText, true)
	return failurePrefix(name) + errText
}

func (uc *UseCase) execute(ctx context.Context, log output.LoggerPort, tool output.ToolPort, action entity.Action) (result entity.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Tool panicked", "name", tool.Name(), "panic", rec)
			result = entity.FailedToolResult("%v", rec)
		}
	}()

	res, err := tool.Execute(ctx, action)
	if err != nil {
		log.Error("Tool execution failed", "name", tool.Name(), "error", err)
		return entity.FailedToolResult("%v", err)
	}
	return res
}

func failurePrefix(name entity.ToolName) string {
	switch name {
	case entity.ToolTerminal:
		return "Command failed: "
	case entity.ToolInternet:
		return "Request failed: "
	default:
		return "Tool failed: "
	}
}
