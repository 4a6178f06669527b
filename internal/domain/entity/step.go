package entity

// Labels that open the thought and action lines of a reasoning step.
const (
	ThoughtLabel = "THOUGHT:"
	ActionLabel  = "ACTION:"
)

// ReasoningStep is one think/act/observe cycle recorded for a task.
type ReasoningStep struct {
	TaskID      int
	Index       int
	Thought     string
	Action      string
	Kind        ActionKind
	Observation string
}
