package controller

import "fmt"

type Stage string

const (
	StageDecompose Stage = "decompose"
	StageReset     Stage = "reset"
	StageThought   Stage = "thought"
	StageAction    Stage = "action"
)

// InferenceError aborts a run: the backend could not produce text.
type InferenceError struct {
	Stage Stage
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed during %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
