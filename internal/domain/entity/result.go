package entity

import "time"

// RunResult is the aggregate record of one agent run.
type RunResult struct {
	RunID      string
	Goal       string
	Success    bool
	Tasks      []Task
	Steps      []ReasoningStep
	Iterations int
	Duration   time.Duration
}

// CompletedTasks returns the number of tasks that reached completed.
func (r *RunResult) CompletedTasks() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == TaskStatusCompleted {
			n++
		}
	}
	return n
}
