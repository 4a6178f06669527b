package entity

import (
	"errors"
	"fmt"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

var ErrInvalidTransition = errors.New("invalid task status transition")

func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

func (s TaskStatus) String() string {
	return string(s)
}

// Lifecycle: pending -> in_progress -> completed | failed
//
//	pending -> failed (iteration ceiling hit before the task started)
type Task struct {
	ID          int
	Description string
	Status      TaskStatus
}

func NewTask(id int, description string) *Task {
	return &Task{
		ID:          id,
		Description: description,
		Status:      TaskStatusPending,
	}
}

func (t *Task) Start() error {
	return t.transition(TaskStatusInProgress)
}

func (t *Task) Complete() error {
	return t.transition(TaskStatusCompleted)
}

func (t *Task) Fail() error {
	return t.transition(TaskStatusFailed)
}

func (t *Task) transition(to TaskStatus) error {
	allowed := false
	switch t.Status {
	case TaskStatusPending:
		allowed = to == TaskStatusInProgress || to == TaskStatusFailed
	case TaskStatusInProgress:
		allowed = to == TaskStatusCompleted || to == TaskStatusFailed
	}
	if !allowed {
		return fmt.Errorf("%w: task %d %s -> %s", ErrInvalidTransition, t.ID, t.Status, to)
	}
	t.Status = to
	return nil
}
