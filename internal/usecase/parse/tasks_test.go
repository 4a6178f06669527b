package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTasks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single task",
			text: "Task 1: Run ls",
			want: []string{"Run ls"},
		},
		{
			name: "several tasks with noise",
			text: "Sure, here is the plan:\nTask 1: Check the OS\n\nsomething else\nTask 2: List files\nTask 3:   Count them  ",
			want: []string{"Check the OS", "List files", "Count them"},
		},
		{
			name: "tolerant markers",
			text: "- task 1. first\n**Task 2:** second\nTASK 3) third",
			want: []string{"first", "second", "third"},
		},
		{
			name: "chat template chatter discarded",
			text: "Task 9: ignored\n<|im_start|>assistant\nTask 1: kept",
			want: []string{"kept"},
		},
		{
			name: "empty descriptions skipped",
			text: "Task 1:\nTask 2: real",
			want: []string{"real"},
		},
		{
			name: "capped at max",
			text: "Task 1: a\nTask 2: b\nTask 3: c\nTask 4: d\nTask 5: e\nTask 6: f",
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "nothing parseable",
			text: "I cannot help with that.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTasks(tt.text))
		})
	}
}

func TestParseTasks_Idempotent(t *testing.T) {
	text := "Task 1: one\nTask 2: two"

	assert.Equal(t, ParseTasks(text), ParseTasks(text))
}
