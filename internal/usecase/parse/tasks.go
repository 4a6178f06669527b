package parse

import (
	"regexp"
	"strings"
)

const MaxTasks = 5

const assistantMarker = "<|im_start|>assistant"

var taskLine = regexp.MustCompile(`(?i)^task\s*(\d+)\s*[:.)\-]\s*(.*)$`)

// Lines without a "Task N:" marker are skipped.
func ParseTasks(text string) []string {
	if i := strings.LastIndex(text, assistantMarker); i >= 0 {
		text = text[i+len(assistantMarker):]
	}

	var tasks []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*#> \t")
		m := taskLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		description := strings.Trim(m[2], " *\t")
		if description == "" {
			continue
		}
		tasks = append(tasks, description)
		if len(tasks) == MaxTasks {
			break
		}
	}
	return tasks
}
