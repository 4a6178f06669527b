package parse

import "strings"

const (
	NoThought = "(no thought)"
	NoAction  = "(no action)"
)

// StripLabel removes an echoed label such as "THOUGHT:" from generated text.
// Empty output is replaced by placeholder.
func StripLabel(text, label, placeholder string) string {
	text = strings.TrimSpace(text)
	if len(text) >= len(label) && strings.EqualFold(text[:len(label)], label) {
		text = strings.TrimSpace(text[len(label):])
	}
	if text == "" {
		return placeholder
	}
	return text
}
