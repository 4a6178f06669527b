package parse

import (
	"regexp"
	"strings"
	"unicode"

	"agent86/internal/domain/entity"
)

var (
	markedCall = regexp.MustCompile(`(?s)<\|tool_call_start\|>\s*\[(.*?)\]\s*<\|tool_call_end\|>`)
	bareCall   = regexp.MustCompile(`(?s)\[(\w+)\s*\((.*?)\)\]`)
	funcCall   = regexp.MustCompile(`(?s)^(\w+)\s*\((.*)\)$`)
)

// ParseToolCalls finds pythonic calls such as [terminal(command="ls")].
// Marked calls win over bare ones; unknown tools are dropped.
func ParseToolCalls(text string) []entity.ToolCall {
	type candidate struct{ name, args string }
	var found []candidate

	for _, m := range markedCall.FindAllStringSubmatch(text, -1) {
		if fm := funcCall.FindStringSubmatch(strings.TrimSpace(m[1])); fm != nil {
			found = append(found, candidate{fm[1], fm[2]})
		}
	}
	if len(found) == 0 {
		for _, m := range bareCall.FindAllStringSubmatch(text, -1) {
			found = append(found, candidate{m[1], m[2]})
		}
	}

	var calls []entity.ToolCall
	for _, c := range found {
		name := entity.ToolName(strings.ToLower(c.name))
		if name != entity.ToolTerminal && name != entity.ToolInternet {
			continue
		}
		calls = append(calls, entity.ToolCall{Name: name, Args: parseArgs(c.args)})
	}
	return calls
}

func parseArgs(s string) map[string]string {
	args := make(map[string]string)
	i := 0
	skip := func(set string) {
		for i < len(s) && strings.IndexByte(set, s[i]) >= 0 {
			i++
		}
	}

	for i < len(s) {
		skip(" ,\t\n")
		start := i
		for i < len(s) && (s[i] == '_' || unicode.IsLetter(rune(s[i])) || unicode.IsDigit(rune(s[i]))) {
			i++
		}
		key := s[start:i]
		if key == "" {
			break
		}

		skip(" \t\n")
		if i >= len(s) || s[i] != '=' {
			break
		}
		i++
		skip(" \t\n")
		if i >= len(s) || (s[i] != '"' && s[i] != '\'') {
			break
		}

		quote := s[i]
		i++
		var value strings.Builder
		for i < len(s) && s[i] != quote {
			if s[i] == '\\' && i+1 < len(s) && s[i+1] == quote {
				i++
			}
			value.WriteByte(s[i])
			i++
		}
		args[key] = value.String()
		i++
	}
	return args
}
