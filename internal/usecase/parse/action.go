package parse

import (
	"net/url"
	"strings"

	"agent86/internal/domain/entity"
)

const (
	terminalPrefix = "terminal:"
	internetPrefix = "internet:"
)

// ParseAction classifies the text of an ACTION line. It never fails:
// anything it cannot classify comes back as ActionUnrecognized.
func ParseAction(text string) entity.Action {
	raw := strings.Trim(strings.TrimSpace(text), "`")
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	switch {
	case raw == "":
		return unrecognized(raw, "empty action")
	case strings.TrimRight(lower, ".! ") == "complete":
		return entity.Action{Kind: entity.ActionComplete, Raw: raw}
	case strings.HasPrefix(lower, terminalPrefix):
		return terminalAction(raw, raw[len(terminalPrefix):])
	case strings.HasPrefix(lower, internetPrefix):
		return parseInternet(raw, strings.TrimSpace(raw[len(internetPrefix):]))
	}

	if calls := ParseToolCalls(raw); len(calls) > 0 {
		return fromToolCall(raw, calls[0])
	}
	return unrecognized(raw, "no known action")
}

func parseInternet(raw, rest string) entity.Action {
	method := entity.MethodGet
	if i := strings.Index(rest, ":"); i > 0 {
		switch verb := entity.HTTPMethod(strings.ToUpper(strings.TrimSpace(rest[:i]))); verb {
		case entity.MethodGet, entity.MethodPost, entity.MethodRender:
			method = verb
			rest = strings.TrimSpace(rest[i+1:])
		}
	}

	target, body := rest, ""
	if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
		target, body = rest[:i], strings.TrimSpace(rest[i+1:])
	}
	return internetAction(raw, method, target, body)
}

func fromToolCall(raw string, call entity.ToolCall) entity.Action {
	switch call.Name {
	case entity.ToolTerminal:
		return terminalAction(raw, call.Args["command"])
	case entity.ToolInternet:
		method := entity.HTTPMethod(strings.ToUpper(strings.TrimSpace(call.Args["method"])))
		if method == "" {
			method = entity.MethodGet
		}
		switch method {
		case entity.MethodGet, entity.MethodPost, entity.MethodRender:
		default:
			return unrecognized(raw, "unsupported method "+string(method))
		}
		return internetAction(raw, method, strings.TrimSpace(call.Args["url"]), call.Args["body"])
	default:
		return unrecognized(raw, "unknown tool "+string(call.Name))
	}
}

func terminalAction(raw, command string) entity.Action {
	command = strings.TrimSpace(command)
	if command == "" {
		return unrecognized(raw, "terminal action without a command")
	}
	return entity.Action{Kind: entity.ActionTerminal, Raw: raw, Command: command}
}

func internetAction(raw string, method entity.HTTPMethod, target, body string) entity.Action {
	if target == "" {
		return unrecognized(raw, "internet action without a url")
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return unrecognized(raw, "invalid url "+target)
	}
	if method != entity.MethodPost {
		body = ""
	}
	return entity.Action{
		Kind:   entity.ActionInternet,
		Raw:    raw,
		Method: method,
		URL:    target,
		Body:   body,
	}
}

func unrecognized(raw, reason string) entity.Action {
	return entity.Action{Kind: entity.ActionUnrecognized, Raw: raw, Reason: reason}
}
