package entity

import "fmt"

type ActionKind string

const (
	ActionComplete     ActionKind = "complete"
	ActionTerminal     ActionKind = "terminal"
	ActionInternet     ActionKind = "internet"
	ActionUnrecognized ActionKind = "unrecognized"
)

type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodRender HTTPMethod = "RENDER"
)

// Only the fields of the matching Kind are set.
type Action struct {
	Kind ActionKind
	Raw  string

	// terminal
	Command string

	// internet
	Method HTTPMethod
	URL    string
	Body   string

	// unrecognized
	Reason string
}

func (a Action) Tool() ToolName {
	switch a.Kind {
	case ActionTerminal:
		return ToolTerminal
	case ActionInternet:
		return ToolInternet
	default:
		return ""
	}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionComplete:
		return "complete"
	case ActionTerminal:
		return fmt.Sprintf("terminal: %s", a.Command)
	case ActionInternet:
		if a.Body != "" {
			return fmt.Sprintf("internet: %s: %s %s", a.Method, a.URL, a.Body)
		}
		return fmt.Sprintf("internet: %s: %s", a.Method, a.URL)
	default:
		return a.Raw
	}
}
