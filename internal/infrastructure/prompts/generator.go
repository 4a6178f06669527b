package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"agent86/internal/domain/entity"
)

type Generator struct {
	system    *template.Template
	decompose *template.Template
	reason    *template.Template
	budget    *Budget
}

type ReasonData struct {
	Goal    string
	Task    string
	Tools   []entity.ToolDefinition
	Context []string
}

type systemData struct {
	Tools     []entity.ToolDefinition
	ToolsJSON string
}

type reasonView struct {
	System  string
	Goal    string
	Task    string
	Context []string
}

// A nil budget disables context trimming.
func NewGenerator(budget *Budget) (*Generator, error) {
	system, err := template.New("system").Parse(SystemTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse system template: %w", err)
	}
	decompose, err := template.New("decompose").Parse(DecomposeTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse decompose template: %w", err)
	}
	reason, err := template.New("reason").Parse(ReasonTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse reason template: %w", err)
	}

	return &Generator{
		system:    system,
		decompose: decompose,
		reason:    reason,
		budget:    budget,
	}, nil
}

func (g *Generator) System(tools []entity.ToolDefinition) (string, error) {
	toolsJSON, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tool definitions: %w", err)
	}
	return render(g.system, systemData{Tools: tools, ToolsJSON: string(toolsJSON)})
}

func (g *Generator) Decompose(goal string) (string, error) {
	return render(g.decompose, struct{ Goal string }{Goal: goal})
}

// Reason drops context lines oldest first until prompt plus reserve fits.
func (g *Generator) Reason(data ReasonData, reserve int) (string, error) {
	system, err := g.System(data.Tools)
	if err != nil {
		return "", err
	}

	lines := data.Context
	for {
		prompt, err := render(g.reason, reasonView{
			System:  system,
			Goal:    data.Goal,
			Task:    data.Task,
			Context: lines,
		})
		if err != nil {
			return "", err
		}
		if g.budget == nil || len(lines) == 0 || g.budget.Fits(prompt, reserve) {
			return prompt, nil
		}
		lines = lines[1:]
	}
}

func Action(reasonPrompt, thought string) string {
	return reasonPrompt + " " + thought + "\n" + entity.ActionLabel
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tmpl.Name(), err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
