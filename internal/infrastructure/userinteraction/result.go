package userinteraction

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agent86/internal/domain/entity"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	recentSteps        = 5
	stepObservationLen = 100
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var statusStyles = map[entity.TaskStatus]lipgloss.Style{
	entity.TaskStatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	entity.TaskStatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	entity.TaskStatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	entity.TaskStatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

// renderResult lays out the goal, the task table, the most recent steps
// and a summary panel.
func renderResult(r *entity.RunResult) string {
	sections := []string{
		panelStyle.Render(titleStyle.Render("Goal") + "\n" + r.Goal),
		renderTasks(r.Tasks),
	}
	if steps := renderSteps(r.Steps); steps != "" {
		sections = append(sections, steps)
	}
	sections = append(sections, panelStyle.Render(renderSummary(r)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTasks(tasks []entity.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{strconv.Itoa(t.ID), t.Description, t.Status.String()})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("#", "Task", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(tasks) {
				return statusStyles[tasks[row].Status].Padding(0, 1)
			}
			return cellStyle
		}).
		String()
}

func renderSteps(steps []entity.ReasoningStep) string {
	if len(steps) == 0 {
		return ""
	}
	if len(steps) > recentSteps {
		steps = steps[len(steps)-recentSteps:]
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent steps"))
	for _, s := range steps {
		fmt.Fprintf(&b, "\n[task %d, step %d] %s", s.TaskID, s.Index, s.Thought)
		fmt.Fprintf(&b, "\n  action: %s", s.Action)
		fmt.Fprintf(&b, "\n  result: %s", dimStyle.Render(truncate(oneLine(s.Observation), stepObservationLen)))
	}
	return b.String()
}

func renderSummary(r *entity.RunResult) string {
	status := successStyle.Render("SUCCESS")
	if !r.Success {
		status = failureStyle.Render("INCOMPLETE")
	}

	lines := []string{
		titleStyle.Render("Summary") + "  " + status,
		fmt.Sprintf("Tasks completed: %d/%d", r.CompletedTasks(), len(r.Tasks)),
		fmt.Sprintf("Iterations: %d", r.Iterations),
		fmt.Sprintf("Duration: %s", r.Duration.Round(100*time.Millisecond)),
	}
	if r.RunID != "" {
		lines = append(lines, dimStyle.Render("Run: "+r.RunID))
	}
	return strings.Join(lines, "\n")
}
