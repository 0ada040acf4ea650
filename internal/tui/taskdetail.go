package tui

import (
	"fmt"
	"strings"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tasktally/internal/lifecycle"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/progress"
	"github.com/fentz26/tasktally/internal/tracker"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginTop(1)

	overBudgetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
)

// TaskDetailModel manages the task detail screen
type TaskDetailModel struct {
	client   *Client
	taskID   string
	task     *models.Task
	progress *progress.Progress
	ledger   []models.RemainingHoursEntry
	logs     []models.TimeLog
	viewport viewport.Model
	bar      progressbar.Model
	loading  bool
}

// NewTaskDetailModel creates a new task detail model
func NewTaskDetailModel(client *Client) *TaskDetailModel {
	return &TaskDetailModel{
		client:   client,
		viewport: viewport.New(80, 20),
		bar:      progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(40)),
	}
}

// SetTask sets the task ID to display
func (m *TaskDetailModel) SetTask(id string) {
	m.taskID = id
	m.task = nil
	m.progress = nil
	m.ledger = nil
	m.logs = nil
	m.viewport.GotoTop()
}

// TaskID returns the ID of the displayed task.
func (m *TaskDetailModel) TaskID() string {
	return m.taskID
}

// Task returns the displayed task once loaded.
func (m *TaskDetailModel) Task() *models.Task {
	return m.task
}

// SetSize sets the dimensions
func (m *TaskDetailModel) SetSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h
	m.render()
}

// Refresh fetches task details
func (m *TaskDetailModel) Refresh() tea.Cmd {
	m.loading = true
	id := m.taskID
	return func() tea.Msg {
		task, err := m.client.GetTask(id)
		if err != nil {
			return errMsg{err}
		}
		p, _ := m.client.GetProgress(id)
		ledger, _ := m.client.GetRemainingHistory(id)
		logs, _ := m.client.GetTimeLogs(id)
		return taskDetailLoadedMsg{task, p, ledger, logs}
	}
}

// Update handles messages
func (m *TaskDetailModel) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(taskDetailLoadedMsg); ok {
		if msg.task.ID != m.taskID {
			return nil
		}
		m.loading = false
		m.task = msg.task
		m.progress = msg.progress
		m.ledger = msg.ledger
		m.logs = msg.logs
		m.render()
		return nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// View renders the task detail
func (m *TaskDetailModel) View() string {
	if m.task == nil {
		return "Loading task details..."
	}
	return m.viewport.View()
}

func (m *TaskDetailModel) render() {
	if m.task == nil {
		return
	}
	t := m.task
	var b strings.Builder

	b.WriteString(headerStyle.Render(t.Title))
	b.WriteString("\n\n")

	b.WriteString(m.renderField("ID", t.ID))
	b.WriteString(m.renderField("Status", formatStatus(t.Status)))
	if t.Description != "" {
		b.WriteString(m.renderField("Description", t.Description))
	}
	b.WriteString(m.renderField("Estimate", hours(t.Estimate)))
	b.WriteString(m.renderField("Remaining", hours(t.RemainingHours)))
	if t.DueOn != nil {
		b.WriteString(m.renderField("Due", t.DueOn.Format(models.DateLayout)))
	}
	if next := lifecycle.AllowedTransitions(t.Status); len(next) > 0 {
		names := make([]string, len(next))
		for i, st := range next {
			names[i] = string(st)
		}
		b.WriteString(m.renderField("Next", strings.Join(names, ", ")))
	}

	if p := m.progress; p != nil {
		b.WriteString(sectionStyle.Render("Progress"))
		b.WriteString("\n")
		b.WriteString("  " + m.bar.ViewAs(float64(p.Percentage)/100))
		b.WriteString(fmt.Sprintf("  %sh logged", tracker.FormatHours(p.LoggedHours)))
		if p.OverBudget {
			b.WriteString("  " + overBudgetStyle.Render("over budget"))
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Status History"))
	b.WriteString("\n")
	for _, ev := range t.StatusHistory {
		b.WriteString(fmt.Sprintf("  %s  %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.Note))
	}

	if len(m.ledger) > 0 {
		b.WriteString(sectionStyle.Render("Remaining Hours"))
		b.WriteString("\n")
		for _, e := range m.ledger {
			b.WriteString(fmt.Sprintf("  %s  %s => %s  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"), hours(e.PreviousRemainingHours), hours(&e.RemainingHours), e.Note))
		}
	}

	if len(m.logs) > 0 {
		b.WriteString(sectionStyle.Render("Time Logs"))
		b.WriteString("\n")
		for _, l := range m.logs {
			line := fmt.Sprintf("  %s  %5sh", l.DateLogged, tracker.FormatHours(l.Hours))
			if l.CategoryKey != "" {
				line += "  " + l.CategoryKey
			}
			if l.Notes != "" {
				line += "  " + truncate(l.Notes, 40)
			}
			b.WriteString(line + "\n")
		}
	}

	m.viewport.SetContent(b.String())
}

func (m *TaskDetailModel) renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func hours(h *float64) string {
	if h == nil {
		return "-"
	}
	return tracker.FormatHours(*h) + "h"
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

type taskDetailLoadedMsg struct {
	task     *models.Task
	progress *progress.Progress
	ledger   []models.RemainingHoursEntry
	logs     []models.TimeLog
}
