package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/tracker"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// CmdBarModel manages the command input bar
type CmdBarModel struct {
	input   textinput.Model
	focused bool
}

// NewCmdBarModel creates a new command bar
func NewCmdBarModel() *CmdBarModel {
	ti := textinput.New()
	ti.Placeholder = "add <title> | move <status> | log <hours> | remaining <hours> | rm"
	ti.CharLimit = 256
	ti.Prompt = promptStyle.Render(": ")
	return &CmdBarModel{
		input: ti,
	}
}

// Focused reports whether the bar is taking input.
func (m *CmdBarModel) Focused() bool {
	return m.focused
}

// Focus focuses the command bar
func (m *CmdBarModel) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur unfocuses the command bar
func (m *CmdBarModel) Blur() {
	m.focused = false
	m.input.Blur()
	m.input.SetValue("")
}

// Value returns the current input.
func (m *CmdBarModel) Value() string {
	return m.input.Value()
}

// SetValue replaces the input and moves the cursor to the end.
func (m *CmdBarModel) SetValue(v string) {
	m.input.SetValue(v)
	m.input.CursorEnd()
}

// SetWidth sets the input width.
func (m *CmdBarModel) SetWidth(w int) {
	m.input.Width = w
}

// Submit returns the current input and blurs
func (m *CmdBarModel) Submit() string {
	val := strings.TrimSpace(m.input.Value())
	m.Blur()
	return val
}

// Update handles messages
func (m *CmdBarModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// View renders the command bar
func (m *CmdBarModel) View() string {
	if m.focused {
		return m.input.View()
	}
	return helpStyle.Render("Press : to enter a command")
}

// Execute processes a command against the selected task, which may be nil.
func (m *CmdBarModel) Execute(client *Client, input string, selected *models.Task) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "q", "quit", "exit":
		return tea.Quit
	case "all":
		return func() tea.Msg { return toggleAllMsg{} }
	}

	return func() tea.Msg {
		switch cmd {
		case "add":
			if len(args) < 1 {
				return commandResultMsg{"Usage: add <title> [estimate]"}
			}
			var estimate *float64
			if n := len(args); n > 1 {
				if h, err := strconv.ParseFloat(args[n-1], 64); err == nil {
					estimate = &h
					args = args[:n-1]
				}
			}
			task, err := client.CreateTask(strings.Join(args, " "), estimate)
			if err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{fmt.Sprintf("✓ Created task: %s", shortID(task.ID))}
		}

		if selected == nil {
			return commandResultMsg{"No task selected"}
		}

		switch cmd {
		case "move":
			if len(args) != 1 {
				return commandResultMsg{"Usage: move <status>"}
			}
			task, err := client.MoveTask(selected.ID, models.TaskStatus(args[0]))
			if err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			note := task.Status.Label()
			if n := len(task.StatusHistory); n > 0 {
				note = task.StatusHistory[n-1].Note
			}
			return commandResultMsg{"✓ " + note}

		case "log":
			if len(args) < 1 {
				return commandResultMsg{"Usage: log <hours> [category]"}
			}
			h, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return commandResultMsg{"Error: hours must be a number"}
			}
			category := ""
			if len(args) > 1 {
				category = args[1]
			}
			work, err := client.LogWork(selected.ID, h, category)
			if err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			msg := fmt.Sprintf("✓ Logged %sh", tracker.FormatHours(h))
			if work.Entry != nil {
				msg += fmt.Sprintf(", %sh remaining", tracker.FormatHours(work.Entry.RemainingHours))
			}
			return commandResultMsg{msg}

		case "remaining":
			if len(args) != 1 {
				return commandResultMsg{"Usage: remaining <hours>"}
			}
			h, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return commandResultMsg{"Error: hours must be a number"}
			}
			entry, err := client.SetRemaining(selected.ID, h, "Set from TUI")
			if err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			if entry == nil {
				return commandResultMsg{"Remaining hours unchanged"}
			}
			return commandResultMsg{fmt.Sprintf("✓ Remaining %sh", tracker.FormatHours(entry.RemainingHours))}

		case "rm":
			if err := client.DeleteTask(selected.ID); err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{fmt.Sprintf("✓ Deleted %s", shortID(selected.ID))}

		default:
			return commandResultMsg{fmt.Sprintf("Unknown: %s (try: add, move, log, remaining, rm)", cmd)}
		}
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

type commandResultMsg struct {
	message string
}

type toggleAllMsg struct{}
