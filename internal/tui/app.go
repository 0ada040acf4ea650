// Package tui provides the interactive terminal UI for tasktally.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tasktally/internal/lifecycle"
	"github.com/fentz26/tasktally/internal/models"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	onlineStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

type mode int

const (
	modeList mode = iota
	modeDetail
)

// App is the main TUI application model.
type App struct {
	client       *Client
	list         *TaskListModel
	detail       *TaskDetailModel
	cmdbar       *CmdBarModel
	suggestions  *Suggestions
	mode         mode
	width        int
	height       int
	message      string
	daemonOnline bool
}

// New creates a new TUI application.
func New(apiAddr string) *App {
	client := NewClient(apiAddr)
	return &App{
		client:      client,
		list:        NewTaskListModel(client),
		detail:      NewTaskDetailModel(client),
		cmdbar:      NewCmdBarModel(),
		suggestions: NewSuggestions(),
		mode:        modeList,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.list.Refresh(),
		a.checkDaemon(),
	)
}

// selected returns the task commands act on: the open detail, or the
// highlighted list row.
func (a *App) selected() *models.Task {
	if a.mode == modeDetail {
		if t := a.detail.Task(); t != nil {
			return t
		}
	}
	return a.list.SelectedTask()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.cmdbar.Focused() {
			return a, a.updateCmdBar(msg)
		}
		if a.mode == modeList && a.list.Filtering() {
			return a, a.list.Update(msg)
		}

		switch msg.String() {
		case "q":
			return a, tea.Quit
		case ":":
			a.message = ""
			return a, a.cmdbar.Focus()
		case "esc":
			if a.mode == modeDetail {
				a.mode = modeList
				return a, a.list.Refresh()
			}
		case "tab":
			if a.mode == modeList {
				return a, a.list.CycleFilter()
			}
		case "r":
			if a.mode == modeDetail {
				return a, a.detail.Refresh()
			}
			return a, a.list.Refresh()
		case "enter":
			if a.mode == modeList {
				if t := a.list.SelectedTask(); t != nil {
					a.mode = modeDetail
					a.detail.SetTask(t.ID)
					return a, a.detail.Refresh()
				}
			}
		}

		if a.mode == modeDetail {
			return a, a.detail.Update(msg)
		}
		return a, a.list.Update(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.cmdbar.SetWidth(msg.Width - 6)
		contentHeight := max(msg.Height-6, 5)
		a.list.SetSize(msg.Width, contentHeight)
		a.detail.SetSize(msg.Width, contentHeight)
		return a, nil

	case tasksLoadedMsg:
		return a, a.list.Update(msg)

	case taskDetailLoadedMsg:
		return a, a.detail.Update(msg)

	case daemonStatusMsg:
		a.daemonOnline = msg.online
		return a, a.tickCmd()

	case tickMsg:
		return a, a.checkDaemon()

	case toggleAllMsg:
		return a, a.list.ToggleAll()

	case commandResultMsg:
		a.message = msg.message
		cmds := []tea.Cmd{a.list.Refresh()}
		if a.mode == modeDetail {
			cmds = append(cmds, a.detail.Refresh())
		}
		return a, tea.Batch(cmds...)

	case errMsg:
		a.message = "Error: " + msg.err.Error()
		return a, nil
	}

	if a.mode == modeDetail {
		return a, a.detail.Update(msg)
	}
	return a, a.list.Update(msg)
}

func (a *App) updateCmdBar(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.cmdbar.Blur()
		a.suggestions.Update("", nil)
		return nil
	case "up":
		a.suggestions.Prev()
		return nil
	case "down":
		a.suggestions.Next()
		return nil
	case "tab":
		if v, ok := a.suggestions.Completion(); ok {
			a.cmdbar.SetValue(v)
			a.suggestions.Update(v, a.nextStatuses())
		}
		return nil
	case "enter":
		input := a.cmdbar.Submit()
		a.suggestions.Update("", nil)
		if input == "" {
			return nil
		}
		return a.cmdbar.Execute(a.client, input, a.selected())
	}

	cmd := a.cmdbar.Update(msg)
	a.suggestions.Update(a.cmdbar.Value(), a.nextStatuses())
	return cmd
}

func (a *App) nextStatuses() []models.TaskStatus {
	if t := a.selected(); t != nil {
		return lifecycle.AllowedTransitions(t.Status)
	}
	return nil
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	daemonStatus := onlineStyle.Render("● DAEMON")
	if !a.daemonOnline {
		daemonStatus = offlineStyle.Render("○ DAEMON")
	}
	b.WriteString(titleStyle.Render("tasktally") + "  " + daemonStatus + "\n")

	switch a.mode {
	case modeList:
		b.WriteString(a.list.View())
	case modeDetail:
		b.WriteString(a.detail.View())
	}
	b.WriteString("\n")

	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString(msgStyle.Render(a.message))
	}
	b.WriteString("\n")

	b.WriteString(a.cmdbar.View())
	if a.suggestions.IsVisible() {
		b.WriteString("\n")
		b.WriteString(a.suggestions.Render(a.width))
	}
	b.WriteString("\n")

	var status string
	switch a.mode {
	case modeList:
		status = " ↑↓:nav | Enter:open | /:filter | Tab:status | ::command | r:refresh | q:quit"
	case modeDetail:
		status = " ↑↓:scroll | Esc:back | ::command | r:refresh | q:quit"
	}
	b.WriteString(statusBarStyle.Width(a.width).Render(status))

	return b.String()
}

func (a *App) checkDaemon() tea.Cmd {
	return func() tea.Msg {
		return daemonStatusMsg{online: a.client.Health()}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type errMsg struct {
	err error
}

type daemonStatusMsg struct {
	online bool
}

type tickMsg time.Time
