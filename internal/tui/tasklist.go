package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/tracker"
)

var (
	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusColors = map[models.TaskStatus]lipgloss.Color{
		models.TaskStatusReady:      lipgloss.Color("7"),
		models.TaskStatusEstimated:  lipgloss.Color("4"),
		models.TaskStatusInProgress: lipgloss.Color("6"),
		models.TaskStatusBlocked:    lipgloss.Color("1"),
		models.TaskStatusBackburner: lipgloss.Color("8"),
		models.TaskStatusOnHold:     lipgloss.Color("3"),
		models.TaskStatusCompleted:  lipgloss.Color("2"),
		models.TaskStatusAbandoned:  lipgloss.Color("8"),
		models.TaskStatusArchived:   lipgloss.Color("8"),
	}
)

// TaskItem implements list.Item for the task list
type TaskItem struct {
	Task models.Task
}

func (i TaskItem) FilterValue() string { return i.Task.Title }
func (i TaskItem) Title() string       { return i.Task.Title }
func (i TaskItem) Description() string {
	desc := formatStatus(i.Task.Status)
	if i.Task.RemainingHours != nil {
		desc += fmt.Sprintf(" • %sh left", tracker.FormatHours(*i.Task.RemainingHours))
	}
	if i.Task.DueOn != nil {
		desc += " • due " + i.Task.DueOn.Format(models.DateLayout)
	}
	return desc
}

func formatStatus(status models.TaskStatus) string {
	color, ok := statusColors[status]
	if !ok {
		return string(status)
	}
	return lipgloss.NewStyle().Foreground(color).Render("● " + status.Label())
}

// Status filters cycled with tab. The empty status lists every open task.
var filters = []models.TaskStatus{
	"",
	models.TaskStatusReady,
	models.TaskStatusEstimated,
	models.TaskStatusInProgress,
	models.TaskStatusBlocked,
	models.TaskStatusOnHold,
}

// TaskListModel manages the task list screen
type TaskListModel struct {
	client      *Client
	list        list.Model
	tasks       []models.Task
	filterIndex int
	all         bool
	loading     bool
}

// NewTaskListModel creates a new task list model
func NewTaskListModel(client *Client) *TaskListModel {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Tasks [open]"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = listTitleStyle

	return &TaskListModel{
		client: client,
		list:   l,
	}
}

// SetSize sets the list dimensions
func (m *TaskListModel) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// SelectedTask returns the currently selected task
func (m *TaskListModel) SelectedTask() *models.Task {
	if item, ok := m.list.SelectedItem().(TaskItem); ok {
		task := item.Task
		return &task
	}
	return nil
}

// Filtering reports whether the list is capturing keys for its filter.
func (m *TaskListModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// CycleFilter cycles through status filters
func (m *TaskListModel) CycleFilter() tea.Cmd {
	m.filterIndex = (m.filterIndex + 1) % len(filters)
	m.updateTitle()
	return m.Refresh()
}

// ToggleAll includes or hides completed, abandoned and archived tasks.
func (m *TaskListModel) ToggleAll() tea.Cmd {
	m.all = !m.all
	m.updateTitle()
	return m.Refresh()
}

func (m *TaskListModel) updateTitle() {
	label := "open"
	if st := filters[m.filterIndex]; st != "" {
		label = st.Label()
	}
	if m.all {
		label += " +closed"
	}
	m.list.Title = fmt.Sprintf("Tasks [%s]", label)
}

// Refresh fetches tasks from the API
func (m *TaskListModel) Refresh() tea.Cmd {
	m.loading = true
	status, all := filters[m.filterIndex], m.all
	return func() tea.Msg {
		tasks, err := m.client.ListTasks(status, all)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{tasks}
	}
}

// Update handles messages
func (m *TaskListModel) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tasksLoadedMsg); ok {
		m.loading = false
		m.tasks = msg.tasks
		items := make([]list.Item, len(m.tasks))
		for i, t := range m.tasks {
			items[i] = TaskItem{Task: t}
		}
		return m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

// View renders the task list
func (m *TaskListModel) View() string {
	if m.loading && len(m.tasks) == 0 {
		return "Loading tasks..."
	}
	return m.list.View()
}

type tasksLoadedMsg struct {
	tasks []models.Task
}
