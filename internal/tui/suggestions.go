package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tasktally/internal/models"
)

// Suggestions provides autocomplete for the command bar
type Suggestions struct {
	items       []SuggestionItem
	filtered    []SuggestionItem
	selectedIdx int
	visible     bool
	header      string
	lead        string // text kept in front of the completed word
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
}

var commandSuggestions = []SuggestionItem{
	{Text: "add", Description: "add <title> [estimate]: create a task"},
	{Text: "move", Description: "move <status>: change the selected task's status"},
	{Text: "log", Description: "log <hours> [category]: log work and burn it down"},
	{Text: "remaining", Description: "remaining <hours>: set remaining hours"},
	{Text: "rm", Description: "delete the selected task"},
	{Text: "all", Description: "show or hide closed tasks"},
	{Text: "quit", Description: "exit"},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{}
}

// Update updates suggestions based on the command bar input. next lists
// the statuses the selected task may move to, offered after "move ".
func (s *Suggestions) Update(input string, next []models.TaskStatus) {
	s.visible = false
	s.filtered = nil

	if input == "" {
		return
	}

	if rest, ok := strings.CutPrefix(input, "move "); ok && !strings.Contains(rest, " ") {
		s.items = make([]SuggestionItem, len(next))
		for i, st := range next {
			s.items[i] = SuggestionItem{Text: string(st), Description: st.Label()}
		}
		s.header = "Statuses"
		s.lead = "move "
		s.filter(strings.ToLower(rest))
		return
	}

	if !strings.Contains(input, " ") {
		s.items = commandSuggestions
		s.header = "Commands"
		s.lead = ""
		s.filter(strings.ToLower(input))
	}
}

func (s *Suggestions) filter(query string) {
	s.filtered = []SuggestionItem{}
	for _, item := range s.items {
		if strings.HasPrefix(strings.ToLower(item.Text), query) && item.Text != query {
			s.filtered = append(s.filtered, item)
		}
	}
	s.selectedIdx = 0
	s.visible = len(s.filtered) > 0
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Completion returns the input with the selected suggestion filled in.
func (s *Suggestions) Completion() (string, bool) {
	if !s.IsVisible() || s.selectedIdx >= len(s.filtered) {
		return "", false
	}
	return s.lead + s.filtered[s.selectedIdx].Text + " ", true
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder

	suggestionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1).
		Width(max(width-4, 20))

	selectedStyle := lipgloss.NewStyle().
		Background(primaryColor).
		Foreground(fgColor).
		Bold(true)

	itemStyle := lipgloss.NewStyle().Foreground(fgColor)
	descStyle := lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(s.header))
	b.WriteString("\n")

	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			b.WriteString(descStyle.Render(fmt.Sprintf("  ... and %d more", len(s.filtered)-maxVisible)))
			break
		}

		var line string
		if i == s.selectedIdx {
			line = selectedStyle.Render("▶ " + item.Text)
		} else {
			line = itemStyle.Render("  " + item.Text)
		}
		if item.Description != "" {
			line += " " + descStyle.Render(item.Description)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return suggestionStyle.Render(b.String())
}
