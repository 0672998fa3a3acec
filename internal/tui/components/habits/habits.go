package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habithero/internal/stats"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID    string
	Title string
}

type ReloadMsg struct{}

type Item struct {
	Summary stats.HabitSummary
}

func (i Item) Title() string {
	mark := "○ "
	if i.Summary.CompletedToday {
		mark = "✓ "
	}
	if i.Summary.Icon != "" {
		return mark + i.Summary.Icon + " " + i.Summary.Title
	}
	return mark + i.Summary.Title
}

func (i Item) Description() string {
	s := i.Summary
	return fmt.Sprintf("🔥 %d day streak · best %d · %d XP (+%d each)", s.CurrentStreak, s.LongestStreak, s.TotalXP, s.XPReward)
}

func (i Item) FilterValue() string { return i.Summary.Title }

type KeyMap struct {
	Add      key.Binding
	Complete key.Binding
	Delete   key.Binding
	Reload   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "complete today"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Add, k.Complete, k.Delete, k.Reload}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(summaries []stats.HabitSummary, width, height int) Model {
	l := list.New(toItems(summaries), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = keys.Bindings
	l.AdditionalFullHelpKeys = keys.Bindings

	return Model{list: l, keys: keys}
}

func toItems(summaries []stats.HabitSummary) []list.Item {
	items := make([]list.Item, len(summaries))
	for i, s := range summaries {
		items[i] = Item{Summary: s}
	}
	return items
}

func (m *Model) SetHabits(summaries []stats.HabitSummary) {
	m.list.SetItems(toItems(summaries))
}

// Len returns the number of habits listed.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Reload):
			return m, func() tea.Msg { return ReloadMsg{} }
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Summary.CompletedToday {
				return m, func() tea.Msg { return CompleteHabitMsg{ID: i.Summary.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Summary.ID, Title: i.Summary.Title} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
