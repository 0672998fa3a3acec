// Package tui is the interactive habit dashboard.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/habits"
	"github.com/julianstephens/habithero/internal/tui/state"
)

type Model struct {
	state.Model
}

func NewModel(svc *habits.Service, owner string) Model {
	return Model{Model: state.New(svc, owner)}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.Keys.Quit, m.Keys.Help}
	if m.State == constants.StateHabits {
		keys = append(keys, m.HabitsModel.Keys().Bindings()...)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.Keys.Quit, m.Keys.Help}
	navigation := []key.Binding{m.Keys.Up, m.Keys.Down}

	var actions []key.Binding
	if m.State == constants.StateHabits {
		actions = m.HabitsModel.Keys().Bindings()
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.HabitsModel.Init()
}
