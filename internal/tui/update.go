package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/tui/handlers"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.Width = size.Width
		m.Height = size.Height
		m.Help.Width = size.Width

		// Leave room for the header, status line and help
		listHeight := size.Height - 6
		h, v := docStyle.GetFrameSize()
		m.HabitsModel.SetSize(size.Width-h, listHeight-v)
		return m, nil
	}

	switch m.State {
	case constants.StateAddHabit:
		cmd := handlers.HandleAddHabitState(&m.Model, msg)
		return m, cmd
	case constants.StateConfirmDelete:
		cmd := handlers.HandleConfirmDeleteState(&m.Model, msg)
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if handled, cmd := handlers.HandleGlobalKeys(&m.Model, keyMsg); handled {
			return m, cmd
		}
	}

	if handled, cmd := handlers.HandleHabitMessages(&m.Model, msg); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	m.HabitsModel, cmd = m.HabitsModel.Update(msg)
	return m, cmd
}
