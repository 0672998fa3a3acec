package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/constants"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var content string
	switch m.State {
	case constants.StateAddHabit:
		content = m.viewAddHabit()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = docStyle.Render(m.HabitsModel.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.Help.View(m),
	)
}

func (m Model) viewHeader() string {
	ov := m.Overview
	stats := []string{
		titleStyle.Render("HabitHero"),
		statStyle.Render(fmt.Sprintf("%s · %s", m.Owner, m.Habits.Today())),
		xpStyle.Render(fmt.Sprintf("⭐ %d XP", ov.TotalXP)),
		statStyle.Render(fmt.Sprintf("%d/%d done today · best streak %d", ov.CompletedToday, ov.Habits, ov.LongestStreak)),
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, stats...)

	var goals []string
	for _, g := range m.Goals {
		if g.Target <= 0 {
			continue
		}
		goals = append(goals, fmt.Sprintf("%s %s %d%%", g.Period, cli.ProgressBar(g.Percent, 10), g.Percent))
	}
	if len(goals) == 0 {
		return header
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, statStyle.Render(strings.Join(goals, "   ")))
}

func (m Model) viewStatus() string {
	if m.Status == "" {
		return ""
	}
	if m.StatusIsError {
		return errorStyle.Render(m.Status)
	}
	return statusStyle.Render(m.Status)
}

func (m Model) viewAddHabit() string {
	view := m.Form.View()
	if m.FormError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, errorStyle.Render(m.FormError))
	}
	return docStyle.Render(view)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.Width, m.Height-6,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and all of its history?", m.HabitToDeleteTitle)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
