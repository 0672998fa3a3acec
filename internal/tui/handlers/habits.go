package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/models"
	habitlist "github.com/julianstephens/habithero/internal/tui/components/habits"
	"github.com/julianstephens/habithero/internal/tui/state"
)

// validateTitle applies the same rules the habit service enforces on add.
func validateTitle(s string) error {
	return models.Validate(models.HabitInput{Title: strings.TrimSpace(s)})
}

func validateIcon(s string) error {
	return models.Validate(models.HabitInput{Title: "-", Icon: strings.TrimSpace(s)})
}

// NewHabitForm builds the add-habit form bound to fm
func NewHabitForm(fm *state.HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(validateTitle),
			huh.NewInput().
				Title("Icon").
				Description("An emoji, optional").
				Value(&fm.Icon).
				Validate(validateIcon),
			huh.NewInput().
				Title("XP per completion").
				Description(fmt.Sprintf("Empty or 0 means %d", constants.DefaultXPReward)).
				Value(&fm.XPReward).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if n, err := strconv.Atoi(s); err == nil && n < 0 {
						return errors.New("XP reward cannot be negative")
					}
					return nil
				}),
		),
	)
}

// HandleAddHabitState handles the add habit state
func HandleAddHabitState(m *state.Model, msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.State = constants.StateHabits
		m.FormError = ""
		return nil
	}

	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}
	cmds = append(cmds, cmd)

	switch m.Form.State {
	case huh.StateCompleted:
		habit, err := m.Habits.Add(m.Owner, models.HabitInput{
			Title:    m.HabitForm.Title,
			Icon:     m.HabitForm.Icon,
			XPReward: m.HabitForm.XPReward,
		})
		if err != nil {
			// Stay in the form so the user can fix the input or cancel with ESC
			m.FormError = fmt.Sprintf("Failed to add habit: %v", err)
			m.Form.State = huh.StateNormal
			return tea.Batch(cmds...)
		}
		m.FormError = ""
		m.Refresh()
		m.SetStatus(fmt.Sprintf("Added %s (+%d XP per completion)", habit.Title, habit.XPReward))
		m.State = constants.StateHabits
	case huh.StateAborted:
		m.State = constants.StateHabits
	}
	return tea.Batch(cmds...)
}

// HandleConfirmDeleteState handles the delete confirmation prompt
func HandleConfirmDeleteState(m *state.Model, msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		if err := m.Habits.Delete(m.Owner, m.HabitToDeleteID); err != nil {
			m.SetError(fmt.Errorf("failed to delete habit: %w", err))
		} else {
			m.Refresh()
			m.SetStatus(fmt.Sprintf("Deleted %s", m.HabitToDeleteTitle))
		}
		m.State = constants.StateHabits
		m.HabitToDeleteID, m.HabitToDeleteTitle = "", ""
	case "n", "N", "esc", "q":
		m.State = constants.StateHabits
		m.HabitToDeleteID, m.HabitToDeleteTitle = "", ""
	}
	return nil
}

// HandleHabitMessages handles messages from the habits component
func HandleHabitMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.HabitForm = &state.HabitFormModel{}
		m.Form = NewHabitForm(m.HabitForm)
		m.FormError = ""
		m.State = constants.StateAddHabit
		return true, m.Form.Init()

	case habitlist.CompleteHabitMsg:
		res, err := m.Habits.CompleteToday(m.Owner, msg.ID)
		if err != nil {
			m.SetError(fmt.Errorf("failed to complete habit: %w", err))
			return true, nil
		}
		m.Refresh()
		if res.Added {
			m.SetStatus(fmt.Sprintf("✓ %s done for %s (+%d XP) · streak %d", res.Habit.Title, res.Day, res.Habit.XPReward, res.Habit.CurrentStreak))
		} else {
			m.SetStatus(fmt.Sprintf("%s is already done today", res.Habit.Title))
		}
		return true, nil

	case habitlist.DeleteHabitMsg:
		m.HabitToDeleteID = msg.ID
		m.HabitToDeleteTitle = msg.Title
		m.State = constants.StateConfirmDelete
		return true, nil

	case habitlist.ReloadMsg:
		m.SetStatus("")
		m.Refresh()
		if !m.StatusIsError {
			m.SetStatus("Reloaded")
		}
		return true, nil
	}
	return false, nil
}
