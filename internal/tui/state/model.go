package state

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/habits"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/stats"
	habitlist "github.com/julianstephens/habithero/internal/tui/components/habits"
)

// HabitFormModel represents the form model for habit creation
type HabitFormModel struct {
	Title    string
	Icon     string
	XPReward string
}

// Model represents the shared state for the TUI
type Model struct {
	Habits             *habits.Service
	Owner              string
	State              constants.SessionState
	Keys               KeyMap
	Help               help.Model
	HabitsModel        habitlist.Model
	Overview           stats.Overview
	Goals              []stats.Goal
	Form               *huh.Form
	HabitForm          *HabitFormModel
	HabitToDeleteID    string
	HabitToDeleteTitle string
	Status             string
	StatusIsError      bool
	FormError          string
	Quitting           bool
	Width              int
	Height             int
}

// New creates a new state Model and loads the owner's dashboard
func New(svc *habits.Service, owner string) Model {
	m := Model{
		Habits:      svc,
		Owner:       owner,
		State:       constants.StateHabits,
		Keys:        DefaultKeyMap(),
		Help:        help.New(),
		HabitsModel: habitlist.New(nil, 0, 0),
	}
	m.Refresh()
	return m
}

// Refresh reloads the dashboard from the store. Failures are shown in the
// status line and leave the previous data on screen.
func (m *Model) Refresh() {
	dash, err := m.Habits.Dashboard(m.Owner)
	if err != nil {
		logger.Error("Failed to load dashboard", "owner", m.Owner, "error", err)
		m.SetError(fmt.Errorf("failed to load habits: %w", err))
		return
	}
	m.HabitsModel.SetHabits(dash.Habits)
	m.Overview = dash.Overview
	m.Goals = dash.Goals
}

func (m *Model) SetStatus(msg string) {
	m.Status = msg
	m.StatusIsError = false
}

func (m *Model) SetError(err error) {
	m.Status = err.Error()
	m.StatusIsError = true
}
