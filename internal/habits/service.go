// Package habits implements the commands and queries every front end uses.
// Streak and XP numbers come only from package stats.
package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/datekey"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/stats"
	"github.com/julianstephens/habithero/internal/storage"
)

type Service struct {
	store storage.Provider
	now   func() time.Time
	loc   *time.Location
}

// NewService wires the service to a loaded store. A nil clock uses
// time.Now and a nil location uses time.Local.
func NewService(store storage.Provider, now func() time.Time, loc *time.Location) *Service {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, now: now, loc: loc}
}

// Now returns the current instant in the configured zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns today's calendar day in the configured zone.
func (s *Service) Today() datekey.Key {
	return datekey.Today(s.Now())
}

// CompletionResult reports the outcome of CompleteToday. Habit reflects the
// store's state after the write.
type CompletionResult struct {
	Habit stats.HabitSummary
	Day   datekey.Key
	Added bool
}

// Dashboard is the read model for the main screen.
type Dashboard struct {
	Habits   []stats.HabitSummary
	Overview stats.Overview
	Goals    []stats.Goal
}

// Add validates in, applies the default XP reward and stores a new habit.
func (s *Service) Add(owner string, in models.HabitInput) (models.Habit, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Icon = strings.TrimSpace(in.Icon)
	if err := models.Validate(in); err != nil {
		return models.Habit{}, err
	}
	xp := models.ParseXPReward(in.XPReward)
	if xp < 0 {
		return models.Habit{}, fmt.Errorf("%w: xp reward must be positive", apperrors.ErrValidation)
	}

	h := models.Habit{
		OwnerID:   owner,
		Title:     in.Title,
		Icon:      in.Icon,
		XPReward:  xp,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	id, err := s.store.CreateHabit(h)
	if err != nil {
		return models.Habit{}, err
	}
	h.ID = id
	logger.Info("Added habit", "id", id, "title", h.Title, "xp", xp)
	return h, nil
}

// List returns owner's habits in creation order.
func (s *Service) List(owner string) ([]models.Habit, error) {
	return s.store.ListHabits(owner)
}

// Get returns one of owner's habits by exact id.
func (s *Service) Get(owner, id string) (models.Habit, error) {
	return s.store.GetHabit(owner, id)
}

// CompleteToday marks today done for habit id. A habit already done today
// is returned unchanged without a write.
func (s *Service) CompleteToday(owner, id string) (CompletionResult, error) {
	now := s.Now()
	today := datekey.Today(now)

	h, err := s.store.GetHabit(owner, id)
	if err != nil {
		return CompletionResult{}, err
	}
	if h.Completions.IsComplete(today) {
		return CompletionResult{Habit: stats.Summarize(h, now), Day: today}, nil
	}

	added, err := s.store.MarkComplete(owner, id, today)
	if err != nil {
		logger.Warn("Completion not recorded", "id", id, "day", today, "error", err)
		return CompletionResult{}, err
	}

	h, err = s.store.GetHabit(owner, id)
	if err != nil {
		return CompletionResult{}, err
	}
	if added {
		logger.Info("Completed habit", "id", id, "day", today)
	}
	return CompletionResult{Habit: stats.Summarize(h, now), Day: today, Added: added}, nil
}

// Edit merges the non-nil fields of patch into the habit.
func (s *Service) Edit(owner, id string, patch models.HabitPatch) (models.Habit, error) {
	patch.Normalize()
	if err := models.Validate(patch); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.UpdateHabit(owner, id, patch); err != nil {
		return models.Habit{}, err
	}
	return s.store.GetHabit(owner, id)
}

// Delete removes the habit and its completion history.
func (s *Service) Delete(owner, id string) error {
	if err := s.store.DeleteHabit(owner, id); err != nil {
		return err
	}
	logger.Info("Deleted habit", "id", id)
	return nil
}

// Dashboard summarizes every habit of owner as of today.
func (s *Service) Dashboard(owner string) (Dashboard, error) {
	habits, err := s.store.ListHabits(owner)
	if err != nil {
		return Dashboard{}, err
	}
	targets, err := s.store.GetXPTargets(owner)
	if err != nil {
		return Dashboard{}, err
	}

	now := s.Now()
	d := Dashboard{
		Habits:   make([]stats.HabitSummary, 0, len(habits)),
		Overview: stats.Aggregate(habits, now),
	}
	for _, h := range habits {
		d.Habits = append(d.Habits, stats.Summarize(h, now))
	}
	d.Goals = stats.GoalProgress(targets, d.Overview.TotalXP)
	return d, nil
}

// Calendar returns the last days days of habit id ending at end, oldest first.
func (s *Service) Calendar(owner, id string, end datekey.Key, days int) (models.Habit, []ledger.Day, error) {
	if days < 1 || days > constants.MaxCalendarDays {
		return models.Habit{}, nil, fmt.Errorf("%w: days must be between 1 and %d", apperrors.ErrValidation, constants.MaxCalendarDays)
	}
	if end.IsZero() {
		end = s.Today()
	}
	h, err := s.store.GetHabit(owner, id)
	if err != nil {
		return models.Habit{}, nil, err
	}
	return h, h.Completions.Window(end, days), nil
}

// Targets returns owner's XP targets, zero when none are saved.
func (s *Service) Targets(owner string) (models.XPTargets, error) {
	return s.store.GetXPTargets(owner)
}

// SetTargets validates and stores t for owner.
func (s *Service) SetTargets(owner string, t models.XPTargets) error {
	t.OwnerID = owner
	if err := models.Validate(t); err != nil {
		return err
	}
	return s.store.SaveXPTargets(t)
}

// Goals reports progress toward the owner's XP targets.
func (s *Service) Goals(owner string) ([]stats.Goal, error) {
	d, err := s.Dashboard(owner)
	if err != nil {
		return nil, err
	}
	return d.Goals, nil
}
