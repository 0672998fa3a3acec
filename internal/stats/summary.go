package stats

import (
	"time"

	"github.com/julianstephens/habithero/internal/datekey"
	"github.com/julianstephens/habithero/internal/models"
)

// HabitSummary is the read model rendered for one habit.
type HabitSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Icon           string `json:"icon"`
	XPReward       int    `json:"xp_reward"`
	CompletedToday bool   `json:"completed_today"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	Completions    int    `json:"completions"`
	TotalXP        int    `json:"total_xp"`
}

// Overview aggregates statistics across all of an owner's habits.
type Overview struct {
	Habits           int `json:"habits"`
	TotalXP          int `json:"total_xp"`
	TotalCompletions int `json:"total_completions"`
	LongestStreak    int `json:"longest_streak"`
	CompletedToday   int `json:"completed_today"`
}

// Summarize computes the streak and XP figures shown for one habit.
func Summarize(h models.Habit, now time.Time) HabitSummary {
	return HabitSummary{
		ID:             h.ID,
		Title:          h.Title,
		Icon:           h.Icon,
		XPReward:       h.XPReward,
		CompletedToday: h.Completions.IsComplete(datekey.Today(now)),
		CurrentStreak:  CurrentStreak(h.Completions, now),
		LongestStreak:  LongestStreak(h.Completions),
		Completions:    h.Completions.Count(),
		TotalXP:        TotalXP(h),
	}
}

// Aggregate rolls habit summaries up into owner-wide totals.
func Aggregate(habits []models.Habit, now time.Time) Overview {
	o := Overview{Habits: len(habits)}
	for _, h := range habits {
		s := Summarize(h, now)
		o.TotalXP += s.TotalXP
		o.TotalCompletions += s.Completions
		if s.LongestStreak > o.LongestStreak {
			o.LongestStreak = s.LongestStreak
		}
		if s.CompletedToday {
			o.CompletedToday++
		}
	}
	return o
}
