package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/ledger"
)

// Habit represents a tracked daily behaviour owned by one user
type Habit struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Title       string        `json:"title"`
	Icon        string        `json:"icon"`
	XPReward    int           `json:"xp_reward"`
	Completions ledger.Ledger `json:"completions"`
	CreatedAt   time.Time     `json:"created_at"`
}

// HabitInput is the raw "add habit" form. XPReward is kept as text because
// the form value may be empty or non-numeric.
type HabitInput struct {
	Title    string `validate:"required,maxgraphemes=128"`
	Icon     string `validate:"maxgraphemes=2"`
	XPReward string
}

// HabitPatch carries the fields an edit changes. Nil fields are left alone.
type HabitPatch struct {
	Title    *string `validate:"omitempty,notblank,maxgraphemes=128"`
	Icon     *string `validate:"omitempty,maxgraphemes=2"`
	XPReward *int    `validate:"omitempty,gt=0"`
}

// IsEmpty reports whether the patch changes nothing
func (p HabitPatch) IsEmpty() bool {
	return p.Title == nil && p.Icon == nil && p.XPReward == nil
}

// Normalize trims the text fields of the patch in place
func (p *HabitPatch) Normalize() {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
	if p.Icon != nil {
		i := strings.TrimSpace(*p.Icon)
		p.Icon = &i
	}
}

// Apply returns h with the patch merged in
func (p HabitPatch) Apply(h Habit) Habit {
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Icon != nil {
		h.Icon = *p.Icon
	}
	if p.XPReward != nil {
		h.XPReward = *p.XPReward
	}
	return h
}

// ParseXPReward converts the raw creation value. Empty, non-numeric and zero
// values fall back to the default reward; negatives are returned as-is so
// validation can reject them.
func ParseXPReward(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == 0 {
		return constants.DefaultXPReward
	}
	return n
}
