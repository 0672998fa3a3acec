package models

import "github.com/julianstephens/habithero/internal/constants"

// XPTargets holds an owner's XP goals. Zero means no goal for that period.
type XPTargets struct {
	OwnerID string `json:"owner_id"`
	Weekly  int    `json:"weekly" validate:"gte=0"`
	Monthly int    `json:"monthly" validate:"gte=0"`
	Yearly  int    `json:"yearly" validate:"gte=0"`
}

// For returns the target for a period
func (t XPTargets) For(period constants.GoalPeriod) int {
	switch period {
	case constants.GoalWeekly:
		return t.Weekly
	case constants.GoalMonthly:
		return t.Monthly
	case constants.GoalYearly:
		return t.Yearly
	default:
		return 0
	}
}

// Suggestion is an AI-proposed habit
type Suggestion struct {
	Title   string `json:"title"`
	Benefit string `json:"benefit"`
}
