package stats

import (
	"math"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/models"
)

// TotalXP is the flat per-completion reward times the number of completions.
func TotalXP(h models.Habit) int {
	return h.XPReward * h.Completions.Count()
}

// ProgressToward returns earned as a whole percentage of goal, capped at 100.
// A non-positive goal yields 0.
func ProgressToward(goalXP, earnedXP int) int {
	if goalXP <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(earnedXP) / float64(goalXP)))
	if pct > 100 {
		return 100
	}
	return pct
}

// Goal is the progress toward one XP target.
type Goal struct {
	Period  constants.GoalPeriod `json:"period"`
	Target  int                  `json:"target"`
	Earned  int                  `json:"earned"`
	Percent int                  `json:"percent"`
}

// GoalProgress reports progress toward each configured period target.
// Every period is measured against the owner's total XP.
func GoalProgress(targets models.XPTargets, earned int) []Goal {
	goals := make([]Goal, 0, len(constants.GoalPeriods))
	for _, p := range constants.GoalPeriods {
		target := targets.For(p)
		goals = append(goals, Goal{
			Period:  p,
			Target:  target,
			Earned:  earned,
			Percent: ProgressToward(target, earned),
		})
	}
	return goals
}
