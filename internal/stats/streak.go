// Package stats derives streaks, XP totals and goal progress from habit
// completion ledgers. Every screen and command reads its numbers from here.
package stats

import (
	"time"

	"github.com/julianstephens/habithero/internal/datekey"
	"github.com/julianstephens/habithero/internal/ledger"
)

// CurrentStreak counts consecutive completed days ending today. It is 0 when
// today has not been completed yet, even if yesterday was.
func CurrentStreak(l ledger.Ledger, now time.Time) int {
	streak := 0
	for day := datekey.Today(now); l.IsComplete(day); day = datekey.Previous(day) {
		streak++
	}
	return streak
}

// LongestStreak returns the length of the longest run of consecutive days.
func LongestStreak(l ledger.Ledger) int {
	keys := l.SortedKeys()
	if len(keys) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(keys); i++ {
		if datekey.DaysBetween(keys[i-1], keys[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
