// Package storagetest holds the behaviour every habit store must share.
// Backend tests call Run with a constructor for an initialized store.
package storagetest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habithero/internal/datekey"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/models"
)

// Store is the subset of storage.Provider exercised here.
type Store interface {
	CreateHabit(models.Habit) (string, error)
	GetHabit(owner, id string) (models.Habit, error)
	ListHabits(owner string) ([]models.Habit, error)
	UpdateHabit(owner, id string, patch models.HabitPatch) error
	MarkComplete(owner, id string, day datekey.Key) (bool, error)
	DeleteHabit(owner, id string) error
	GetXPTargets(owner string) (models.XPTargets, error)
	SaveXPTargets(models.XPTargets) error
}

const (
	alice = "user-alice"
	bob   = "user-bob"
)

// Options tunes the suite for backends with different guarantees.
type Options struct {
	// ConflictsSurface is set for backends whose concurrent writers may fail
	// with ErrStoreUnavailable instead of waiting for each other.
	ConflictsSurface bool
}

func Run(t *testing.T, newStore func(t *testing.T) Store, opts Options) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("CreateKeepsImportedLedger", func(t *testing.T) { testImportedLedger(t, newStore(t)) })
	t.Run("ListIsScopedToOwner", func(t *testing.T) { testListScoped(t, newStore(t)) })
	t.Run("Ownership", func(t *testing.T) { testOwnership(t, newStore(t)) })
	t.Run("UpdateMergesFields", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("MarkCompleteIsIdempotent", func(t *testing.T) { testMarkComplete(t, newStore(t)) })
	t.Run("ConcurrentMarkComplete", func(t *testing.T) { testConcurrentMarkComplete(t, newStore(t), opts) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("XPTargets", func(t *testing.T) { testXPTargets(t, newStore(t)) })
}

func newHabit(owner, title string, created time.Time) models.Habit {
	return models.Habit{OwnerID: owner, Title: title, Icon: "✅", XPReward: 5, CreatedAt: created}
}

func base() time.Time {
	return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
}

func testCreateAndGet(t *testing.T, s Store) {
	id, err := s.CreateHabit(newHabit(alice, "Read", base()))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	h, err := s.GetHabit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, id, h.ID)
	assert.Equal(t, alice, h.OwnerID)
	assert.Equal(t, "Read", h.Title)
	assert.Equal(t, "✅", h.Icon)
	assert.Equal(t, 5, h.XPReward)
	assert.True(t, h.CreatedAt.Equal(base()), "created_at = %v", h.CreatedAt)
	assert.Equal(t, 0, h.Completions.Count())

	_, err = s.GetHabit(alice, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func testImportedLedger(t *testing.T, s Store) {
	l, err := ledger.FromStrings([]string{"2024-01-01", "2024-01-02"})
	require.NoError(t, err)
	h := newHabit(alice, "Walk", base())
	h.Completions = l

	id, err := s.CreateHabit(h)
	require.NoError(t, err)

	got, err := s.GetHabit(alice, id)
	require.NoError(t, err)
	assert.True(t, got.Completions.Equal(l), "completions = %v", got.Completions.Strings())
}

func testListScoped(t *testing.T, s Store) {
	first, err := s.CreateHabit(newHabit(alice, "First", base()))
	require.NoError(t, err)
	second, err := s.CreateHabit(newHabit(alice, "Second", base().Add(time.Hour)))
	require.NoError(t, err)
	_, err = s.CreateHabit(newHabit(bob, "Bob's", base()))
	require.NoError(t, err)

	_, err = s.MarkComplete(alice, second, datekey.MustParse("2024-01-02"))
	require.NoError(t, err)

	habits, err := s.ListHabits(alice)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, first, habits[0].ID)
	assert.Equal(t, second, habits[1].ID)
	assert.Equal(t, 0, habits[0].Completions.Count())
	assert.True(t, habits[1].Completions.IsComplete(datekey.MustParse("2024-01-02")))

	none, err := s.ListHabits("nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testOwnership(t *testing.T, s Store) {
	id, err := s.CreateHabit(newHabit(alice, "Private", base()))
	require.NoError(t, err)

	title := "Hijacked"
	day := datekey.MustParse("2024-01-05")

	_, err = s.GetHabit(bob, id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, s.UpdateHabit(bob, id, models.HabitPatch{Title: &title}), apperrors.ErrUnauthorized)
	_, err = s.MarkComplete(bob, id, day)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, s.DeleteHabit(bob, id), apperrors.ErrUnauthorized)

	assert.ErrorIs(t, s.UpdateHabit(alice, "missing", models.HabitPatch{Title: &title}), apperrors.ErrNotFound)
	_, err = s.MarkComplete(alice, "missing", day)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteHabit(alice, "missing"), apperrors.ErrNotFound)

	h, err := s.GetHabit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Private", h.Title)
	assert.False(t, h.Completions.IsComplete(day))
}

func testUpdate(t *testing.T, s Store) {
	id, err := s.CreateHabit(newHabit(alice, "Read", base()))
	require.NoError(t, err)
	_, err = s.MarkComplete(alice, id, datekey.MustParse("2024-01-01"))
	require.NoError(t, err)

	xp := 12
	require.NoError(t, s.UpdateHabit(alice, id, models.HabitPatch{XPReward: &xp}))

	h, err := s.GetHabit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Read", h.Title)
	assert.Equal(t, "✅", h.Icon)
	assert.Equal(t, 12, h.XPReward)
	assert.Equal(t, 1, h.Completions.Count(), "update must not touch the ledger")

	title, icon := "Read daily", "📚"
	require.NoError(t, s.UpdateHabit(alice, id, models.HabitPatch{Title: &title, Icon: &icon}))
	require.NoError(t, s.UpdateHabit(alice, id, models.HabitPatch{}))

	h, err = s.GetHabit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Read daily", h.Title)
	assert.Equal(t, "📚", h.Icon)
	assert.Equal(t, 12, h.XPReward)
}

func testMarkComplete(t *testing.T, s Store) {
	id, err := s.CreateHabit(newHabit(alice, "Read", base()))
	require.NoError(t, err)
	day := datekey.MustParse("2024-01-03")

	added, err := s.MarkComplete(alice, id, day)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.MarkComplete(alice, id, day)
	require.NoError(t, err)
	assert.False(t, added)

	added, err = s.MarkComplete(alice, id, datekey.Previous(day))
	require.NoError(t, err)
	assert.True(t, added)

	h, err := s.GetHabit(alice, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, h.Completions.Strings())
}

func testConcurrentMarkComplete(t *testing.T, s Store, opts Options) {
	id, err := s.CreateHabit(newHabit(alice, "Read", base()))
	require.NoError(t, err)
	day := datekey.MustParse("2024-02-29")

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		added   int
		failed  int
		unknown []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.MarkComplete(alice, id, day)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && ok:
				added++
			case err == nil:
			case opts.ConflictsSurface && apperrors.Kind(err) == "store_unavailable":
				failed++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unknown)
	assert.LessOrEqual(t, added, 1)
	if !opts.ConflictsSurface {
		assert.Equal(t, 1, added)
	}

	h, err := s.GetHabit(alice, id)
	require.NoError(t, err)
	if added == 1 {
		assert.Equal(t, 1, h.Completions.Count())
	}
	assert.LessOrEqual(t, h.Completions.Count(), 1)
	if added == 0 {
		ok, err := s.MarkComplete(alice, id, day)
		require.NoError(t, err)
		assert.True(t, ok, "retry after conflicts should add the day")
	}
}

func testDelete(t *testing.T, s Store) {
	id, err := s.CreateHabit(newHabit(alice, "Temporary", base()))
	require.NoError(t, err)
	_, err = s.MarkComplete(alice, id, datekey.MustParse("2024-01-01"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteHabit(alice, id))

	_, err = s.GetHabit(alice, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	habits, err := s.ListHabits(alice)
	require.NoError(t, err)
	assert.Empty(t, habits)
	assert.ErrorIs(t, s.DeleteHabit(alice, id), apperrors.ErrNotFound)
}

func testXPTargets(t *testing.T, s Store) {
	got, err := s.GetXPTargets(alice)
	require.NoError(t, err)
	assert.Equal(t, models.XPTargets{OwnerID: alice}, got)

	want := models.XPTargets{OwnerID: alice, Weekly: 50, Monthly: 200, Yearly: 2000}
	require.NoError(t, s.SaveXPTargets(want))
	got, err = s.GetXPTargets(alice)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Weekly = 75
	require.NoError(t, s.SaveXPTargets(want))
	got, err = s.GetXPTargets(alice)
	require.NoError(t, err)
	assert.Equal(t, 75, got.Weekly)

	other, err := s.GetXPTargets(bob)
	require.NoError(t, err)
	assert.Equal(t, 0, other.Weekly)
}
