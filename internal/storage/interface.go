package storage

import (
	"github.com/julianstephens/habithero/internal/datekey"
	"github.com/julianstephens/habithero/internal/models"
)

// Provider persists habits and XP targets. Every habit operation takes the
// acting owner: a missing habit yields errors.ErrNotFound and a habit owned
// by someone else yields errors.ErrUnauthorized.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	CreateHabit(models.Habit) (string, error)
	GetHabit(owner, id string) (models.Habit, error)
	ListHabits(owner string) ([]models.Habit, error)
	UpdateHabit(owner, id string, patch models.HabitPatch) error
	// MarkComplete inserts day into the habit's ledger if absent, atomically
	// with respect to other writers of the same day. It reports whether the
	// day was newly added.
	MarkComplete(owner, id string, day datekey.Key) (bool, error)
	DeleteHabit(owner, id string) error

	// XP targets
	GetXPTargets(owner string) (models.XPTargets, error)
	SaveXPTargets(models.XPTargets) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by SQL-backed providers with versioned schemas.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersions() (current, latest int, err error)
}
