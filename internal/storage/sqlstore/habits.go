package sqlstore

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habithero/internal/datekey"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/models"
)

type habitRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	Title     string `db:"title"`
	Icon      string `db:"icon"`
	XPReward  int    `db:"xp_reward"`
	CreatedAt string `db:"created_at"`
}

type completionRow struct {
	HabitID string `db:"habit_id"`
	Day     string `db:"day"`
}

func (r habitRow) toModel(l ledger.Ledger) (models.Habit, error) {
	createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", r.ID, err)
	}
	return models.Habit{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Icon:        r.Icon,
		XPReward:    r.XPReward,
		Completions: l,
		CreatedAt:   createdAt,
	}, nil
}

// CreateHabit inserts h and any completions it already carries. An empty ID
// is replaced with a new UUID. The stored ID is returned.
func (s *Store) CreateHabit(h models.Habit) (string, error) {
	if err := s.ready("create habit"); err != nil {
		return "", err
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.now()
	}

	err := s.inTx("create habit", func(tx *sqlx.Tx) error {
		_, err := tx.Exec(s.db.Rebind(`
			INSERT INTO habits (id, owner_id, title, icon, xp_reward, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			h.ID, h.OwnerID, h.Title, h.Icon, h.XPReward, formatTime(h.CreatedAt))
		if err != nil {
			return apperrors.Unavailable("create habit", err)
		}
		for _, day := range h.Completions.Strings() {
			if _, err := tx.Exec(s.db.Rebind(`
				INSERT INTO habit_completions (habit_id, day, created_at) VALUES (?, ?, ?)`),
				h.ID, day, formatTime(s.now())); err != nil {
				return apperrors.Unavailable("create habit", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return h.ID, nil
}

func (s *Store) GetHabit(owner, id string) (models.Habit, error) {
	if err := s.ready("get habit"); err != nil {
		return models.Habit{}, err
	}

	var row habitRow
	err := s.db.Get(&row, s.db.Rebind(`
		SELECT id, owner_id, title, icon, xp_reward, created_at
		FROM habits WHERE id = ?`), id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return models.Habit{}, apperrors.Unavailable("get habit", err)
	}
	if row.OwnerID != owner {
		return models.Habit{}, fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, id)
	}

	var days []string
	if err := s.db.Select(&days, s.db.Rebind(
		"SELECT day FROM habit_completions WHERE habit_id = ? ORDER BY day"), id); err != nil {
		return models.Habit{}, apperrors.Unavailable("get habit", err)
	}
	l, err := ledger.FromStrings(days)
	if err != nil {
		return models.Habit{}, err
	}
	return row.toModel(l)
}

// ListHabits returns owner's habits in creation order with their ledgers.
func (s *Store) ListHabits(owner string) ([]models.Habit, error) {
	if err := s.ready("list habits"); err != nil {
		return nil, err
	}

	var rows []habitRow
	if err := s.db.Select(&rows, s.db.Rebind(`
		SELECT id, owner_id, title, icon, xp_reward, created_at
		FROM habits WHERE owner_id = ?
		ORDER BY created_at, id`), owner); err != nil {
		return nil, apperrors.Unavailable("list habits", err)
	}

	var completions []completionRow
	if err := s.db.Select(&completions, s.db.Rebind(`
		SELECT c.habit_id, c.day
		FROM habit_completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE h.owner_id = ?`), owner); err != nil {
		return nil, apperrors.Unavailable("list habits", err)
	}
	byHabit := make(map[string][]string, len(rows))
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c.Day)
	}

	habits := make([]models.Habit, 0, len(rows))
	for _, r := range rows {
		l, err := ledger.FromStrings(byHabit[r.ID])
		if err != nil {
			return nil, err
		}
		h, err := r.toModel(l)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

// UpdateHabit writes only the fields set in patch.
func (s *Store) UpdateHabit(owner, id string, patch models.HabitPatch) error {
	if err := s.ready("update habit"); err != nil {
		return err
	}

	var sets []string
	var args []interface{}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *patch.Icon)
	}
	if patch.XPReward != nil {
		sets = append(sets, "xp_reward = ?")
		args = append(args, *patch.XPReward)
	}

	return s.inTx("update habit", func(tx *sqlx.Tx) error {
		if err := s.authorize(tx, "update habit", owner, id); err != nil {
			return err
		}
		if len(sets) == 0 {
			return nil
		}
		query := "UPDATE habits SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		args = append(args, id)
		if _, err := tx.Exec(s.db.Rebind(query), args...); err != nil {
			return apperrors.Unavailable("update habit", err)
		}
		return nil
	})
}

// MarkComplete inserts day into the habit's ledger unless already present.
// The unique (habit_id, day) key makes concurrent inserts of the same day
// collapse into one row.
func (s *Store) MarkComplete(owner, id string, day datekey.Key) (bool, error) {
	if err := s.ready("mark complete"); err != nil {
		return false, err
	}

	added := false
	err := s.inTx("mark complete", func(tx *sqlx.Tx) error {
		if err := s.authorize(tx, "mark complete", owner, id); err != nil {
			return err
		}
		res, err := tx.Exec(s.db.Rebind(`
			INSERT INTO habit_completions (habit_id, day, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (habit_id, day) DO NOTHING`),
			id, day.String(), formatTime(s.now()))
		if err != nil {
			return apperrors.Unavailable("mark complete", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperrors.Unavailable("mark complete", err)
		}
		added = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// DeleteHabit removes the habit and its ledger.
func (s *Store) DeleteHabit(owner, id string) error {
	if err := s.ready("delete habit"); err != nil {
		return err
	}
	return s.inTx("delete habit", func(tx *sqlx.Tx) error {
		if err := s.authorize(tx, "delete habit", owner, id); err != nil {
			return err
		}
		if _, err := tx.Exec(s.db.Rebind("DELETE FROM habit_completions WHERE habit_id = ?"), id); err != nil {
			return apperrors.Unavailable("delete habit", err)
		}
		if _, err := tx.Exec(s.db.Rebind("DELETE FROM habits WHERE id = ?"), id); err != nil {
			return apperrors.Unavailable("delete habit", err)
		}
		return nil
	})
}
