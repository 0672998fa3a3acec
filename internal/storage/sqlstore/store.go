// Package sqlstore implements habit persistence over any database/sql driver
// via sqlx. Queries are written once with ? placeholders and rebound for the
// connection's driver.
package sqlstore

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/julianstephens/habithero/internal/errors"
)

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB returns the underlying connection
func (s *Store) DB() *sqlx.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) ready(op string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: %s: store not loaded", apperrors.ErrStoreUnavailable, op)
	}
	return nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) inTx(op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return apperrors.Unavailable(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Unavailable(op, err)
	}
	return nil
}

// authorize checks that habit id exists and belongs to owner.
func (s *Store) authorize(q sqlx.Queryer, op, owner, id string) error {
	var ownerID string
	err := sqlx.Get(q, &ownerID, s.db.Rebind("SELECT owner_id FROM habits WHERE id = ?"), id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return apperrors.Unavailable(op, err)
	}
	if ownerID != owner {
		return fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
