package sqlstore

import (
	"database/sql"
	stderrors "errors"

	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/models"
)

// GetXPTargets returns owner's targets, or zero targets when none are saved.
func (s *Store) GetXPTargets(owner string) (models.XPTargets, error) {
	if err := s.ready("get xp targets"); err != nil {
		return models.XPTargets{}, err
	}

	var t models.XPTargets
	err := s.db.QueryRowx(s.db.Rebind(`
		SELECT owner_id, weekly, monthly, yearly FROM xp_targets WHERE owner_id = ?`), owner).
		Scan(&t.OwnerID, &t.Weekly, &t.Monthly, &t.Yearly)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.XPTargets{OwnerID: owner}, nil
	}
	if err != nil {
		return models.XPTargets{}, apperrors.Unavailable("get xp targets", err)
	}
	return t, nil
}

func (s *Store) SaveXPTargets(t models.XPTargets) error {
	if err := s.ready("save xp targets"); err != nil {
		return err
	}
	_, err := s.db.Exec(s.db.Rebind(`
		INSERT INTO xp_targets (owner_id, weekly, monthly, yearly)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			weekly = excluded.weekly,
			monthly = excluded.monthly,
			yearly = excluded.yearly`),
		t.OwnerID, t.Weekly, t.Monthly, t.Yearly)
	return apperrors.Unavailable("save xp targets", err)
}
