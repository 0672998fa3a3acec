package habits

import (
	"fmt"
	"strings"

	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/models"
)

// Resolve finds one of owner's habits by id, unique id prefix, or
// case-insensitive title.
func (s *Service) Resolve(owner, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, fmt.Errorf("%w: habit reference cannot be empty", apperrors.ErrValidation)
	}

	habits, err := s.store.ListHabits(owner)
	if err != nil {
		return models.Habit{}, err
	}

	var byPrefix, byTitle []models.Habit
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
		if strings.HasPrefix(h.ID, ref) {
			byPrefix = append(byPrefix, h)
		}
		if strings.EqualFold(h.Title, ref) {
			byTitle = append(byTitle, h)
		}
	}

	for _, matches := range [][]models.Habit{byPrefix, byTitle} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return models.Habit{}, fmt.Errorf("%w: %q matches %d habits, use the id", apperrors.ErrValidation, ref, len(matches))
		}
	}
	return models.Habit{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, ref)
}
