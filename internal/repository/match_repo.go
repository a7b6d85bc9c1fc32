package repository

import (
	"context"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MatchRepository provides data access methods for the Match model.
// A user appears in at most one row; the matchmaker deletes prior rows
// before creating a new one.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a copy of the repository that runs on tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// Create inserts a pairing. The unique (user1, user2) index rejects a
// duplicate of an existing pair.
func (r *MatchRepository) Create(ctx context.Context, m *db.Match) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(m).Error, "matchRepo.Create")
}

func involving(email string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("(user1 = ? OR user2 = ?)", email, email)
	}
}

// FindActiveFor returns the pairing containing email, or a wrapped
// gorm.ErrRecordNotFound.
func (r *MatchRepository) FindActiveFor(ctx context.Context, email string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Scopes(involving(email)).Order("matched_at DESC").First(&m).Error
	if err != nil {
		return nil, errors.Wrapf(err, "matchRepo.FindActiveFor(%s)", email)
	}
	return &m, nil
}

// FindBetween returns the pairing of a and b in either order.
func (r *MatchRepository) FindBetween(ctx context.Context, a, b string) (*db.Match, error) {
	u1, u2 := db.SortedPair(a, b)
	var m db.Match
	if err := r.db.WithContext(ctx).Where("user1 = ? AND user2 = ?", u1, u2).First(&m).Error; err != nil {
		return nil, errors.Wrapf(err, "matchRepo.FindBetween(%s, %s)", u1, u2)
	}
	return &m, nil
}

// DeleteFor removes every pairing containing any of emails and returns the
// removed rows so callers can reset superseded partners.
func (r *MatchRepository) DeleteFor(ctx context.Context, emails ...string) ([]db.Match, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	var existing []db.Match
	q := r.db.WithContext(ctx).Where("user1 IN ? OR user2 IN ?", emails, emails)
	if err := q.Find(&existing).Error; err != nil {
		return nil, errors.Wrap(err, "matchRepo.DeleteFor")
	}
	if len(existing) == 0 {
		return nil, nil
	}

	ids := make([]uint64, len(existing))
	for i, m := range existing {
		ids[i] = m.ID
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&db.Match{}).Error; err != nil {
		return nil, errors.Wrap(err, "matchRepo.DeleteFor")
	}
	return existing, nil
}

// Delete removes one pairing. It reports whether a row was removed.
func (r *MatchRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Match{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "matchRepo.Delete")
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatus moves a pairing from one status to another if it is still
// in `from`. A false result means another operation got there first.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id uint64, from, to db.Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "matchRepo.UpdateStatus")
	}
	return res.RowsAffected > 0, nil
}
