package repository

import (
	"context"
	"time"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserRepository provides data access methods for the User model.
// Status and matches_count are only ever changed through Transition so the
// relationship rules stay in one place.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// WithTx returns a copy of the repository that runs on tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// TransitionOpts are the side effects applied together with a status change.
type TransitionOpts struct {
	IncrementMatches bool
	FrozenUntil      *time.Time
	ClearFrozen      bool
}

func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(u).Error, "userRepo.Create")
}

// GetByEmail loads a user by identity. A missing row surfaces as
// gorm.ErrRecordNotFound (wrapped).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, errors.Wrapf(err, "userRepo.GetByEmail(%s)", email)
	}
	return &u, nil
}

// ListCandidates returns users of the given gender whose status is in
// statuses, excluding one identity.
//
// Behavior:
//   - Ordered by email so callers get a deterministic base order.
//   - Uses idx_users_gender_status.
//
// Example:
//
//	repo.ListCandidates(ctx, db.GenderFemale, "a@x.com", []db.Status{db.StatusAvailable})
func (r *UserRepository) ListCandidates(
	ctx context.Context,
	gender db.Gender,
	exclude string,
	statuses []db.Status,
) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("LOWER(gender) = ? AND status IN ? AND email <> ?", string(gender), statuses, exclude).
		Order("email ASC").
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "userRepo.ListCandidates")
	}
	return users, nil
}

// Transition moves a user to status `to` only if the current status is one
// of `from`, in a single conditional UPDATE. It reports whether the row
// changed; false means the user is absent or in another state.
//
// Example:
//
//	ok, err := repo.Transition(ctx, "a@x.com",
//	    []db.Status{db.StatusMatched}, db.StatusChatting, repository.TransitionOpts{})
func (r *UserRepository) Transition(
	ctx context.Context,
	email string,
	from []db.Status,
	to db.Status,
	opts TransitionOpts,
) (bool, error) {
	if !to.Valid() {
		return false, errors.Errorf("userRepo.Transition: unknown status %q", to)
	}

	updates := map[string]any{"status": to}
	if opts.IncrementMatches {
		updates["matches_count"] = gorm.Expr("matches_count + 1")
	}
	switch {
	case opts.FrozenUntil != nil:
		updates["frozen_until"] = *opts.FrozenUntil
	case opts.ClearFrozen:
		updates["frozen_until"] = nil
	}

	// hooks see an empty model here, validation is done above
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&db.User{}).
		Where("email = ? AND status IN ?", email, from).
		Updates(updates)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "userRepo.Transition(%s -> %s)", email, to)
	}
	return res.RowsAffected > 0, nil
}

// ListFrozen returns every frozen user, used to restore unfreeze timers.
func (r *UserRepository) ListFrozen(ctx context.Context) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("status = ?", db.StatusFrozen).
		Order("email ASC").
		Find(&users).Error
	return users, errors.Wrap(err, "userRepo.ListFrozen")
}
