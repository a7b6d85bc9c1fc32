package relationship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/db"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/logger"
	"github.com/Saifkhan77806/LoveTown/internal/repository"
	"github.com/Saifkhan77806/LoveTown/internal/service/match"
	"gorm.io/gorm"
)

// jobTimeout bounds the work a scheduled job does against the stores.
const jobTimeout = 30 * time.Second

var pairedStatuses = []db.Status{db.StatusMatched, db.StatusChatting}

func UnfreezeJobID(email string) string { return "unfreeze:" + email }

func MatchJobID(email string) string { return "match:" + email }

// UnpinResult is the state of both users after an unpin.
type UnpinResult struct {
	Pairing   db.Match
	Initiator *db.User
	Partner   *db.User
}

// Machine owns the relationship status of every user and the transitions
// between statuses that are not made by the matchmaker.
type Machine struct {
	appCtx     *app.AppContext
	users      *repository.UserRepository
	matches    *repository.MatchRepository
	matchmaker *match.Matchmaker
	freeze     FreezePolicy
}

func NewMachine(appCtx *app.AppContext, mm *match.Matchmaker) *Machine {
	if mm == nil {
		mm = match.NewMatchmaker(appCtx)
	}
	return &Machine{
		appCtx:     appCtx,
		users:      repository.NewUserRepository(appCtx.DB),
		matches:    repository.NewMatchRepository(appCtx.DB),
		matchmaker: mm,
		freeze:     NewFreezePolicy(appCtx.Config),
	}
}

func (m *Machine) Freeze() FreezePolicy { return m.freeze }

// Status returns the user's current record.
func (m *Machine) Status(ctx context.Context, email string) (*db.User, error) {
	u, err := m.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, svcErr.NotFoundOr(err, "user %s not found", email)
	}
	return u, nil
}

// rejectTransition explains why a conditional update did not apply.
func (m *Machine) rejectTransition(ctx context.Context, users *repository.UserRepository, email string, to db.Status) error {
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return svcErr.NotFoundOr(err, "user %s not found", email)
	}
	return svcErr.InvalidTransition("user %s cannot move from %s to %s", email, u.Status, to)
}

// CompleteOnboarding moves a user from onboarding to available and arranges
// a deferred candidate scan.
func (m *Machine) CompleteOnboarding(ctx context.Context, email string) (*db.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, svcErr.BadInput("email is required")
	}

	ok, err := m.users.Transition(ctx, email,
		[]db.Status{db.StatusOnboarding}, db.StatusAvailable, repository.TransitionOpts{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, m.rejectTransition(ctx, m.users, email, db.StatusAvailable)
	}

	log := logger.ForUser(m.appCtx.Logger, email)
	log.Info("onboarding complete")
	m.appCtx.Notify(email, db.StatusAvailable)

	delay := time.Minute
	if m.appCtx.Config != nil && m.appCtx.Config.Match.DeferredDelay > 0 {
		delay = m.appCtx.Config.Match.DeferredDelay
	}
	m.appCtx.Scheduler.Schedule(MatchJobID(email), m.appCtx.Now().Add(delay), func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		m.scan(ctx, email, log)
	})

	return m.Status(ctx, email)
}

// scan runs the matchmaker on behalf of a scheduled job. An empty pool is
// normal here and only logged.
func (m *Machine) scan(ctx context.Context, email string, log *slog.Logger) *db.Match {
	pairing, err := m.matchmaker.FindMatch(ctx, email)
	switch {
	case err == nil:
		return pairing
	case errors.Is(err, svcErr.ErrNoCandidates):
		log.Info("no candidates yet", "err", err)
	default:
		log.Warn("candidate scan failed", "err", err)
	}
	return nil
}

// ReachMilestone moves a matched pair to chatting. It returns false when the
// pair was already chatting, so a repeated call is a no-op.
//
// The pairing is canonical: a participant whose own status disagrees with
// it is logged and brought in line.
func (m *Machine) ReachMilestone(ctx context.Context, a, b string) (bool, error) {
	log := logger.ForRoom(m.appCtx.Logger, db.RoomID(a, b))

	var (
		advanced bool
		pairing  *db.Match
	)
	err := m.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := m.users.WithTx(tx)
		matches := m.matches.WithTx(tx)

		var err error
		pairing, err = matches.FindBetween(ctx, a, b)
		if err != nil {
			return svcErr.NotFoundOr(err, "no pairing between %s and %s", a, b)
		}

		switch pairing.Status {
		case db.StatusChatting:
		case db.StatusMatched:
			ok, err := matches.UpdateStatus(ctx, pairing.ID, db.StatusMatched, db.StatusChatting)
			if err != nil {
				return err
			}
			advanced = ok
		default:
			return svcErr.InvalidTransition("pairing %s-%s is %s", pairing.User1, pairing.User2, pairing.Status)
		}

		for _, p := range []string{pairing.User1, pairing.User2} {
			if err := m.follow(ctx, users, p, db.StatusChatting, log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if advanced {
		log.Info("milestone reached, pair is chatting")
		m.appCtx.Notify(pairing.User1, db.StatusChatting)
		m.appCtx.Notify(pairing.User2, db.StatusChatting)
	}
	return advanced, nil
}

// follow moves a participant of a chatting pairing to chatting, repairing
// any drift from the pairing's status.
func (m *Machine) follow(ctx context.Context, users *repository.UserRepository, email string, to db.Status, log *slog.Logger) error {
	ok, err := users.Transition(ctx, email, []db.Status{db.StatusMatched}, to, repository.TransitionOpts{})
	if err != nil || ok {
		return err
	}
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return svcErr.NotFoundOr(err, "user %s not found", email)
	}
	if u.Status == to {
		return nil
	}
	log.Warn("status drift, following pairing", "user", email, "status", u.Status, "want", to)
	_, err = users.Transition(ctx, email, []db.Status{u.Status}, to, repository.TransitionOpts{})
	return err
}

// Unpin ends the initiator's pairing.
//
// Behavior:
//   - The initiator must be matched or chatting and hold a pairing.
//   - Initiator → frozen until now + freeze window; partner → breakup.
//   - Both matches_count += 1, the pairing is deleted.
//   - An unfreeze job is scheduled for the end of the freeze.
func (m *Machine) Unpin(ctx context.Context, initiator string) (*UnpinResult, error) {
	initiator = strings.TrimSpace(initiator)
	if initiator == "" {
		return nil, svcErr.BadInput("email is required")
	}
	log := logger.ForUser(m.appCtx.Logger, initiator)
	until := m.freeze.Until(m.appCtx.Now())

	var result UnpinResult
	err := m.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := m.users.WithTx(tx)
		matches := m.matches.WithTx(tx)

		u, err := users.GetByEmail(ctx, initiator)
		if err != nil {
			return svcErr.NotFoundOr(err, "user %s not found", initiator)
		}
		if !slices.Contains(pairedStatuses, u.Status) {
			return svcErr.InvalidTransition("user %s cannot unpin while %s", initiator, u.Status)
		}
		pairing, err := matches.FindActiveFor(ctx, initiator)
		if err != nil {
			return svcErr.NotFoundOr(err, "user %s has no active match", initiator)
		}
		partner := pairing.Partner(initiator)

		ok, err := users.Transition(ctx, initiator, pairedStatuses, db.StatusFrozen,
			repository.TransitionOpts{IncrementMatches: true, FrozenUntil: &until})
		if err != nil {
			return err
		}
		if !ok {
			return m.rejectTransition(ctx, users, initiator, db.StatusFrozen)
		}

		ok, err = users.Transition(ctx, partner, pairedStatuses, db.StatusBreakup,
			repository.TransitionOpts{IncrementMatches: true})
		if err != nil {
			return err
		}
		if !ok {
			p, err := users.GetByEmail(ctx, partner)
			if err != nil {
				return svcErr.NotFoundOr(err, "partner %s not found", partner)
			}
			log.Warn("partner status drift, following pairing", "partner", partner, "status", p.Status)
			if _, err := users.Transition(ctx, partner, []db.Status{p.Status}, db.StatusBreakup,
				repository.TransitionOpts{IncrementMatches: true}); err != nil {
				return err
			}
		}

		if _, err := matches.Delete(ctx, pairing.ID); err != nil {
			return err
		}

		result.Pairing = *pairing
		if result.Initiator, err = users.GetByEmail(ctx, initiator); err != nil {
			return err
		}
		if result.Partner, err = users.GetByEmail(ctx, partner); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Warn("unpin failed", "err", err)
		return nil, err
	}

	partner := result.Partner.Email
	log.Info("unpinned", "partner", partner, "frozen_until", until)

	m.appCtx.Scheduler.Cancel(MatchJobID(initiator))
	m.scheduleUnfreeze(initiator, until)
	if m.appCtx.RedisCache != nil {
		if err := m.appCtx.RedisCache.ClearMilestone(ctx, result.Pairing.Ref()); err != nil {
			log.Warn("failed to clear milestone flag", "pairing", result.Pairing.Ref(), "err", err)
		}
	}
	m.appCtx.Notify(initiator, db.StatusFrozen)
	m.appCtx.Notify(partner, db.StatusBreakup)
	return &result, nil
}

func (m *Machine) scheduleUnfreeze(email string, at time.Time) {
	log := logger.ForUser(m.appCtx.Logger, email)
	m.appCtx.Scheduler.Schedule(UnfreezeJobID(email), at, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := m.Unfreeze(ctx, email); err != nil {
			log.Error("unfreeze failed", "err", err)
		}
	})
}

// Unfreeze moves a frozen user back to available and runs a candidate scan.
// The returned pairing is nil when the scan found nobody.
func (m *Machine) Unfreeze(ctx context.Context, email string) (*db.Match, error) {
	ok, err := m.users.Transition(ctx, email, []db.Status{db.StatusFrozen}, db.StatusAvailable,
		repository.TransitionOpts{ClearFrozen: true})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, m.rejectTransition(ctx, m.users, email, db.StatusAvailable)
	}

	log := logger.ForUser(m.appCtx.Logger, email)
	log.Info("unfrozen")
	m.appCtx.Notify(email, db.StatusAvailable)

	return m.scan(ctx, email, log), nil
}

// RestoreFreezeTimers re-arms unfreeze jobs for users frozen before a
// restart. Freezes that already expired fire right away.
func (m *Machine) RestoreFreezeTimers(ctx context.Context) (int, error) {
	frozen, err := m.users.ListFrozen(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore freeze timers: %w", err)
	}
	now := m.appCtx.Now()
	for _, u := range frozen {
		at := now
		if u.FrozenUntil != nil && u.FrozenUntil.After(now) {
			at = *u.FrozenUntil
		}
		m.scheduleUnfreeze(u.Email, at)
	}
	if len(frozen) > 0 {
		m.appCtx.Logger.Info("freeze timers restored", "count", len(frozen))
	}
	return len(frozen), nil
}
