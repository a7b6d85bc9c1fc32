package match

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/compat"
	"github.com/Saifkhan77806/LoveTown/internal/db"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/logger"
	"github.com/Saifkhan77806/LoveTown/internal/repository"
	"gorm.io/gorm"
)

// EligibleStatuses are the statuses a candidate may be in. The same list
// applies to direct requests, deferred onboarding scans and unfreeze rescans.
var EligibleStatuses = []db.Status{db.StatusAvailable, db.StatusBreakup}

// requesterStatuses are the statuses from which a user may ask for a match.
// Matched and chatting users rematch, which retires their current pairing.
var requesterStatuses = []db.Status{
	db.StatusAvailable, db.StatusBreakup, db.StatusMatched, db.StatusChatting,
}

// Matchmaker picks the most compatible candidate for a user and records the
// pairing. Each call runs in one transaction: the pairing and both status
// changes commit together or not at all.
type Matchmaker struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	matches *repository.MatchRepository
	scorer  compat.Scorer
}

func NewMatchmaker(appCtx *app.AppContext) *Matchmaker {
	return &Matchmaker{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		matches: repository.NewMatchRepository(appCtx.DB),
		scorer:  compat.NewScorer(appCtx.Config),
	}
}

type rankedCandidate struct {
	user  db.User
	score float64
}

// FindMatch pairs email with its best candidate.
//
// Behavior:
//   - The requester must exist, have a recognised gender and be available,
//     breakup, matched or chatting.
//   - Candidates are of the opposite gender and in EligibleStatuses.
//   - Highest score wins; equal scores go to the smaller email.
//   - Any pairing containing the requester or the winner is deleted first;
//     a partner left behind by that returns to available.
//   - Both participants move to matched together with the new pairing.
//
// Example:
//
//	m, err := mm.FindMatch(ctx, "a@x.com")
func (m *Matchmaker) FindMatch(ctx context.Context, email string) (*db.Match, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, svcErr.BadInput("email is required")
	}
	log := logger.ForUser(m.appCtx.Logger, email)

	var (
		created  *db.Match
		released []string
		retired  []string
	)
	err := m.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := m.users.WithTx(tx)
		matches := m.matches.WithTx(tx)

		requester, err := users.GetByEmail(ctx, email)
		if err != nil {
			return svcErr.NotFoundOr(err, "user %s not found", email)
		}
		gender, ok := db.ParseGender(requester.Gender)
		if !ok {
			return svcErr.InvalidProfile(fmt.Sprintf("user %s has no recognised gender", email))
		}
		if !slices.Contains(requesterStatuses, requester.Status) {
			return svcErr.InvalidTransition("user %s cannot be matched while %s", email, requester.Status)
		}

		candidates, err := users.ListCandidates(ctx, gender.Opposite(), email, EligibleStatuses)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return svcErr.NoCandidates(fmt.Sprintf("no eligible candidates for %s", email))
		}

		best, err := m.rank(requester, candidates, log)
		if err != nil {
			return err
		}
		partner := best.user.Email

		removed, err := matches.DeleteFor(ctx, email, partner)
		if err != nil {
			return err
		}
		for _, old := range removed {
			retired = append(retired, old.Ref())
			for _, p := range []string{old.User1, old.User2} {
				if p == email || p == partner {
					continue
				}
				ok, err := users.Transition(ctx, p,
					[]db.Status{db.StatusMatched, db.StatusChatting}, db.StatusAvailable,
					repository.TransitionOpts{})
				if err != nil {
					return err
				}
				if ok {
					released = append(released, p)
				}
			}
		}

		pairing, err := db.NewMatch(email, partner, best.score, m.appCtx.Now())
		if err != nil {
			return svcErr.Wrap(svcErr.CodeInvalidArgument, "invalid pairing", err)
		}
		if err := matches.Create(ctx, pairing); err != nil {
			return err
		}

		moves := []struct {
			email string
			from  []db.Status
		}{
			{email, requesterStatuses},
			{partner, EligibleStatuses},
		}
		for _, mv := range moves {
			ok, err := users.Transition(ctx, mv.email, mv.from, db.StatusMatched, repository.TransitionOpts{})
			if err != nil {
				return err
			}
			if !ok {
				// someone else moved this user since we read it
				return svcErr.InvalidTransition("user %s changed state during matching", mv.email)
			}
		}

		created = pairing
		return nil
	})
	if err != nil {
		log.Warn("match failed", "err", err)
		return nil, err
	}

	log.Info("match created",
		"partner", created.Partner(email),
		"score", created.CompatibilityScore,
		"released", released,
	)
	if len(retired) > 0 && m.appCtx.RedisCache != nil {
		if err := m.appCtx.RedisCache.ClearMilestone(ctx, retired...); err != nil {
			log.Warn("failed to clear milestone flags", "pairings", retired, "err", err)
		}
	}
	m.appCtx.Notify(created.User1, db.StatusMatched)
	m.appCtx.Notify(created.User2, db.StatusMatched)
	for _, p := range released {
		m.appCtx.Notify(p, db.StatusAvailable)
	}
	return created, nil
}

// rank scores every candidate and returns the best one. Candidates whose
// embeddings do not line up with the requester's are skipped; if none can
// be scored the last scoring error is returned.
func (m *Matchmaker) rank(requester *db.User, candidates []db.User, log *slog.Logger) (rankedCandidate, error) {
	ranked := make([]rankedCandidate, 0, len(candidates))
	var lastErr error
	for _, c := range candidates {
		score, err := m.scorer.Score(requester, &c)
		if err != nil {
			log.Warn("skipping candidate", "candidate", c.Email, "err", err)
			lastErr = err
			continue
		}
		ranked = append(ranked, rankedCandidate{user: c, score: score})
	}
	if len(ranked) == 0 {
		return rankedCandidate{}, lastErr
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].user.Email < ranked[j].user.Email
	})
	return ranked[0], nil
}

// CurrentMatch returns the active pairing of email and the partner's profile.
func (m *Matchmaker) CurrentMatch(ctx context.Context, email string) (*db.Match, *db.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil, svcErr.BadInput("email is required")
	}

	pairing, err := m.matches.FindActiveFor(ctx, email)
	if err != nil {
		return nil, nil, svcErr.NotFoundOr(err, "user %s has no active match", email)
	}
	partner, err := m.users.GetByEmail(ctx, pairing.Partner(email))
	if err != nil {
		return nil, nil, svcErr.NotFoundOr(err, "partner of %s not found", email)
	}
	return pairing, partner, nil
}
