package match_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/service/match"
	"github.com/Saifkhan77806/LoveTown/internal/testutil"
)

var (
	east  = []float64{1, 0}
	north = []float64{0, 1}
)

func TestFindMatchPairsMostCompatible(t *testing.T) {
	env := testutil.NewEnv(t)
	notes := &testutil.Notifications{}
	env.App.Notifier = notes
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "a@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "b@test.com", db.GenderFemale, db.StatusAvailable, east, east)
	env.AddUser(t, "c@test.com", db.GenderFemale, db.StatusAvailable, north, north)
	env.AddUser(t, "d@test.com", db.GenderMale, db.StatusAvailable, east, east)

	m, err := mm.FindMatch(context.Background(), "a@test.com")
	require.NoError(t, err)

	assert.Equal(t, "a@test.com", m.User1)
	assert.Equal(t, "b@test.com", m.User2)
	assert.InDelta(t, 8.0, m.CompatibilityScore, 1e-9)
	assert.True(t, m.IsPinned)
	assert.Equal(t, db.StatusMatched, m.Status)
	assert.True(t, m.MatchedAt.Equal(testutil.Epoch))

	assert.Equal(t, db.StatusMatched, env.User(t, "a@test.com").Status)
	assert.Equal(t, db.StatusMatched, env.User(t, "b@test.com").Status)
	assert.Equal(t, db.StatusAvailable, env.User(t, "c@test.com").Status)
	assert.Equal(t, int64(0), env.User(t, "a@test.com").MatchesCount, "matching never bumps the count")

	assert.ElementsMatch(t, []string{"a@test.com=matched", "b@test.com=matched"}, notes.Events())
}

func TestFindMatchTieBreakByEmail(t *testing.T) {
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "a@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "z@test.com", db.GenderFemale, db.StatusAvailable, east, east)
	env.AddUser(t, "m@test.com", db.GenderFemale, db.StatusBreakup, east, east)

	m, err := mm.FindMatch(context.Background(), "a@test.com")
	require.NoError(t, err)
	assert.Equal(t, "m@test.com", m.Partner("a@test.com"), "breakup users are eligible and ties go to the smaller email")
}

func TestFindMatchErrors(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "nogender@test.com", "", db.StatusAvailable, east, east)
	env.AddUser(t, "frozen@test.com", db.GenderMale, db.StatusFrozen, east, east)
	env.AddUser(t, "new@test.com", db.GenderMale, db.StatusOnboarding, east, east)
	env.AddUser(t, "lonely@test.com", db.GenderMale, db.StatusAvailable, east, east)

	_, err := mm.FindMatch(ctx, "ghost@test.com")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = mm.FindMatch(ctx, "nogender@test.com")
	assert.ErrorIs(t, err, svcErr.ErrInvalidProfile)

	_, err = mm.FindMatch(ctx, "frozen@test.com")
	assert.ErrorIs(t, err, svcErr.ErrInvalidTransition)

	_, err = mm.FindMatch(ctx, "new@test.com")
	assert.ErrorIs(t, err, svcErr.ErrInvalidTransition)

	_, err = mm.FindMatch(ctx, "lonely@test.com")
	assert.ErrorIs(t, err, svcErr.ErrNoCandidates)
	assert.False(t, errors.Is(err, svcErr.ErrInvalidProfile), "failures stay distinguishable")

	_, err = mm.FindMatch(ctx, "  ")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}

func TestFindMatchIgnoresIneligibleCandidates(t *testing.T) {
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "a@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "f1@test.com", db.GenderFemale, db.StatusFrozen, east, east)
	env.AddUser(t, "f2@test.com", db.GenderFemale, db.StatusOnboarding, east, east)
	env.AddUser(t, "f3@test.com", db.GenderFemale, db.StatusChatting, east, east)

	_, err := mm.FindMatch(context.Background(), "a@test.com")
	assert.ErrorIs(t, err, svcErr.ErrNoCandidates)
	assert.Equal(t, db.StatusAvailable, env.User(t, "a@test.com").Status)
}

func TestFindMatchSkipsMismatchedEmbeddings(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "a@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "b@test.com", db.GenderFemale, db.StatusAvailable, []float64{1, 0, 0}, east)
	env.AddUser(t, "c@test.com", db.GenderFemale, db.StatusAvailable, north, north)

	m, err := mm.FindMatch(ctx, "a@test.com")
	require.NoError(t, err)
	assert.Equal(t, "c@test.com", m.Partner("a@test.com"))
}

func TestFindMatchAllCandidatesMismatched(t *testing.T) {
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "x@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "y@test.com", db.GenderFemale, db.StatusAvailable, []float64{1}, east)

	_, err := mm.FindMatch(context.Background(), "x@test.com")
	assert.ErrorIs(t, err, svcErr.ErrDimensionMismatch)
	assert.Equal(t, db.StatusAvailable, env.User(t, "x@test.com").Status)
}

func TestRematchKeepsOnePairing(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "a@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "b@test.com", db.GenderFemale, db.StatusAvailable, east, east)

	first, err := mm.FindMatch(ctx, "a@test.com")
	require.NoError(t, err)
	assert.Equal(t, "b@test.com", first.Partner("a@test.com"))

	// a new candidate shows up; a rematches
	env.AddUser(t, "c@test.com", db.GenderFemale, db.StatusAvailable, north, east)

	second, err := mm.FindMatch(ctx, "a@test.com")
	require.NoError(t, err)
	assert.Equal(t, "c@test.com", second.Partner("a@test.com"))

	assert.Equal(t, int64(1), env.CountMatches(t, "a@test.com"))
	assert.Equal(t, int64(0), env.CountMatches(t, "b@test.com"))
	assert.Equal(t, db.StatusAvailable, env.User(t, "b@test.com").Status, "superseded partner is released")
	assert.Equal(t, db.StatusMatched, env.User(t, "c@test.com").Status)
}

func TestCurrentMatch(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "a@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "b@test.com", db.GenderFemale, db.StatusAvailable, east, east)

	_, _, err := mm.CurrentMatch(ctx, "a@test.com")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = mm.FindMatch(ctx, "a@test.com")
	require.NoError(t, err)

	pairing, partner, err := mm.CurrentMatch(ctx, "b@test.com")
	require.NoError(t, err)
	assert.Equal(t, "a@test.com", partner.Email)
	assert.Equal(t, "a@test.com", pairing.Partner("b@test.com"))
}

func TestRematchClearsRetiredMilestoneFlag(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	mm := match.NewMatchmaker(env.App)

	env.AddUser(t, "a@test.com", db.GenderMale, db.StatusAvailable, east, east)
	env.AddUser(t, "b@test.com", db.GenderFemale, db.StatusAvailable, east, east)

	first, err := mm.FindMatch(ctx, "a@test.com")
	require.NoError(t, err)
	_, err = env.App.RedisCache.MarkMilestone(ctx, first.Ref())
	require.NoError(t, err)
	require.True(t, env.Redis.Exists(env.App.RedisCache.KeyForMilestone(first.Ref())))

	env.AddUser(t, "c@test.com", db.GenderFemale, db.StatusAvailable, north, east)
	_, err = mm.FindMatch(ctx, "a@test.com")
	require.NoError(t, err)

	assert.False(t, env.Redis.Exists(env.App.RedisCache.KeyForMilestone(first.Ref())))
}
