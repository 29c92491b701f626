package statistic_test

import (
	"testing"

	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_leaderboard_SeedsFromDatabase(t *testing.T) {
	ctx := testutil.MockContext()
	leaderboard := statistic.New(repository.NewUserRepository(), testutil.NewInMemoryRedisClient())

	first, err := testutil.SampleUser(ctx, &entity.User{Points: 30})
	require.NoError(t, err)

	second, err := testutil.SampleUser(ctx, &entity.User{Points: 20})
	require.NoError(t, err)

	entries, err := leaderboard.Get(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, first.TelegramID, entries[0].UserID)
	require.Equal(t, float64(30), entries[0].Points)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, second.TelegramID, entries[1].UserID)
	require.Equal(t, 2, entries[1].Rank)
}

func Test_leaderboard_ChangePoints(t *testing.T) {
	ctx := testutil.MockContext()
	userRepo := repository.NewUserRepository()
	leaderboard := statistic.New(userRepo, testutil.NewInMemoryRedisClient())

	first, err := testutil.SampleUser(ctx, &entity.User{Points: 30})
	require.NoError(t, err)

	second, err := testutil.SampleUser(ctx, &entity.User{Points: 20})
	require.NoError(t, err)

	// A change before the first read is a no-op; the later seed picks the
	// points up from database.
	require.NoError(t, leaderboard.ChangePoints(ctx, first.TelegramID, 5))

	entries, err := leaderboard.Get(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, float64(30), entries[0].Points)

	// Once seeded, changes move the ranking.
	require.NoError(t, leaderboard.ChangePoints(ctx, second.TelegramID, 15))

	entries, err = leaderboard.Get(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, second.TelegramID, entries[0].UserID)
	require.Equal(t, float64(35), entries[0].Points)

	rank, err := leaderboard.GetRank(ctx, first.TelegramID)
	require.NoError(t, err)
	require.Equal(t, uint64(2), rank)
}

func Test_leaderboard_Invalidate(t *testing.T) {
	ctx := testutil.MockContext()
	userRepo := repository.NewUserRepository()
	leaderboard := statistic.New(userRepo, testutil.NewInMemoryRedisClient())

	user, err := testutil.SampleUser(ctx, &entity.User{Points: 10})
	require.NoError(t, err)

	_, err = leaderboard.Get(ctx, 0, 10)
	require.NoError(t, err)

	// The cached score drifts, then invalidation forces a reseed.
	require.NoError(t, leaderboard.ChangePoints(ctx, user.TelegramID, 100))
	require.NoError(t, userRepo.IncreasePoints(ctx, user.TelegramID, 5))
	require.NoError(t, leaderboard.Invalidate(ctx))

	entries, err := leaderboard.Get(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, float64(15), entries[0].Points)
}
