package domain

import (
	"sync"
	"testing"

	"github.com/luckygram/backend/internal/common"
	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestPointDomain() *pointDomain {
	userRepo := repository.NewUserRepository()
	return NewPointDomain(
		userRepo,
		repository.NewGroupSettingsRepository(),
		statistic.New(userRepo, testutil.NewInMemoryRedisClient()),
		common.NewAdminVerifier(userRepo),
	)
}

func Test_pointDomain_Register(t *testing.T) {
	ctx := testutil.MockContext()
	pointDomain := newTestPointDomain()

	resp, err := pointDomain.Register(ctx, &model.RegisterUserRequest{
		TelegramID: 42, Name: "alice",
	})
	require.NoError(t, err)
	require.True(t, resp.Created)

	// Registering again is a no-op.
	resp, err = pointDomain.Register(ctx, &model.RegisterUserRequest{
		TelegramID: 42, Name: "alice",
	})
	require.NoError(t, err)
	require.False(t, resp.Created)
	require.Equal(t, "alice", resp.User.Name)
}

func Test_pointDomain_DailyCheckin(t *testing.T) {
	ctx := testutil.MockContext()
	pointDomain := newTestPointDomain()

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	resp, err := pointDomain.DailyCheckin(ctx, &model.DailyCheckinRequest{
		TelegramID: user.TelegramID, GroupID: -1,
	})
	require.NoError(t, err)
	require.Equal(t, float64(10), resp.Awarded)
	require.Equal(t, float64(10), resp.Balance)

	// The second check-in of the day is rejected and nothing is credited.
	_, err = pointDomain.DailyCheckin(ctx, &model.DailyCheckinRequest{
		TelegramID: user.TelegramID, GroupID: -1,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyCheckedIn})

	balance, err := pointDomain.GetBalance(ctx, &model.GetBalanceRequest{
		TelegramID: user.TelegramID,
	})
	require.NoError(t, err)
	require.Equal(t, float64(10), balance.User.Points)

	_, err = pointDomain.DailyCheckin(ctx, &model.DailyCheckinRequest{
		TelegramID: 999999, GroupID: -1,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.UnknownUser})
}

func Test_pointDomain_AwardMessagePoints(t *testing.T) {
	ctx := testutil.MockContext()
	pointDomain := newTestPointDomain()

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	// Short texts earn nothing.
	resp, err := pointDomain.AwardMessagePoints(ctx, &model.AwardMessagePointsRequest{
		TelegramID: user.TelegramID, GroupID: -1, Text: "hi",
	})
	require.NoError(t, err)
	require.Equal(t, float64(0), resp.Awarded)

	resp, err = pointDomain.AwardMessagePoints(ctx, &model.AwardMessagePointsRequest{
		TelegramID: user.TelegramID, GroupID: -1, Text: "hello there",
	})
	require.NoError(t, err)
	require.Equal(t, float64(1), resp.Awarded)

	resp, err = pointDomain.AwardMessagePoints(ctx, &model.AwardMessagePointsRequest{
		TelegramID: user.TelegramID, GroupID: -1, IsMedia: true,
	})
	require.NoError(t, err)
	require.Equal(t, float64(2), resp.Awarded)

	// Group settings override the defaults.
	adminCtx := testutil.MockContextWithUserID(ctx, testutil.AdminID)
	_, err = pointDomain.UpdateGroupSettings(adminCtx, &model.UpdateGroupSettingsRequest{
		GroupID: -1, Setting: "points_per_media", Value: 7,
	})
	require.NoError(t, err)

	resp, err = pointDomain.AwardMessagePoints(ctx, &model.AwardMessagePointsRequest{
		TelegramID: user.TelegramID, GroupID: -1, IsMedia: true,
	})
	require.NoError(t, err)
	require.Equal(t, float64(7), resp.Awarded)

	// Other groups keep the defaults.
	resp, err = pointDomain.AwardMessagePoints(ctx, &model.AwardMessagePointsRequest{
		TelegramID: user.TelegramID, GroupID: -2, IsMedia: true,
	})
	require.NoError(t, err)
	require.Equal(t, float64(2), resp.Awarded)
}

func Test_pointDomain_AdjustPoints(t *testing.T) {
	ctx := testutil.MockContext()
	pointDomain := newTestPointDomain()

	user, err := testutil.SampleUser(ctx, &entity.User{Name: "bob", Points: 5})
	require.NoError(t, err)

	// Regular users cannot adjust points.
	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
	_, err = pointDomain.AdjustPoints(userCtx, &model.AdjustPointsRequest{
		TargetName: "bob", Change: 10,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.PermissionDenied})

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.AdminID)
	resp, err := pointDomain.AdjustPoints(adminCtx, &model.AdjustPointsRequest{
		TargetName: "bob", Change: 10,
	})
	require.NoError(t, err)
	require.Equal(t, float64(15), resp.User.Points)

	// Deduction cannot push the balance below zero.
	_, err = pointDomain.AdjustPoints(adminCtx, &model.AdjustPointsRequest{
		TargetName: "bob", Change: -100,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientPoints})

	_, err = pointDomain.AdjustPoints(adminCtx, &model.AdjustPointsRequest{
		TargetName: "nobody", Change: 10,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.UnknownUser})
}

func Test_pointDomain_ConcurrentDebits(t *testing.T) {
	ctx := testutil.MockContext()
	userRepo := repository.NewUserRepository()

	user, err := testutil.SampleUser(ctx, &entity.User{Points: 50})
	require.NoError(t, err)

	// 10 debits of 10 against a balance of 50: exactly 5 can win.
	var successes int
	var mutex sync.Mutex
	group := errgroup.Group{}
	for i := 0; i < 10; i++ {
		group.Go(func() error {
			if err := userRepo.DecreasePoints(ctx, user.TelegramID, 10); err == nil {
				mutex.Lock()
				successes++
				mutex.Unlock()
			}

			return nil
		})
	}
	require.NoError(t, group.Wait())
	require.Equal(t, 5, successes)

	got, err := userRepo.GetByTelegramID(ctx, user.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(0), got.Points)
}

func Test_pointDomain_GetLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	pointDomain := newTestPointDomain()

	names := map[float64]string{30: "first", 20: "second", 10: "third"}
	for points, name := range names {
		_, err := testutil.SampleUser(ctx, &entity.User{Name: name, Points: points})
		require.NoError(t, err)
	}

	resp, err := pointDomain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Leaderboard, 2)
	require.Equal(t, "first", resp.Leaderboard[0].User.Name)
	require.Equal(t, float64(30), resp.Leaderboard[0].Value)
	require.Equal(t, 1, resp.Leaderboard[0].Rank)
	require.Equal(t, "second", resp.Leaderboard[1].User.Name)
	require.Equal(t, 2, resp.Leaderboard[1].Rank)
}
