package domain

import (
	"context"
	"database/sql"
	"errors"
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

func newTestLotteryDomain() *lotteryDomain {
	userRepo := repository.NewUserRepository()
	return NewLotteryDomain(
		repository.NewLotteryRepository(),
		userRepo,
		statistic.New(userRepo, testutil.NewInMemoryRedisClient()),
		common.NewAdminVerifier(userRepo),
	)
}

func Test_lotteryDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()

	// Only admins can create lotteries.
	userCtx := testutil.MockContextWithUserID(ctx, 42)
	_, err := lotteryDomain.Create(userCtx, &model.CreateLotteryRequest{
		GroupID: -1, Prize: "mug", WinnersCount: 1,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.PermissionDenied})

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.AdminID)

	_, err = lotteryDomain.Create(adminCtx, &model.CreateLotteryRequest{
		GroupID: -1, Prize: "", WinnersCount: 1,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = lotteryDomain.Create(adminCtx, &model.CreateLotteryRequest{
		GroupID: -1, Prize: "mug", WinnersCount: 0,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = lotteryDomain.Create(adminCtx, &model.CreateLotteryRequest{
		GroupID: -1, Prize: "mug", WinnersCount: 101,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = lotteryDomain.Create(adminCtx, &model.CreateLotteryRequest{
		GroupID: -1, Prize: "mug", WinnersCount: 1, DurationHours: 1000,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	resp, err := lotteryDomain.Create(adminCtx, &model.CreateLotteryRequest{
		GroupID: -1, Prize: "mug", WinnersCount: 2, PointsRequired: 10,
		Keyword: "lucky", DurationHours: 24,
	})
	require.NoError(t, err)
	require.Equal(t, "active", resp.Lottery.Status)
	require.Equal(t, testutil.AdminID, resp.Lottery.CreatorID)
	require.Equal(t, "lucky", resp.Lottery.Keyword)
	require.NotNil(t, resp.Lottery.EndTime)

	list, err := lotteryDomain.ListActive(ctx, &model.ListActiveLotteriesRequest{GroupID: -1})
	require.NoError(t, err)
	require.Len(t, list.Lotteries, 1)
}

func Test_lotteryDomain_Join(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()
	userRepo := repository.NewUserRepository()

	lottery, err := testutil.SampleLottery(ctx, &entity.Lottery{PointsRequired: 10})
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, &entity.User{Points: 15})
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)

	resp, err := lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
		LotteryID: lottery.ID, Name: user.Name,
	})
	require.NoError(t, err)
	require.Equal(t, float64(10), resp.PointsCharged)

	got, err := userRepo.GetByTelegramID(ctx, user.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(5), got.Points)

	// Joining again reports the duplicate, not the now-short balance.
	_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
		LotteryID: lottery.ID, Name: user.Name,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyJoined})

	// And the failed attempt charged nothing.
	got, err = userRepo.GetByTelegramID(ctx, user.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(5), got.Points)

	// A user who cannot afford the entry is rejected without side effects.
	poor, err := testutil.SampleUser(ctx, &entity.User{Points: 5})
	require.NoError(t, err)

	poorCtx := testutil.MockContextWithUserID(ctx, poor.TelegramID)
	_, err = lotteryDomain.Join(poorCtx, &model.JoinLotteryRequest{
		LotteryID: lottery.ID, Name: poor.Name,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientPoints})

	got, err = userRepo.GetByTelegramID(ctx, poor.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(5), got.Points)

	_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{LotteryID: "missing"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})

	strangerCtx := testutil.MockContextWithUserID(ctx, 999999)
	_, err = lotteryDomain.Join(strangerCtx, &model.JoinLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.UnknownUser})
}

func Test_lotteryDomain_Get(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()

	lottery, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
	_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
		LotteryID: lottery.ID, Name: user.Name,
	})
	require.NoError(t, err)

	resp, err := lotteryDomain.Get(ctx, &model.GetLotteryRequest{LotteryID: lottery.ID})
	require.NoError(t, err)
	require.Equal(t, lottery.ID, resp.Lottery.ID)
	require.Equal(t, int64(1), resp.Lottery.Participants)

	_, err = lotteryDomain.Get(ctx, &model.GetLotteryRequest{LotteryID: "missing"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})
}

func Test_lotteryDomain_JoinWithLeaderboardDown(t *testing.T) {
	ctx := testutil.MockContext()
	userRepo := repository.NewUserRepository()
	brokenRedis := &testutil.MockRedisClient{
		ExistFunc: func(context.Context, string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	lotteryDomain := NewLotteryDomain(
		repository.NewLotteryRepository(),
		userRepo,
		statistic.New(userRepo, brokenRedis),
		common.NewAdminVerifier(userRepo),
	)

	lottery, err := testutil.SampleLottery(ctx, &entity.Lottery{PointsRequired: 10})
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, &entity.User{Points: 15})
	require.NoError(t, err)

	// A leaderboard outage never blocks the enrollment itself.
	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
	resp, err := lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
		LotteryID: lottery.ID, Name: user.Name,
	})
	require.NoError(t, err)
	require.Equal(t, float64(10), resp.PointsCharged)

	got, err := userRepo.GetByTelegramID(ctx, user.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(5), got.Points)
}

func Test_lotteryDomain_JoinClosedLottery(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()
	lotteryRepo := repository.NewLotteryRepository()

	lottery, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	err = lotteryRepo.TransitionStatus(
		ctx, lottery.ID, entity.LotteryActive, entity.LotteryCompleted)
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
	_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.LotteryClosed})
}

func Test_lotteryDomain_ConcurrentJoins(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()
	userRepo := repository.NewUserRepository()

	lottery, err := testutil.SampleLottery(ctx, &entity.Lottery{PointsRequired: 10})
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, &entity.User{Points: 100})
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)

	// Concurrent joins of the same user produce exactly one enrollment and
	// exactly one charge.
	var successes int
	var mutex sync.Mutex
	group := errgroup.Group{}
	for i := 0; i < 5; i++ {
		group.Go(func() error {
			_, err := lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
				LotteryID: lottery.ID, Name: user.Name,
			})
			if err == nil {
				mutex.Lock()
				successes++
				mutex.Unlock()
			}

			return nil
		})
	}
	require.NoError(t, group.Wait())
	require.Equal(t, 1, successes)

	got, err := userRepo.GetByTelegramID(ctx, user.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(90), got.Points)
}

func Test_lotteryDomain_JoinByKeyword(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()

	_, err := testutil.SampleLottery(ctx, &entity.Lottery{
		Keyword: sql.NullString{Valid: true, String: "lucky"},
	})
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)

	// Unrelated messages do not join anything.
	resp, err := lotteryDomain.JoinByKeyword(userCtx, &model.JoinLotteryByKeywordRequest{
		GroupID: -1, Text: "hello", Name: user.Name,
	})
	require.NoError(t, err)
	require.False(t, resp.Joined)

	resp, err = lotteryDomain.JoinByKeyword(userCtx, &model.JoinLotteryByKeywordRequest{
		GroupID: -1, Text: "lucky", Name: user.Name,
	})
	require.NoError(t, err)
	require.True(t, resp.Joined)

	// The keyword path shares the duplicate guard with the explicit join.
	_, err = lotteryDomain.JoinByKeyword(userCtx, &model.JoinLotteryByKeywordRequest{
		GroupID: -1, Text: "lucky", Name: user.Name,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyJoined})
}

func Test_lotteryDomain_Draw(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()
	lotteryRepo := repository.NewLotteryRepository()

	lottery, err := testutil.SampleLottery(ctx, &entity.Lottery{
		WinnersCount:    2,
		MinParticipants: 3,
	})
	require.NoError(t, err)

	users := make([]entity.User, 0, 4)
	for i := 0; i < 4; i++ {
		user, err := testutil.SampleUser(ctx, nil)
		require.NoError(t, err)
		users = append(users, user)

		userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
		if i < 2 {
			_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
				LotteryID: lottery.ID, Name: user.Name,
			})
			require.NoError(t, err)
		}
	}

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.AdminID)

	// Only the creator or an admin can draw.
	strangerCtx := testutil.MockContextWithUserID(ctx, users[3].TelegramID)
	_, err = lotteryDomain.Draw(strangerCtx, &model.DrawLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.PermissionDenied})

	// Two participants are below the minimum of three.
	_, err = lotteryDomain.Draw(adminCtx, &model.DrawLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BelowMinimum})

	// The failed draw left the lottery active.
	got, err := lotteryRepo.GetByID(ctx, lottery.ID)
	require.NoError(t, err)
	require.Equal(t, entity.LotteryActive, got.Status)

	for _, user := range users[2:] {
		userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
		_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
			LotteryID: lottery.ID, Name: user.Name,
		})
		require.NoError(t, err)
	}

	resp, err := lotteryDomain.Draw(adminCtx, &model.DrawLotteryRequest{LotteryID: lottery.ID})
	require.NoError(t, err)
	require.Len(t, resp.Winners, 2)
	require.Equal(t, "completed", resp.Lottery.Status)

	// Winners are distinct participants and their flags are persisted.
	seen := map[int64]bool{}
	for _, winner := range resp.Winners {
		require.False(t, seen[winner.UserID])
		seen[winner.UserID] = true

		participant, err := lotteryRepo.GetParticipant(ctx, lottery.ID, winner.UserID)
		require.NoError(t, err)
		require.True(t, participant.IsWinner)
	}

	participants, err := lotteryRepo.GetParticipants(ctx, lottery.ID)
	require.NoError(t, err)
	winners := 0
	for _, p := range participants {
		if p.IsWinner {
			winners++
		}
	}
	require.Equal(t, 2, winners)

	// A completed lottery can never be drawn again.
	_, err = lotteryDomain.Draw(adminCtx, &model.DrawLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyClosed})
}

func Test_lotteryDomain_DrawMoreWinnersThanParticipants(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()

	lottery, err := testutil.SampleLottery(ctx, &entity.Lottery{WinnersCount: 5})
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
	_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
		LotteryID: lottery.ID, Name: user.Name,
	})
	require.NoError(t, err)

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.AdminID)
	resp, err := lotteryDomain.Draw(adminCtx, &model.DrawLotteryRequest{LotteryID: lottery.ID})
	require.NoError(t, err)
	require.Len(t, resp.Winners, 1)
	require.Equal(t, user.TelegramID, resp.Winners[0].UserID)
}

func Test_lotteryDomain_Cancel(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryDomain := newTestLotteryDomain()

	lottery, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.AdminID)
	_, err = lotteryDomain.Cancel(adminCtx, &model.CancelLotteryRequest{LotteryID: lottery.ID})
	require.NoError(t, err)

	// Neither a second cancel nor a draw works on a cancelled lottery.
	_, err = lotteryDomain.Cancel(adminCtx, &model.CancelLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyClosed})

	_, err = lotteryDomain.Draw(adminCtx, &model.DrawLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotActive})

	// Joining one is reported as closed.
	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
	_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{LotteryID: lottery.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.LotteryClosed})
}
