package cron

import (
	"database/sql"
	"testing"
	"time"

	"github.com/luckygram/backend/internal/common"
	"github.com/luckygram/backend/internal/domain"
	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_AutoDrawCronJob_Do(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryRepo := repository.NewLotteryRepository()
	userRepo := repository.NewUserRepository()
	lotteryDomain := domain.NewLotteryDomain(
		lotteryRepo,
		userRepo,
		statistic.New(userRepo, testutil.NewInMemoryRedisClient()),
		common.NewAdminVerifier(userRepo),
	)

	pastDeadline := sql.NullTime{Valid: true, Time: time.Now().Add(-time.Minute)}

	due, err := testutil.SampleLottery(ctx, &entity.Lottery{EndTime: pastDeadline})
	require.NoError(t, err)

	notDue, err := testutil.SampleLottery(ctx, &entity.Lottery{
		EndTime: sql.NullTime{Valid: true, Time: time.Now().Add(time.Hour)},
	})
	require.NoError(t, err)

	open, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.TelegramID)
	_, err = lotteryDomain.Join(userCtx, &model.JoinLotteryRequest{
		LotteryID: due.ID, Name: user.Name,
	})
	require.NoError(t, err)

	notifier := &testutil.MockNotifier{}
	job := NewAutoDrawCronJob(lotteryRepo, lotteryDomain, notifier, time.Minute)
	job.Do(ctx)

	// Only the overdue lottery is drawn and announced.
	require.Len(t, notifier.Announcements, 1)
	require.Equal(t, due.ID, notifier.Announcements[0].Lottery.ID)
	require.Len(t, notifier.Announcements[0].Winners, 1)
	require.Equal(t, user.TelegramID, notifier.Announcements[0].Winners[0].UserID)

	got, err := lotteryRepo.GetByID(ctx, due.ID)
	require.NoError(t, err)
	require.Equal(t, entity.LotteryCompleted, got.Status)

	got, err = lotteryRepo.GetByID(ctx, notDue.ID)
	require.NoError(t, err)
	require.Equal(t, entity.LotteryActive, got.Status)

	got, err = lotteryRepo.GetByID(ctx, open.ID)
	require.NoError(t, err)
	require.Equal(t, entity.LotteryActive, got.Status)
}

func Test_AutoDrawCronJob_BelowMinimumStaysActive(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryRepo := repository.NewLotteryRepository()
	userRepo := repository.NewUserRepository()
	lotteryDomain := domain.NewLotteryDomain(
		lotteryRepo,
		userRepo,
		statistic.New(userRepo, testutil.NewInMemoryRedisClient()),
		common.NewAdminVerifier(userRepo),
	)

	lottery, err := testutil.SampleLottery(ctx, &entity.Lottery{
		MinParticipants: 3,
		EndTime:         sql.NullTime{Valid: true, Time: time.Now().Add(-time.Minute)},
	})
	require.NoError(t, err)

	notifier := &testutil.MockNotifier{}
	job := NewAutoDrawCronJob(lotteryRepo, lotteryDomain, notifier, time.Minute)
	job.Do(ctx)

	require.Empty(t, notifier.Announcements)

	got, err := lotteryRepo.GetByID(ctx, lottery.ID)
	require.NoError(t, err)
	require.Equal(t, entity.LotteryActive, got.Status)
}
