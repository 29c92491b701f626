package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_lotteryRepository_TransitionStatus(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewLotteryRepository()

	lottery, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	err = repo.TransitionStatus(ctx, lottery.ID, entity.LotteryActive, entity.LotteryCompleted)
	require.NoError(t, err)

	// The guard admits exactly one transition out of active.
	err = repo.TransitionStatus(ctx, lottery.ID, entity.LotteryActive, entity.LotteryCompleted)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.TransitionStatus(ctx, lottery.ID, entity.LotteryActive, entity.LotteryCancelled)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByID(ctx, lottery.ID)
	require.NoError(t, err)
	require.Equal(t, entity.LotteryCompleted, got.Status)
}

func Test_lotteryRepository_TouchActive(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewLotteryRepository()

	lottery, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, repo.TouchActive(ctx, lottery.ID))

	// The touch refuses anything not active anymore.
	err = repo.TransitionStatus(ctx, lottery.ID, entity.LotteryActive, entity.LotteryCompleted)
	require.NoError(t, err)

	err = repo.TouchActive(ctx, lottery.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.TouchActive(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_lotteryRepository_CreateParticipant(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewLotteryRepository()

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	lottery, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	participant := &entity.LotteryParticipant{
		LotteryID: lottery.ID,
		UserID:    user.TelegramID,
		Name:      user.Name,
	}
	require.NoError(t, repo.CreateParticipant(ctx, participant))

	// The composite key allows one enrollment per (lottery, user).
	err = repo.CreateParticipant(ctx, &entity.LotteryParticipant{
		LotteryID: lottery.ID,
		UserID:    user.TelegramID,
		Name:      user.Name,
	})
	require.Error(t, err)

	count, err := repo.CountParticipants(ctx, lottery.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func Test_lotteryRepository_GetDue(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewLotteryRepository()

	now := time.Now()

	due, err := testutil.SampleLottery(ctx, &entity.Lottery{
		EndTime: sql.NullTime{Valid: true, Time: now.Add(-time.Minute)},
	})
	require.NoError(t, err)

	_, err = testutil.SampleLottery(ctx, &entity.Lottery{
		EndTime: sql.NullTime{Valid: true, Time: now.Add(time.Hour)},
	})
	require.NoError(t, err)

	// No deadline means never due.
	_, err = testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	// Ended lotteries are not due either.
	ended, err := testutil.SampleLottery(ctx, &entity.Lottery{
		EndTime: sql.NullTime{Valid: true, Time: now.Add(-time.Hour)},
	})
	require.NoError(t, err)
	err = repo.TransitionStatus(ctx, ended.ID, entity.LotteryActive, entity.LotteryCompleted)
	require.NoError(t, err)

	got, err := repo.GetDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, due.ID, got[0].ID)
}

func Test_lotteryRepository_GetActiveByKeyword(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewLotteryRepository()

	lottery, err := testutil.SampleLottery(ctx, &entity.Lottery{
		GroupID: -2,
		Keyword: sql.NullString{Valid: true, String: "lucky"},
	})
	require.NoError(t, err)

	got, err := repo.GetActiveByKeyword(ctx, -2, "lucky")
	require.NoError(t, err)
	require.Equal(t, lottery.ID, got.ID)

	// Keyword lookups are scoped to the group.
	_, err = repo.GetActiveByKeyword(ctx, -3, "lucky")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetActiveByKeyword(ctx, -2, "unlucky")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
