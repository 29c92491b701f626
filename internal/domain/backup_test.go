package domain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/storage"
	"github.com/luckygram/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestBackupDomain(s storage.Storage) *backupDomain {
	return NewBackupDomain(
		repository.NewUserRepository(),
		repository.NewInvitationRepository(),
		repository.NewLotteryRepository(),
		repository.NewGroupSettingsRepository(),
		s,
	)
}

func Test_backupDomain_ExportImportRoundTrip(t *testing.T) {
	ctx := testutil.MockContext()
	backupDomain := newTestBackupDomain(&testutil.MockStorage{})
	userRepo := repository.NewUserRepository()
	lotteryRepo := repository.NewLotteryRepository()

	user, err := testutil.SampleUser(ctx, &entity.User{Points: 30})
	require.NoError(t, err)

	lottery, err := testutil.SampleLottery(ctx, nil)
	require.NoError(t, err)

	err = lotteryRepo.CreateParticipant(ctx, &entity.LotteryParticipant{
		LotteryID: lottery.ID,
		UserID:    user.TelegramID,
		Name:      user.Name,
	})
	require.NoError(t, err)

	snapshot, err := backupDomain.Export(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Users, 1)
	require.Len(t, snapshot.Lotteries, 1)
	require.Len(t, snapshot.Participants, 1)

	// Corrupt the live store, then restore it from the snapshot.
	err = userRepo.IncreasePoints(ctx, user.TelegramID, 1000)
	require.NoError(t, err)

	_, err = testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	err = backupDomain.Import(ctx, snapshot)
	require.NoError(t, err)

	users, err := userRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, float64(30), users[0].Points)

	participants, err := lotteryRepo.GetParticipants(ctx, lottery.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.Equal(t, user.TelegramID, participants[0].UserID)
}

func Test_backupDomain_Upload(t *testing.T) {
	ctx := testutil.MockContext()

	var uploaded *storage.UploadObject
	mockStorage := &testutil.MockStorage{
		UploadFunc: func(_ context.Context, obj *storage.UploadObject) (*storage.UploadResponse, error) {
			uploaded = obj
			return &storage.UploadResponse{FileName: obj.FileName}, nil
		},
	}
	backupDomain := newTestBackupDomain(mockStorage)

	user, err := testutil.SampleUser(ctx, &entity.User{Points: 5})
	require.NoError(t, err)

	err = backupDomain.Upload(ctx)
	require.NoError(t, err)

	require.NotNil(t, uploaded)
	require.Equal(t, "snapshots", uploaded.Prefix)
	require.Equal(t, "application/json", uploaded.Mime)
	require.Contains(t, uploaded.FileName, "snapshot-")

	var snapshot model.Snapshot
	require.NoError(t, json.Unmarshal(uploaded.Data, &snapshot))
	require.Len(t, snapshot.Users, 1)
	require.Equal(t, user.TelegramID, snapshot.Users[0].TelegramID)
}
