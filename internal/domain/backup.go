package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/storage"
	"github.com/luckygram/backend/pkg/xcontext"
)

type BackupDomain interface {
	Export(ctx context.Context) (*model.Snapshot, error)
	Import(ctx context.Context, snapshot *model.Snapshot) error
	Upload(ctx context.Context) error
}

type backupDomain struct {
	userRepo          repository.UserRepository
	invitationRepo    repository.InvitationRepository
	lotteryRepo       repository.LotteryRepository
	groupSettingsRepo repository.GroupSettingsRepository
	storage           storage.Storage
}

func NewBackupDomain(
	userRepo repository.UserRepository,
	invitationRepo repository.InvitationRepository,
	lotteryRepo repository.LotteryRepository,
	groupSettingsRepo repository.GroupSettingsRepository,
	storage storage.Storage,
) *backupDomain {
	return &backupDomain{
		userRepo:          userRepo,
		invitationRepo:    invitationRepo,
		lotteryRepo:       lotteryRepo,
		groupSettingsRepo: groupSettingsRepo,
		storage:           storage,
	}
}

func (d *backupDomain) Export(ctx context.Context) (*model.Snapshot, error) {
	users, err := d.userRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot export users: %v", err)
		return nil, errStorageUnavailable
	}

	invitations, err := d.invitationRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot export invitations: %v", err)
		return nil, errStorageUnavailable
	}

	lotteries, err := d.lotteryRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot export lotteries: %v", err)
		return nil, errStorageUnavailable
	}

	participants, err := d.lotteryRepo.GetAllParticipants(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot export participants: %v", err)
		return nil, errStorageUnavailable
	}

	settings, err := d.groupSettingsRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot export group settings: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.Snapshot{
		Users:         users,
		Invitations:   invitations,
		Lotteries:     lotteries,
		Participants:  participants,
		GroupSettings: settings,
	}, nil
}

// Import replaces the entire store with the snapshot's content in one
// transaction.
func (d *backupDomain) Import(ctx context.Context, snapshot *model.Snapshot) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	for _, deleteAll := range []func(context.Context) error{
		d.groupSettingsRepo.DeleteAll,
		d.lotteryRepo.DeleteAll,
		d.invitationRepo.DeleteAll,
		d.userRepo.DeleteAll,
	} {
		if err := deleteAll(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot clear store before import: %v", err)
			return errStorageUnavailable
		}
	}

	for i := range snapshot.Users {
		if err := d.userRepo.Create(ctx, &snapshot.Users[i]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot import user: %v", err)
			return errStorageUnavailable
		}
	}

	for i := range snapshot.Invitations {
		if err := d.invitationRepo.Create(ctx, &snapshot.Invitations[i]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot import invitation: %v", err)
			return errStorageUnavailable
		}
	}

	for i := range snapshot.Lotteries {
		if err := d.lotteryRepo.Create(ctx, &snapshot.Lotteries[i]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot import lottery: %v", err)
			return errStorageUnavailable
		}
	}

	for i := range snapshot.Participants {
		if err := d.lotteryRepo.CreateParticipant(ctx, &snapshot.Participants[i]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot import participant: %v", err)
			return errStorageUnavailable
		}
	}

	for i := range snapshot.GroupSettings {
		if err := d.groupSettingsRepo.Upsert(ctx, &snapshot.GroupSettings[i]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot import group settings: %v", err)
			return errStorageUnavailable
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

// Upload exports the store and ships the snapshot to the configured bucket.
func (d *backupDomain) Upload(ctx context.Context) error {
	snapshot, err := d.Export(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal snapshot: %v", err)
		return errorx.Unknown
	}

	cfg := xcontext.Configs(ctx).Backup
	_, err = d.storage.Upload(ctx, &storage.UploadObject{
		Bucket:   cfg.S3.Bucket,
		Prefix:   "snapshots",
		FileName: fmt.Sprintf("snapshot-%s.json", time.Now().UTC().Format("20060102-150405")),
		Mime:     "application/json",
		Data:     data,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload snapshot: %v", err)
		return errorx.New(errorx.Unavailable, "Backup storage is temporarily unavailable")
	}

	return nil
}
