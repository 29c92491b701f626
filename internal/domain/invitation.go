package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/crypto"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type InvitationDomain interface {
	IssueCode(context.Context, *model.IssueInviteCodeRequest) (*model.IssueInviteCodeResponse, error)
	Redeem(context.Context, *model.RedeemInviteCodeRequest) (*model.RedeemInviteCodeResponse, error)
}

type invitationDomain struct {
	userRepo       repository.UserRepository
	invitationRepo repository.InvitationRepository
	leaderboard    statistic.Leaderboard
}

func NewInvitationDomain(
	userRepo repository.UserRepository,
	invitationRepo repository.InvitationRepository,
	leaderboard statistic.Leaderboard,
) *invitationDomain {
	return &invitationDomain{
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		leaderboard:    leaderboard,
	}
}

// IssueCode returns the user's invite code, generating and persisting a fresh
// one on first use. Issuing is idempotent per user.
func (d *invitationDomain) IssueCode(
	ctx context.Context, req *model.IssueInviteCodeRequest,
) (*model.IssueInviteCodeResponse, error) {
	user, err := d.userRepo.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.UnknownUser, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errStorageUnavailable
	}

	if !user.InviteCode.Valid {
		code, err := d.generateUniqueCode(ctx)
		if err != nil {
			return nil, err
		}

		err = d.userRepo.AssignInviteCode(ctx, req.TelegramID, code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot assign invite code: %v", err)
			return nil, errStorageUnavailable
		}

		// A concurrent request may have assigned a code first; re-read to
		// return whichever code won.
		user, err = d.userRepo.GetByTelegramID(ctx, req.TelegramID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errStorageUnavailable
		}
	}

	count, err := d.invitationRepo.CountRewardedByInviterID(ctx, req.TelegramID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count invitations: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.IssueInviteCodeResponse{
		Code:          user.InviteCode.String,
		InvitedPeople: count,
	}, nil
}

// Redeem resolves an invite code, records the invitation, and credits the
// inviter in one transaction. An invitee can ever be recorded once.
func (d *invitationDomain) Redeem(
	ctx context.Context, req *model.RedeemInviteCodeRequest,
) (*model.RedeemInviteCodeResponse, error) {
	inviter, err := d.userRepo.GetByInviteCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidCode, "Invalid invite code")
		}

		xcontext.Logger(ctx).Errorf("Cannot get inviter: %v", err)
		return nil, errStorageUnavailable
	}

	if inviter.TelegramID == req.InviteeID {
		return nil, errorx.New(errorx.SelfInvite, "You cannot invite yourself")
	}

	if _, err := d.invitationRepo.GetByInviteeID(ctx, req.InviteeID); err == nil {
		return nil, errorx.New(errorx.AlreadyInvited, "You were already invited by someone")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get invitation: %v", err)
		return nil, errStorageUnavailable
	}

	reward := xcontext.Configs(ctx).Invite.Reward

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	invitation := &entity.Invitation{
		Base:      entity.Base{ID: uuid.NewString()},
		InviterID: inviter.TelegramID,
		InviteeID: req.InviteeID,
		Rewarded:  true,
	}

	if err := d.invitationRepo.Create(ctx, invitation); err != nil {
		// The unique invitee constraint resolves two concurrent redemptions:
		// the first insert wins.
		if isUniqueViolation(err) {
			return nil, errorx.New(errorx.AlreadyInvited, "You were already invited by someone")
		}

		xcontext.Logger(ctx).Errorf("Cannot create invitation: %v", err)
		return nil, errStorageUnavailable
	}

	if err := d.userRepo.IncreasePoints(ctx, inviter.TelegramID, reward); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit inviter: %v", err)
		return nil, errStorageUnavailable
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	if err := d.leaderboard.ChangePoints(ctx, inviter.TelegramID, reward); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update leaderboard: %v", err)
	}

	return &model.RedeemInviteCodeResponse{
		InviterID:   inviter.TelegramID,
		InviterName: inviter.Name,
		Reward:      reward,
	}, nil
}

func (d *invitationDomain) generateUniqueCode(ctx context.Context) (string, error) {
	length := xcontext.Configs(ctx).Invite.CodeLength
	for {
		code := crypto.GenerateRandomCode(length)
		_, err := d.userRepo.GetByInviteCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}

		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check invite code: %v", err)
			return "", errStorageUnavailable
		}
	}
}
