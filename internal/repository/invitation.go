package repository

import (
	"context"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *entity.Invitation) error
	GetByInviteeID(ctx context.Context, inviteeID int64) (*entity.Invitation, error)
	CountRewardedByInviterID(ctx context.Context, inviterID int64) (int64, error)
	GetAll(ctx context.Context) ([]entity.Invitation, error)
	DeleteAll(ctx context.Context) error
}

type invitationRepository struct{}

func NewInvitationRepository() *invitationRepository {
	return &invitationRepository{}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *entity.Invitation) error {
	return xcontext.DB(ctx).Create(invitation).Error
}

func (r *invitationRepository) GetByInviteeID(
	ctx context.Context, inviteeID int64,
) (*entity.Invitation, error) {
	var result entity.Invitation
	if err := xcontext.DB(ctx).Take(&result, "invitee_id=?", inviteeID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *invitationRepository) CountRewardedByInviterID(
	ctx context.Context, inviterID int64,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Invitation{}).
		Where("inviter_id=? AND rewarded=?", inviterID, true).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *invitationRepository) GetAll(ctx context.Context) ([]entity.Invitation, error) {
	var result []entity.Invitation
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *invitationRepository) DeleteAll(ctx context.Context) error {
	return xcontext.DB(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&entity.Invitation{}).Error
}
