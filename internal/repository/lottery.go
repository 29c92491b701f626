package repository

import (
	"context"
	"errors"
	"time"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type LotteryRepository interface {
	Create(ctx context.Context, lottery *entity.Lottery) error
	GetByID(ctx context.Context, lotteryID string) (*entity.Lottery, error)
	GetActiveByGroupID(ctx context.Context, groupID int64) ([]entity.Lottery, error)
	GetActiveByKeyword(ctx context.Context, groupID int64, keyword string) (*entity.Lottery, error)
	GetDue(ctx context.Context, now time.Time) ([]entity.Lottery, error)
	TransitionStatus(ctx context.Context, lotteryID string, from, to entity.LotteryStatusType) error
	TouchActive(ctx context.Context, lotteryID string) error

	CreateParticipant(ctx context.Context, participant *entity.LotteryParticipant) error
	GetParticipant(ctx context.Context, lotteryID string, userID int64) (*entity.LotteryParticipant, error)
	GetParticipants(ctx context.Context, lotteryID string) ([]entity.LotteryParticipant, error)
	CountParticipants(ctx context.Context, lotteryID string) (int64, error)
	MarkWinner(ctx context.Context, lotteryID string, userID int64) error

	GetAll(ctx context.Context) ([]entity.Lottery, error)
	GetAllParticipants(ctx context.Context) ([]entity.LotteryParticipant, error)
	DeleteAll(ctx context.Context) error
}

type lotteryRepository struct{}

func NewLotteryRepository() *lotteryRepository {
	return &lotteryRepository{}
}

func (r *lotteryRepository) Create(ctx context.Context, lottery *entity.Lottery) error {
	return xcontext.DB(ctx).Create(lottery).Error
}

func (r *lotteryRepository) GetByID(ctx context.Context, lotteryID string) (*entity.Lottery, error) {
	var result entity.Lottery
	if err := xcontext.DB(ctx).Take(&result, "id=?", lotteryID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) GetActiveByGroupID(
	ctx context.Context, groupID int64,
) ([]entity.Lottery, error) {
	var result []entity.Lottery
	err := xcontext.DB(ctx).
		Where("group_id=? AND status=?", groupID, entity.LotteryActive).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) GetActiveByKeyword(
	ctx context.Context, groupID int64, keyword string,
) (*entity.Lottery, error) {
	var result entity.Lottery
	err := xcontext.DB(ctx).
		Where("group_id=? AND status=? AND keyword=?", groupID, entity.LotteryActive, keyword).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) GetDue(ctx context.Context, now time.Time) ([]entity.Lottery, error) {
	var result []entity.Lottery
	err := xcontext.DB(ctx).
		Where("status=? AND end_time IS NOT NULL AND end_time <= ?", entity.LotteryActive, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// TransitionStatus moves a lottery between lifecycle states. The update is
// guarded by the current status, so only one of any number of concurrent
// transitions can succeed; losers get gorm.ErrRecordNotFound.
func (r *lotteryRepository) TransitionStatus(
	ctx context.Context, lotteryID string, from, to entity.LotteryStatusType,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=? AND status=?", lotteryID, from).
		Update("status", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// TouchActive is a guarded no-op write on an active lottery. Run inside a
// join transaction, it conflicts with any concurrent status transition, so
// the active check holds until commit even under snapshot isolation.
func (r *lotteryRepository) TouchActive(ctx context.Context, lotteryID string) error {
	tx := xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=? AND status=?", lotteryID, entity.LotteryActive).
		Update("updated_at", time.Now())
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotteryRepository) CreateParticipant(
	ctx context.Context, participant *entity.LotteryParticipant,
) error {
	return xcontext.DB(ctx).Create(participant).Error
}

func (r *lotteryRepository) GetParticipant(
	ctx context.Context, lotteryID string, userID int64,
) (*entity.LotteryParticipant, error) {
	var result entity.LotteryParticipant
	err := xcontext.DB(ctx).
		Where("lottery_id=? AND user_id=?", lotteryID, userID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) GetParticipants(
	ctx context.Context, lotteryID string,
) ([]entity.LotteryParticipant, error) {
	var result []entity.LotteryParticipant
	if err := xcontext.DB(ctx).Find(&result, "lottery_id=?", lotteryID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) CountParticipants(
	ctx context.Context, lotteryID string,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.LotteryParticipant{}).
		Where("lottery_id=?", lotteryID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *lotteryRepository) MarkWinner(
	ctx context.Context, lotteryID string, userID int64,
) error {
	tx := xcontext.DB(ctx).Model(&entity.LotteryParticipant{}).
		Where("lottery_id=? AND user_id=?", lotteryID, userID).
		Update("is_winner", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotteryRepository) GetAll(ctx context.Context) ([]entity.Lottery, error) {
	var result []entity.Lottery
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) GetAllParticipants(
	ctx context.Context,
) ([]entity.LotteryParticipant, error) {
	var result []entity.LotteryParticipant
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) DeleteAll(ctx context.Context) error {
	db := xcontext.DB(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := db.Unscoped().Delete(&entity.LotteryParticipant{}).Error; err != nil {
		return err
	}

	return db.Unscoped().Delete(&entity.Lottery{}).Error
}
