package repository

import (
	"context"
	"errors"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	GetByInviteCode(ctx context.Context, code string) (*entity.User, error)
	IncreasePoints(ctx context.Context, telegramID int64, points float64) error
	DecreasePoints(ctx context.Context, telegramID int64, points float64) error
	AssignInviteCode(ctx context.Context, telegramID int64, code string) error
	SetLastCheckin(ctx context.Context, telegramID int64, day string) error
	GetLeaderboard(ctx context.Context, offset, limit int) ([]entity.User, error)
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	DeleteAll(ctx context.Context) error
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "telegram_id=?", telegramID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "name=?", name).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByInviteCode(ctx context.Context, code string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "invite_code=?", code).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) IncreasePoints(
	ctx context.Context, telegramID int64, points float64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("telegram_id=?", telegramID).
		Update("points", gorm.Expr("points+?", points))

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

// DecreasePoints atomically checks the balance covers the amount and
// subtracts it. It returns gorm.ErrRecordNotFound if the user doesn't exist
// or the balance is insufficient; callers distinguish the two with a
// follow-up read.
func (r *userRepository) DecreasePoints(
	ctx context.Context, telegramID int64, points float64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("telegram_id=? AND points >= ?", telegramID, points).
		Update("points", gorm.Expr("points-?", points))

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

// AssignInviteCode sets the invite code only if the user doesn't have one
// yet, so a concurrent double issuance keeps the first code.
func (r *userRepository) AssignInviteCode(
	ctx context.Context, telegramID int64, code string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("telegram_id=? AND invite_code IS NULL", telegramID).
		Update("invite_code", code)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SetLastCheckin marks the user as checked in for the given day. It returns
// gorm.ErrRecordNotFound if the user already checked in that day.
func (r *userRepository) SetLastCheckin(
	ctx context.Context, telegramID int64, day string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("telegram_id=? AND last_checkin <> ?", telegramID, day).
		Update("last_checkin", day)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) GetLeaderboard(
	ctx context.Context, offset, limit int,
) ([]entity.User, error) {
	var result []entity.User
	err := xcontext.DB(ctx).
		Order("points DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var result int64
	if err := xcontext.DB(ctx).Model(&entity.User{}).Count(&result).Error; err != nil {
		return 0, err
	}

	return result, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) DeleteAll(ctx context.Context) error {
	return xcontext.DB(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&entity.User{}).Error
}
