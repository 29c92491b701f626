package repository

import (
	"context"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupSettingsRepository interface {
	Get(ctx context.Context, groupID int64) (*entity.GroupSettings, error)
	Upsert(ctx context.Context, settings *entity.GroupSettings) error
	GetAll(ctx context.Context) ([]entity.GroupSettings, error)
	DeleteAll(ctx context.Context) error
}

type groupSettingsRepository struct{}

func NewGroupSettingsRepository() *groupSettingsRepository {
	return &groupSettingsRepository{}
}

func (r *groupSettingsRepository) Get(
	ctx context.Context, groupID int64,
) (*entity.GroupSettings, error) {
	var result entity.GroupSettings
	if err := xcontext.DB(ctx).Take(&result, "group_id=?", groupID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *groupSettingsRepository) Upsert(
	ctx context.Context, settings *entity.GroupSettings,
) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}},
		UpdateAll: true,
	}).Create(settings).Error
}

func (r *groupSettingsRepository) GetAll(ctx context.Context) ([]entity.GroupSettings, error) {
	var result []entity.GroupSettings
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *groupSettingsRepository) DeleteAll(ctx context.Context) error {
	return xcontext.DB(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.GroupSettings{}).Error
}
