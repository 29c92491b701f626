package testutil

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/repository"
)

const AdminID int64 = 1000

// SampleUser creates a user with randomized fields, overwritten by the
// non-zero fields of init. It returns the created user.
func SampleUser(ctx context.Context, init *entity.User) (entity.User, error) {
	userRepo := repository.NewUserRepository()

	sample := &entity.User{
		Base:       entity.Base{ID: uuid.NewString()},
		TelegramID: int64(uuid.New().ID()),
		Name:       uuid.NewString(),
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := userRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

// SampleLottery creates an active lottery, overwritten by the non-zero fields
// of init.
func SampleLottery(ctx context.Context, init *entity.Lottery) (entity.Lottery, error) {
	lotteryRepo := repository.NewLotteryRepository()

	sample := &entity.Lottery{
		Base:         entity.Base{ID: uuid.NewString()},
		GroupID:      -1,
		CreatorID:    AdminID,
		Prize:        uuid.NewString(),
		WinnersCount: 1,
		Status:       entity.LotteryActive,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := lotteryRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !reflect.DeepEqual(overwriteField.Interface(), reflect.Zero(overwriteField.Type()).Interface()) {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
