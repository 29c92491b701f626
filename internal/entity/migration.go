package entity

import (
	"context"

	"github.com/luckygram/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Invitation{},
		&Lottery{},
		&LotteryParticipant{},
		&GroupSettings{},
	)
}
