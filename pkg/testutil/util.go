package testutil

import (
	"context"
	"time"

	"github.com/luckygram/backend/config"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/pkg/logger"
	"github.com/luckygram/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "testing",
		Bot: config.BotConfigs{
			Username: "luckygram_bot",
			AdminIDs: []int64{AdminID},
		},
		Points: config.PointConfigs{
			MinMessageLength:    5,
			PointsPerMessage:    1,
			PointsPerMedia:      2,
			DailyCheckin:        10,
			LeaderboardPageSize: 10,
		},
		Lottery: config.LotteryConfigs{
			MaxWinners:           100,
			MaxDurationHours:     720,
			WizardSessionTimeout: 10 * time.Minute,
		},
		Invite: config.InviteConfigs{
			Reward:     20,
			CodeLength: 8,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID int64) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
