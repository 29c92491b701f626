package statistic

import (
	"context"
	"strconv"

	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
	"github.com/luckygram/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

const pointsKey = "leaderboard:points"

type Entry struct {
	UserID int64
	Points float64
	Rank   int
}

type Leaderboard interface {
	ChangePoints(ctx context.Context, userID int64, delta float64) error
	Get(ctx context.Context, offset, limit int) ([]Entry, error)
	GetRank(ctx context.Context, userID int64) (uint64, error)
	Invalidate(ctx context.Context) error
}

type leaderboard struct {
	userRepo    repository.UserRepository
	redisClient xredis.Client
}

func New(userRepo repository.UserRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{userRepo: userRepo, redisClient: redisClient}
}

func (l *leaderboard) ChangePoints(ctx context.Context, userID int64, delta float64) error {
	ok, err := l.redisClient.Exist(ctx, pointsKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	// If the key didn't exist in redis, the next read seeds it from database,
	// which already includes this change.
	if !ok {
		return nil
	}

	if err := l.redisClient.ZIncrBy(ctx, pointsKey, delta, memberOf(userID)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot incr leaderboard: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *leaderboard) Get(ctx context.Context, offset, limit int) ([]Entry, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, pointsKey, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	entries := []Entry{}
	for i, z := range results {
		userID, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Invalid leaderboard member %v: %v", z.Member, err)
			return nil, errorx.Unknown
		}

		entries = append(entries, Entry{
			UserID: userID,
			Points: z.Score,
			Rank:   offset + i + 1,
		})
	}

	return entries, nil
}

func (l *leaderboard) GetRank(ctx context.Context, userID int64) (uint64, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	rank, err := l.redisClient.ZRevRank(ctx, pointsKey, memberOf(userID))
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		return 0, nil
	}

	return rank + 1, nil
}

func (l *leaderboard) Invalidate(ctx context.Context) error {
	return l.redisClient.Del(ctx, pointsKey)
}

func (l *leaderboard) ensureLoaded(ctx context.Context) error {
	ok, err := l.redisClient.Exist(ctx, pointsKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	if ok {
		return nil
	}

	users, err := l.userRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load users for leaderboard: %v", err)
		return errorx.New(errorx.Unavailable, "Storage is unavailable")
	}

	for _, u := range users {
		err := l.redisClient.ZAdd(ctx, pointsKey, redis.Z{
			Score:  u.Points,
			Member: memberOf(u.TelegramID),
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot seed leaderboard: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}

func memberOf(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
