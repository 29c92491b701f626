package cron

import (
	"context"
	"errors"
	"time"

	"github.com/luckygram/backend/internal/domain"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
)

// AutoDrawCronJob draws every active lottery whose deadline elapsed. A lottery
// that is still below its minimum participants stays active and is retried on
// the next tick.
type AutoDrawCronJob struct {
	lotteryRepo   repository.LotteryRepository
	lotteryDomain domain.LotteryDomain
	notifier      domain.Notifier
	interval      time.Duration
}

func NewAutoDrawCronJob(
	lotteryRepo repository.LotteryRepository,
	lotteryDomain domain.LotteryDomain,
	notifier domain.Notifier,
	interval time.Duration,
) *AutoDrawCronJob {
	if interval <= 0 {
		interval = time.Minute
	}

	return &AutoDrawCronJob{
		lotteryRepo:   lotteryRepo,
		lotteryDomain: lotteryDomain,
		notifier:      notifier,
		interval:      interval,
	}
}

func (job *AutoDrawCronJob) Do(ctx context.Context) {
	lotteries, err := job.lotteryRepo.GetDue(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get due lotteries: %v", err)
		return
	}

	for i := range lotteries {
		lottery := lotteries[i]

		// The draw runs on behalf of the creator.
		drawCtx := xcontext.WithRequestUserID(ctx, lottery.CreatorID)
		resp, err := job.lotteryDomain.Draw(drawCtx, &model.DrawLotteryRequest{LotteryID: lottery.ID})
		if err != nil {
			if errors.Is(err, errorx.Error{Code: errorx.BelowMinimum}) {
				xcontext.Logger(ctx).Infof(
					"Lottery %s is due but below minimum, keep it active", lottery.ID)
			} else {
				xcontext.Logger(ctx).Errorf("Cannot auto draw lottery %s: %v", lottery.ID, err)
			}

			continue
		}

		if job.notifier != nil {
			if err := job.notifier.AnnounceWinners(ctx, resp.Lottery, resp.Winners); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot announce winners of %s: %v", lottery.ID, err)
			}
		}
	}
}

func (job *AutoDrawCronJob) RunNow() bool {
	return false
}

func (job *AutoDrawCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
