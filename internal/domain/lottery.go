package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/luckygram/backend/internal/common"
	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/crypto"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
	mathutil "github.com/pkg/math"
	"gorm.io/gorm"
)

type LotteryDomain interface {
	Create(context.Context, *model.CreateLotteryRequest) (*model.CreateLotteryResponse, error)
	Get(context.Context, *model.GetLotteryRequest) (*model.GetLotteryResponse, error)
	ListActive(context.Context, *model.ListActiveLotteriesRequest) (*model.ListActiveLotteriesResponse, error)
	Join(context.Context, *model.JoinLotteryRequest) (*model.JoinLotteryResponse, error)
	JoinByKeyword(context.Context, *model.JoinLotteryByKeywordRequest) (*model.JoinLotteryByKeywordResponse, error)
	Draw(context.Context, *model.DrawLotteryRequest) (*model.DrawLotteryResponse, error)
	Cancel(context.Context, *model.CancelLotteryRequest) (*model.CancelLotteryResponse, error)
}

type lotteryDomain struct {
	lotteryRepo repository.LotteryRepository
	userRepo    repository.UserRepository
	leaderboard statistic.Leaderboard
	verifier    *common.AdminVerifier
}

func NewLotteryDomain(
	lotteryRepo repository.LotteryRepository,
	userRepo repository.UserRepository,
	leaderboard statistic.Leaderboard,
	verifier *common.AdminVerifier,
) *lotteryDomain {
	return &lotteryDomain{
		lotteryRepo: lotteryRepo,
		userRepo:    userRepo,
		leaderboard: leaderboard,
		verifier:    verifier,
	}
}

func (d *lotteryDomain) Create(
	ctx context.Context, req *model.CreateLotteryRequest,
) (*model.CreateLotteryResponse, error) {
	if err := d.verifier.Verify(ctx); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if req.Prize == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty prize")
	}

	if req.WinnersCount < 1 {
		return nil, errorx.New(errorx.BadRequest, "The number of winners must be a positive number")
	}

	maxWinners := xcontext.Configs(ctx).Lottery.MaxWinners
	if req.WinnersCount > maxWinners {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of winners (%d)", maxWinners)
	}

	if req.PointsRequired < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative required points")
	}

	if req.MinParticipants < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative minimum participants")
	}

	lottery := &entity.Lottery{
		Base:            entity.Base{ID: uuid.NewString()},
		GroupID:         req.GroupID,
		CreatorID:       xcontext.RequestUserID(ctx),
		Prize:           req.Prize,
		WinnersCount:    req.WinnersCount,
		PointsRequired:  req.PointsRequired,
		MinParticipants: req.MinParticipants,
		Status:          entity.LotteryActive,
	}

	if req.Keyword != "" {
		lottery.Keyword = sql.NullString{Valid: true, String: req.Keyword}
	}

	if req.DurationHours != 0 {
		maxDuration := xcontext.Configs(ctx).Lottery.MaxDurationHours
		if req.DurationHours < 0 || req.DurationHours > maxDuration {
			return nil, errorx.New(errorx.BadRequest,
				"Duration must be between 1 and %d hours", maxDuration)
		}

		lottery.EndTime = sql.NullTime{
			Valid: true,
			Time:  time.Now().Add(time.Duration(req.DurationHours) * time.Hour),
		}
	}

	if err := d.lotteryRepo.Create(ctx, lottery); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create lottery: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.CreateLotteryResponse{Lottery: model.ConvertLottery(lottery, 0)}, nil
}

func (d *lotteryDomain) Get(
	ctx context.Context, req *model.GetLotteryRequest,
) (*model.GetLotteryResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errStorageUnavailable
	}

	count, err := d.lotteryRepo.CountParticipants(ctx, req.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count participants: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.GetLotteryResponse{Lottery: model.ConvertLottery(lottery, count)}, nil
}

func (d *lotteryDomain) ListActive(
	ctx context.Context, req *model.ListActiveLotteriesRequest,
) (*model.ListActiveLotteriesResponse, error) {
	lotteries, err := d.lotteryRepo.GetActiveByGroupID(ctx, req.GroupID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list lotteries: %v", err)
		return nil, errStorageUnavailable
	}

	clientLotteries := []model.Lottery{}
	for i := range lotteries {
		count, err := d.lotteryRepo.CountParticipants(ctx, lotteries[i].ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count participants: %v", err)
			return nil, errStorageUnavailable
		}

		clientLotteries = append(clientLotteries, model.ConvertLottery(&lotteries[i], count))
	}

	return &model.ListActiveLotteriesResponse{Lotteries: clientLotteries}, nil
}

// Join enrolls the acting user into a lottery. The status check, the point
// debit, and the participation insert happen in one transaction, so a failed
// enrollment never leaves the user charged.
func (d *lotteryDomain) Join(
	ctx context.Context, req *model.JoinLotteryRequest,
) (*model.JoinLotteryResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errStorageUnavailable
	}

	if lottery.Status != entity.LotteryActive {
		return nil, errorx.New(errorx.LotteryClosed, "The lottery has ended")
	}

	// The guarded touch makes this transaction conflict with a concurrent
	// draw or cancel, so nobody enrolls into a lottery that closes before
	// the join commits.
	if err := d.lotteryRepo.TouchActive(ctx, req.LotteryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.LotteryClosed, "The lottery has ended")
		}

		xcontext.Logger(ctx).Errorf("Cannot touch lottery: %v", err)
		return nil, errStorageUnavailable
	}

	// Joined before debited, so a duplicate join cannot surface as an
	// insufficient-balance failure.
	if _, err := d.lotteryRepo.GetParticipant(ctx, req.LotteryID, userID); err == nil {
		return nil, errorx.New(errorx.AlreadyJoined, "You already joined this lottery")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errStorageUnavailable
	}

	if lottery.PointsRequired > 0 {
		if err := d.userRepo.DecreasePoints(ctx, userID, lottery.PointsRequired); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot decrease points: %v", err)
				return nil, errStorageUnavailable
			}

			if _, err := d.userRepo.GetByTelegramID(ctx, userID); err != nil {
				return nil, errorx.New(errorx.UnknownUser, "Not found user")
			}

			return nil, errorx.New(errorx.InsufficientPoints,
				"Not enough points, this lottery requires %g", lottery.PointsRequired)
		}
	}

	participant := &entity.LotteryParticipant{
		LotteryID: req.LotteryID,
		UserID:    userID,
		Name:      req.Name,
	}

	if err := d.lotteryRepo.CreateParticipant(ctx, participant); err != nil {
		// Two concurrent joins race on the composite key; the transaction
		// rollback refunds the loser's debit.
		if isUniqueViolation(err) {
			return nil, errorx.New(errorx.AlreadyJoined, "You already joined this lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot create participant: %v", err)
		return nil, errStorageUnavailable
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	if lottery.PointsRequired > 0 {
		if err := d.leaderboard.ChangePoints(ctx, userID, -lottery.PointsRequired); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update leaderboard: %v", err)
		}
	}

	return &model.JoinLotteryResponse{PointsCharged: lottery.PointsRequired}, nil
}

// JoinByKeyword funnels a keyword message into the same enrollment path as
// the explicit join operation.
func (d *lotteryDomain) JoinByKeyword(
	ctx context.Context, req *model.JoinLotteryByKeywordRequest,
) (*model.JoinLotteryByKeywordResponse, error) {
	lottery, err := d.lotteryRepo.GetActiveByKeyword(ctx, req.GroupID, req.Text)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.JoinLotteryByKeywordResponse{Joined: false}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery by keyword: %v", err)
		return nil, errStorageUnavailable
	}

	resp, err := d.Join(ctx, &model.JoinLotteryRequest{LotteryID: lottery.ID, Name: req.Name})
	if err != nil {
		return nil, err
	}

	return &model.JoinLotteryByKeywordResponse{
		Joined:        true,
		LotteryID:     lottery.ID,
		PointsCharged: resp.PointsCharged,
	}, nil
}

// Draw selects winners by uniform sampling without replacement, marks them,
// and completes the lottery as one atomic unit. The guarded status transition
// makes at most one draw ever succeed.
func (d *lotteryDomain) Draw(
	ctx context.Context, req *model.DrawLotteryRequest,
) (*model.DrawLotteryResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errStorageUnavailable
	}

	if xcontext.RequestUserID(ctx) != lottery.CreatorID {
		if err := d.verifier.Verify(ctx); err != nil {
			xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
			return nil, errorx.New(errorx.PermissionDenied,
				"Only the creator or an admin can draw")
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	lottery, err = d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errStorageUnavailable
	}

	switch lottery.Status {
	case entity.LotteryActive:
	case entity.LotteryCompleted:
		return nil, errorx.New(errorx.AlreadyClosed, "The lottery was already drawn")
	default:
		return nil, errorx.New(errorx.NotActive, "The lottery is not active")
	}

	participants, err := d.lotteryRepo.GetParticipants(ctx, req.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errStorageUnavailable
	}

	if len(participants) < lottery.MinParticipants {
		return nil, errorx.New(errorx.BelowMinimum,
			"Not enough participants, at least %d required", lottery.MinParticipants)
	}

	winnersCount := mathutil.MinInt(lottery.WinnersCount, len(participants))
	winners := []model.Winner{}
	for _, i := range crypto.Sample(len(participants), winnersCount) {
		winner := participants[i]
		if err := d.lotteryRepo.MarkWinner(ctx, req.LotteryID, winner.UserID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark winner: %v", err)
			return nil, errStorageUnavailable
		}

		winners = append(winners, model.Winner{UserID: winner.UserID, Name: winner.Name})
	}

	err = d.lotteryRepo.TransitionStatus(
		ctx, req.LotteryID, entity.LotteryActive, entity.LotteryCompleted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyClosed, "The lottery was already drawn")
		}

		xcontext.Logger(ctx).Errorf("Cannot complete lottery: %v", err)
		return nil, errStorageUnavailable
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	lottery.Status = entity.LotteryCompleted
	return &model.DrawLotteryResponse{
		Lottery: model.ConvertLottery(lottery, int64(len(participants))),
		Winners: winners,
	}, nil
}

func (d *lotteryDomain) Cancel(
	ctx context.Context, req *model.CancelLotteryRequest,
) (*model.CancelLotteryResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errStorageUnavailable
	}

	if xcontext.RequestUserID(ctx) != lottery.CreatorID {
		if err := d.verifier.Verify(ctx); err != nil {
			xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
			return nil, errorx.New(errorx.PermissionDenied,
				"Only the creator or an admin can cancel")
		}
	}

	err = d.lotteryRepo.TransitionStatus(
		ctx, req.LotteryID, entity.LotteryActive, entity.LotteryCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyClosed, "The lottery is not active anymore")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel lottery: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.CancelLotteryResponse{}, nil
}
