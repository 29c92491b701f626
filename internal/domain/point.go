package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/luckygram/backend/internal/common"
	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/dateutil"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PointDomain interface {
	Register(context.Context, *model.RegisterUserRequest) (*model.RegisterUserResponse, error)
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	DailyCheckin(context.Context, *model.DailyCheckinRequest) (*model.DailyCheckinResponse, error)
	AwardMessagePoints(context.Context, *model.AwardMessagePointsRequest) (*model.AwardMessagePointsResponse, error)
	AdjustPoints(context.Context, *model.AdjustPointsRequest) (*model.AdjustPointsResponse, error)
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	UpdateGroupSettings(context.Context, *model.UpdateGroupSettingsRequest) (*model.UpdateGroupSettingsResponse, error)
}

type pointDomain struct {
	userRepo     repository.UserRepository
	settingsRepo repository.GroupSettingsRepository
	leaderboard  statistic.Leaderboard
	verifier     *common.AdminVerifier
}

func NewPointDomain(
	userRepo repository.UserRepository,
	settingsRepo repository.GroupSettingsRepository,
	leaderboard statistic.Leaderboard,
	verifier *common.AdminVerifier,
) *pointDomain {
	return &pointDomain{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		leaderboard:  leaderboard,
		verifier:     verifier,
	}
}

func (d *pointDomain) Register(
	ctx context.Context, req *model.RegisterUserRequest,
) (*model.RegisterUserResponse, error) {
	user, err := d.userRepo.GetByTelegramID(ctx, req.TelegramID)
	if err == nil {
		return &model.RegisterUserResponse{User: model.ConvertUser(user), Created: false}, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errStorageUnavailable
	}

	user = &entity.User{
		Base:       entity.Base{ID: uuid.NewString()},
		TelegramID: req.TelegramID,
		Name:       req.Name,
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.RegisterUserResponse{User: model.ConvertUser(user), Created: true}, nil
}

func (d *pointDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	user, err := d.userRepo.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.UnknownUser, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.GetBalanceResponse{User: model.ConvertUser(user)}, nil
}

func (d *pointDomain) DailyCheckin(
	ctx context.Context, req *model.DailyCheckinRequest,
) (*model.DailyCheckinResponse, error) {
	user, err := d.userRepo.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.UnknownUser, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errStorageUnavailable
	}

	reward := d.checkinReward(ctx, req.GroupID)
	today := dateutil.Date(time.Now())

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.userRepo.SetLastCheckin(ctx, req.TelegramID, today); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyCheckedIn, "You already checked in today")
		}

		xcontext.Logger(ctx).Errorf("Cannot set last checkin: %v", err)
		return nil, errStorageUnavailable
	}

	if err := d.userRepo.IncreasePoints(ctx, req.TelegramID, reward); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase points: %v", err)
		return nil, errStorageUnavailable
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	if err := d.leaderboard.ChangePoints(ctx, req.TelegramID, reward); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update leaderboard: %v", err)
	}

	return &model.DailyCheckinResponse{
		Awarded: reward,
		Balance: user.Points + reward,
	}, nil
}

func (d *pointDomain) AwardMessagePoints(
	ctx context.Context, req *model.AwardMessagePointsRequest,
) (*model.AwardMessagePointsResponse, error) {
	cfg := xcontext.Configs(ctx).Points
	minLength := cfg.MinMessageLength
	perMessage := cfg.PointsPerMessage
	perMedia := cfg.PointsPerMedia

	if settings, err := d.settingsRepo.Get(ctx, req.GroupID); err == nil {
		minLength = settings.MinMessageLength
		perMessage = settings.PointsPerMessage
		perMedia = settings.PointsPerMedia
	}

	var award float64
	switch {
	case req.IsMedia:
		award = perMedia
	case len([]rune(req.Text)) >= minLength:
		award = perMessage
	}

	if award == 0 {
		return &model.AwardMessagePointsResponse{}, nil
	}

	if err := d.userRepo.IncreasePoints(ctx, req.TelegramID, award); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.UnknownUser, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase points: %v", err)
		return nil, errStorageUnavailable
	}

	if err := d.leaderboard.ChangePoints(ctx, req.TelegramID, award); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update leaderboard: %v", err)
	}

	return &model.AwardMessagePointsResponse{Awarded: award}, nil
}

func (d *pointDomain) AdjustPoints(
	ctx context.Context, req *model.AdjustPointsRequest,
) (*model.AdjustPointsResponse, error) {
	if err := d.verifier.Verify(ctx); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if req.Change == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow zero point change")
	}

	user, err := d.userRepo.GetByName(ctx, req.TargetName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.UnknownUser, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errStorageUnavailable
	}

	if req.Change > 0 {
		err = d.userRepo.IncreasePoints(ctx, user.TelegramID, req.Change)
	} else {
		err = d.userRepo.DecreasePoints(ctx, user.TelegramID, -req.Change)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InsufficientPoints,
				"Not enough points, the user has only %g", user.Points)
		}

		xcontext.Logger(ctx).Errorf("Cannot adjust points: %v", err)
		return nil, errStorageUnavailable
	}

	if err := d.leaderboard.ChangePoints(ctx, user.TelegramID, req.Change); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update leaderboard: %v", err)
	}

	user.Points += req.Change
	return &model.AdjustPointsResponse{User: model.ConvertUser(user)}, nil
}

func (d *pointDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative offset")
	}

	limit := req.Limit
	if limit == 0 {
		limit = xcontext.Configs(ctx).Points.LeaderboardPageSize
	}

	if limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	entries, err := d.leaderboard.Get(ctx, req.Offset, limit)
	if err != nil {
		return nil, err
	}

	total, err := d.userRepo.Count(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count users: %v", err)
		return nil, errStorageUnavailable
	}

	leaderboard := []model.LeaderboardEntry{}
	for _, entry := range entries {
		user, err := d.userRepo.GetByTelegramID(ctx, entry.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user %d: %v", entry.UserID, err)
			return nil, errStorageUnavailable
		}

		leaderboard = append(leaderboard, model.LeaderboardEntry{
			User:  model.ConvertUser(user),
			Value: entry.Points,
			Rank:  entry.Rank,
		})
	}

	return &model.GetLeaderboardResponse{Leaderboard: leaderboard, Total: total}, nil
}

func (d *pointDomain) UpdateGroupSettings(
	ctx context.Context, req *model.UpdateGroupSettingsRequest,
) (*model.UpdateGroupSettingsResponse, error) {
	if err := d.verifier.Verify(ctx); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if req.Value < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative value")
	}

	settings, err := d.settingsRepo.Get(ctx, req.GroupID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get group settings: %v", err)
			return nil, errStorageUnavailable
		}

		cfg := xcontext.Configs(ctx)
		settings = &entity.GroupSettings{
			GroupID:          req.GroupID,
			MinMessageLength: cfg.Points.MinMessageLength,
			PointsPerMessage: cfg.Points.PointsPerMessage,
			PointsPerMedia:   cfg.Points.PointsPerMedia,
			DailyCheckin:     cfg.Points.DailyCheckin,
			InviteReward:     cfg.Invite.Reward,
		}
	}

	switch req.Setting {
	case "min_message_length":
		settings.MinMessageLength = int(req.Value)
	case "points_per_message":
		settings.PointsPerMessage = req.Value
	case "points_per_media":
		settings.PointsPerMedia = req.Value
	case "daily_checkin":
		settings.DailyCheckin = req.Value
	case "invite_reward":
		settings.InviteReward = req.Value
	default:
		return nil, errorx.New(errorx.BadRequest, "Unknown setting %s", req.Setting)
	}

	if err := d.settingsRepo.Upsert(ctx, settings); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert group settings: %v", err)
		return nil, errStorageUnavailable
	}

	return &model.UpdateGroupSettingsResponse{}, nil
}

func (d *pointDomain) checkinReward(ctx context.Context, groupID int64) float64 {
	if settings, err := d.settingsRepo.Get(ctx, groupID); err == nil {
		return settings.DailyCheckin
	}

	return xcontext.Configs(ctx).Points.DailyCheckin
}
