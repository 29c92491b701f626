package domain

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/luckygram/backend/internal/common"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

type wizardStep string

const (
	stepPrize    = wizardStep("prize")
	stepWinners  = wizardStep("winners")
	stepType     = wizardStep("type")
	stepPoints   = wizardStep("points")
	stepKeyword  = wizardStep("keyword")
	stepDuration = wizardStep("duration")
)

const (
	promptPrize    = "What is the prize?"
	promptWinners  = "How many winners?"
	promptType     = "Join by points or by keyword? Reply with \"points\" or \"keyword\"."
	promptPoints   = "How many points are required to join? Reply with 0 for free entry."
	promptKeyword  = "Which keyword should users send to join?"
	promptDuration = "How many hours should the lottery run? Reply with 0 for no deadline."
)

// wizardSession accumulates the fields of one lottery creation dialog. The
// mutex serializes steps of a single admin; different admins never share a
// session.
type wizardSession struct {
	mutex sync.Mutex

	groupID   int64
	step      wizardStep
	updatedAt time.Time

	prize          string
	winnersCount   int
	pointsRequired float64
	keyword        string
}

type WizardDomain interface {
	Start(context.Context, *model.StartWizardRequest) (*model.StartWizardResponse, error)
	Advance(context.Context, *model.AdvanceWizardRequest) (*model.AdvanceWizardResponse, error)
	SelectType(context.Context, *model.SelectWizardTypeRequest) (*model.SelectWizardTypeResponse, error)
	Cancel(context.Context, *model.CancelWizardRequest) (*model.CancelWizardResponse, error)

	CleanupExpired(ctx context.Context)
}

type wizardDomain struct {
	sessions      *xsync.MapOf[string, *wizardSession]
	lotteryDomain LotteryDomain
	verifier      *common.AdminVerifier
}

func NewWizardDomain(lotteryDomain LotteryDomain, verifier *common.AdminVerifier) *wizardDomain {
	return &wizardDomain{
		sessions:      xsync.NewMapOf[*wizardSession](),
		lotteryDomain: lotteryDomain,
		verifier:      verifier,
	}
}

func sessionKey(ctx context.Context) string {
	return strconv.FormatInt(xcontext.RequestUserID(ctx), 10)
}

// Start opens a creation dialog for the acting admin, replacing any dialog
// that admin already had in progress.
func (d *wizardDomain) Start(
	ctx context.Context, req *model.StartWizardRequest,
) (*model.StartWizardResponse, error) {
	if err := d.verifier.Verify(ctx); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	d.sessions.Store(sessionKey(ctx), &wizardSession{
		groupID:   req.GroupID,
		step:      stepPrize,
		updatedAt: time.Now(),
	})

	return &model.StartWizardResponse{Prompt: promptPrize}, nil
}

func (d *wizardDomain) Advance(
	ctx context.Context, req *model.AdvanceWizardRequest,
) (*model.AdvanceWizardResponse, error) {
	session, ok := d.sessions.Load(sessionKey(ctx))
	if !ok {
		return nil, errorx.New(errorx.NotFound, "No creation dialog in progress")
	}

	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.updatedAt = time.Now()

	input := strings.TrimSpace(req.Input)

	switch session.step {
	case stepPrize:
		if input == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow empty prize")
		}

		session.prize = input
		session.step = stepWinners
		return &model.AdvanceWizardResponse{Prompt: promptWinners}, nil

	case stepWinners:
		count, err := strconv.Atoi(input)
		if err != nil || count < 1 {
			return nil, errorx.New(errorx.BadRequest, "Please send a positive number")
		}

		maxWinners := xcontext.Configs(ctx).Lottery.MaxWinners
		if count > maxWinners {
			return nil, errorx.New(errorx.BadRequest,
				"Exceed the maximum of winners (%d)", maxWinners)
		}

		session.winnersCount = count
		session.step = stepType
		return &model.AdvanceWizardResponse{Prompt: promptType}, nil

	case stepType:
		return nil, errorx.New(errorx.BadRequest, "Please choose \"points\" or \"keyword\"")

	case stepPoints:
		points, err := strconv.ParseFloat(input, 64)
		if err != nil || points < 0 {
			return nil, errorx.New(errorx.BadRequest, "Please send a non-negative number")
		}

		session.pointsRequired = points
		session.step = stepDuration
		return &model.AdvanceWizardResponse{Prompt: promptDuration}, nil

	case stepKeyword:
		if input == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow empty keyword")
		}

		session.keyword = input
		session.step = stepDuration
		return &model.AdvanceWizardResponse{Prompt: promptDuration}, nil

	case stepDuration:
		hours, err := strconv.Atoi(input)
		if err != nil || hours < 0 {
			return nil, errorx.New(errorx.BadRequest, "Please send a non-negative number")
		}

		maxDuration := xcontext.Configs(ctx).Lottery.MaxDurationHours
		if hours > maxDuration {
			return nil, errorx.New(errorx.BadRequest,
				"Duration must be at most %d hours", maxDuration)
		}

		return d.commit(ctx, session, hours)

	default:
		return nil, errorx.Unknown
	}
}

func (d *wizardDomain) SelectType(
	ctx context.Context, req *model.SelectWizardTypeRequest,
) (*model.SelectWizardTypeResponse, error) {
	session, ok := d.sessions.Load(sessionKey(ctx))
	if !ok {
		return nil, errorx.New(errorx.NotFound, "No creation dialog in progress")
	}

	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.updatedAt = time.Now()

	if session.step != stepType {
		return nil, errorx.New(errorx.BadRequest, "Not at the type selection step")
	}

	switch strings.ToLower(strings.TrimSpace(req.Choice)) {
	case "points":
		session.step = stepPoints
		return &model.SelectWizardTypeResponse{Prompt: promptPoints}, nil
	case "keyword":
		session.step = stepKeyword
		return &model.SelectWizardTypeResponse{Prompt: promptKeyword}, nil
	default:
		return nil, errorx.New(errorx.BadRequest, "Please choose \"points\" or \"keyword\"")
	}
}

func (d *wizardDomain) Cancel(
	ctx context.Context, req *model.CancelWizardRequest,
) (*model.CancelWizardResponse, error) {
	if _, ok := d.sessions.LoadAndDelete(sessionKey(ctx)); !ok {
		return nil, errorx.New(errorx.NotFound, "No creation dialog in progress")
	}

	return &model.CancelWizardResponse{}, nil
}

// commit persists the accumulated lottery and discards the session. The
// session is discarded even when creation fails, the admin restarts the
// dialog instead of retrying a half-filled one.
func (d *wizardDomain) commit(
	ctx context.Context, session *wizardSession, durationHours int,
) (*model.AdvanceWizardResponse, error) {
	d.sessions.Delete(sessionKey(ctx))

	resp, err := d.lotteryDomain.Create(ctx, &model.CreateLotteryRequest{
		GroupID:        session.groupID,
		Prize:          session.prize,
		WinnersCount:   session.winnersCount,
		PointsRequired: session.pointsRequired,
		Keyword:        session.keyword,
		DurationHours:  durationHours,
	})
	if err != nil {
		return nil, err
	}

	return &model.AdvanceWizardResponse{
		Committed: true,
		Lottery:   &resp.Lottery,
	}, nil
}

// CleanupExpired drops dialogs idle longer than the configured timeout.
func (d *wizardDomain) CleanupExpired(ctx context.Context) {
	timeout := xcontext.Configs(ctx).Lottery.WizardSessionTimeout
	if timeout <= 0 {
		return
	}

	deadline := time.Now().Add(-timeout)
	d.sessions.Range(func(key string, session *wizardSession) bool {
		session.mutex.Lock()
		expired := session.updatedAt.Before(deadline)
		session.mutex.Unlock()

		if expired {
			d.sessions.Delete(key)
			xcontext.Logger(ctx).Infof("Removed expired creation dialog of %s", key)
		}

		return true
	})
}
