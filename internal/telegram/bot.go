package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/luckygram/backend/internal/domain"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
)

// Bot dispatches inbound chat updates to the domain layer and renders
// responses back to the group.
type Bot struct {
	api *tgbotapi.BotAPI

	pointDomain      domain.PointDomain
	invitationDomain domain.InvitationDomain
	lotteryDomain    domain.LotteryDomain
	wizardDomain     domain.WizardDomain
}

func NewBot(
	ctx context.Context,
	pointDomain domain.PointDomain,
	invitationDomain domain.InvitationDomain,
	lotteryDomain domain.LotteryDomain,
	wizardDomain domain.WizardDomain,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(xcontext.Configs(ctx).Bot.Token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:              api,
		pointDomain:      pointDomain,
		invitationDomain: invitationDomain,
		lotteryDomain:    lotteryDomain,
		wizardDomain:     wizardDomain,
	}, nil
}

func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Run consumes the long-poll update channel until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	ctx = xcontext.WithRequestUserID(ctx, msg.From.ID)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	b.handlePlainMessage(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var err error
	switch msg.Command() {
	case "start":
		err = b.handleStart(ctx, msg)
	case "checkin", "daily":
		err = b.handleCheckin(ctx, msg)
	case "points":
		err = b.handlePoints(ctx, msg)
	case "leaderboard":
		err = b.handleLeaderboard(ctx, msg, 1)
	case "invite":
		err = b.handleInvite(ctx, msg)
	case "redeem":
		err = b.handleRedeem(ctx, msg)
	case "createlottery":
		err = b.handleCreateLottery(ctx, msg)
	case "lotteries":
		err = b.handleListLotteries(ctx, msg)
	case "joinlottery":
		err = b.handleJoinLottery(ctx, msg)
	case "forcedraw":
		err = b.handleForceDraw(ctx, msg)
	case "cancellottery":
		err = b.handleCancelLottery(ctx, msg)
	case "cancel":
		err = b.handleCancelWizard(ctx, msg)
	case "setsetting":
		err = b.handleSetSetting(ctx, msg)
	case "addpoints":
		err = b.handleAdjustPoints(ctx, msg, 1)
	case "deductpoints":
		err = b.handleAdjustPoints(ctx, msg, -1)
	default:
		return
	}

	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
	}
}

// handlePlainMessage routes free text. A message from an admin with a
// creation dialog in progress feeds the dialog; otherwise the text is tried
// as a lottery keyword and finally scored for activity points.
func (b *Bot) handlePlainMessage(ctx context.Context, msg *tgbotapi.Message) {
	if handled := b.tryWizardReply(ctx, msg); handled {
		return
	}

	if handled := b.tryKeywordJoin(ctx, msg); handled {
		return
	}

	b.awardMessagePoints(ctx, msg)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil {
		return
	}

	ctx = xcontext.WithRequestUserID(ctx, query.From.ID)

	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot answer callback query: %v", err)
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, callbackLeaderboardPrefix):
		b.handleLeaderboardPage(ctx, query)
	case strings.HasPrefix(data, callbackJoinPrefix):
		b.handleJoinCallback(ctx, query)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send message: %v", err)
	}
}

// replyError renders domain errors to the group. The errorx message is
// user-facing; anything else gets the generic text.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	var domainErr errorx.Error
	if errors.As(err, &domainErr) {
		b.reply(ctx, chatID, domainErr.Message)
		return
	}

	xcontext.Logger(ctx).Errorf("Unexpected handler error: %v", err)
	b.reply(ctx, chatID, errorx.Unknown.Message)
}
