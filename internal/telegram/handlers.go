package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/xcontext"
)

const (
	callbackLeaderboardPrefix = "leaderboard_"
	callbackJoinPrefix        = "join_"
)

func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}

	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

// handleStart registers the user. A deep-link payload is treated as an
// invite code and redeemed on behalf of the new user.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	name := displayName(msg.From)
	resp, err := b.pointDomain.Register(ctx, &model.RegisterUserRequest{
		TelegramID: msg.From.ID,
		Name:       name,
	})
	if err != nil {
		return err
	}

	if code := strings.TrimSpace(msg.CommandArguments()); code != "" && resp.Created {
		redeemed, err := b.invitationDomain.Redeem(ctx, &model.RedeemInviteCodeRequest{
			Code:        code,
			InviteeID:   msg.From.ID,
			InviteeName: name,
		})
		if err != nil {
			b.replyError(ctx, msg.Chat.ID, err)
		} else {
			b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
				"🎁 You were invited by %s, they earned %g points!",
				redeemed.InviterName, redeemed.Reward))
		}
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"Hi %s!\n"+
			"🤖 Welcome to the points bot\n\n"+
			"💡 What you can do:\n"+
			"1. Earn points by chatting\n"+
			"2. Check in daily with /checkin\n"+
			"3. Invite friends with /invite\n"+
			"4. See the ranking with /leaderboard\n\n"+
			"✨ Have fun!", msg.From.FirstName))
	return nil
}

func (b *Bot) handleCheckin(ctx context.Context, msg *tgbotapi.Message) error {
	resp, err := b.pointDomain.DailyCheckin(ctx, &model.DailyCheckinRequest{
		TelegramID: msg.From.ID,
		GroupID:    msg.Chat.ID,
	})
	if err != nil {
		if errors.Is(err, errorx.Error{Code: errorx.AlreadyCheckedIn}) {
			b.reply(ctx, msg.Chat.ID, "❌ Already checked in today, come back tomorrow!")
			return nil
		}

		return err
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"✅ Checked in!\n💰 You earned %g points\n💵 Current balance: %g",
		resp.Awarded, resp.Balance))
	return nil
}

func (b *Bot) handlePoints(ctx context.Context, msg *tgbotapi.Message) error {
	resp, err := b.pointDomain.GetBalance(ctx, &model.GetBalanceRequest{TelegramID: msg.From.ID})
	if err != nil {
		if errors.Is(err, errorx.Error{Code: errorx.UnknownUser}) {
			b.reply(ctx, msg.Chat.ID, "No points record found, send /start to register first")
			return nil
		}

		return err
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"👤 User: %s\n💰 Current points: %g", resp.User.Name, resp.User.Points))
	return nil
}

func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message, page int) error {
	text, markup, err := b.renderLeaderboard(ctx, page)
	if err != nil {
		return err
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	if markup != nil {
		reply.ReplyMarkup = markup
	}

	if _, err := b.api.Send(reply); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send leaderboard: %v", err)
	}

	return nil
}

func (b *Bot) handleLeaderboardPage(ctx context.Context, query *tgbotapi.CallbackQuery) {
	page, err := strconv.Atoi(strings.TrimPrefix(query.Data, callbackLeaderboardPrefix))
	if err != nil || page < 1 {
		return
	}

	text, markup, err := b.renderLeaderboard(ctx, page)
	if err != nil {
		b.replyError(ctx, query.Message.Chat.ID, err)
		return
	}

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ReplyMarkup = markup
	if _, err := b.api.Send(edit); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot edit leaderboard: %v", err)
	}
}

func (b *Bot) renderLeaderboard(
	ctx context.Context, page int,
) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	pageSize := xcontext.Configs(ctx).Points.LeaderboardPageSize
	resp, err := b.pointDomain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("🏆 Points leaderboard\n\n")
	for _, entry := range resp.Leaderboard {
		sb.WriteString(fmt.Sprintf("%d. %s — %g\n", entry.Rank, entry.User.Name, entry.Value))
	}

	if len(resp.Leaderboard) == 0 {
		sb.WriteString("Nobody here yet.")
	}

	totalPages := int((resp.Total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages <= 1 {
		return sb.String(), nil, nil
	}

	buttons := []tgbotapi.InlineKeyboardButton{}
	if page > 1 {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️ Prev", fmt.Sprintf("%s%d", callbackLeaderboardPrefix, page-1)))
	}
	if page < totalPages {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			"Next ➡️", fmt.Sprintf("%s%d", callbackLeaderboardPrefix, page+1)))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	return sb.String(), &markup, nil
}

func (b *Bot) handleInvite(ctx context.Context, msg *tgbotapi.Message) error {
	resp, err := b.invitationDomain.IssueCode(ctx, &model.IssueInviteCodeRequest{
		TelegramID: msg.From.ID,
	})
	if err != nil {
		return err
	}

	username := xcontext.Configs(ctx).Bot.Username
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"🔗 Your invite link:\nhttps://t.me/%s?start=%s\n\n"+
			"👥 Rewarded invitations so far: %d",
		username, resp.Code, resp.InvitedPeople))
	return nil
}

func (b *Bot) handleRedeem(ctx context.Context, msg *tgbotapi.Message) error {
	code := strings.TrimSpace(msg.CommandArguments())
	if code == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: /redeem <code>")
		return nil
	}

	resp, err := b.invitationDomain.Redeem(ctx, &model.RedeemInviteCodeRequest{
		Code:        code,
		InviteeID:   msg.From.ID,
		InviteeName: displayName(msg.From),
	})
	if err != nil {
		return err
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"🎁 Invitation accepted, %s earned %g points!", resp.InviterName, resp.Reward))
	return nil
}

func (b *Bot) handleCreateLottery(ctx context.Context, msg *tgbotapi.Message) error {
	resp, err := b.wizardDomain.Start(ctx, &model.StartWizardRequest{GroupID: msg.Chat.ID})
	if err != nil {
		return err
	}

	b.reply(ctx, msg.Chat.ID, "🎰 Let's set up a new lottery.\n"+resp.Prompt)
	return nil
}

func (b *Bot) handleCancelWizard(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.wizardDomain.Cancel(ctx, &model.CancelWizardRequest{}); err != nil {
		return err
	}

	b.reply(ctx, msg.Chat.ID, "Creation dialog cancelled.")
	return nil
}

func (b *Bot) handleListLotteries(ctx context.Context, msg *tgbotapi.Message) error {
	resp, err := b.lotteryDomain.ListActive(ctx, &model.ListActiveLotteriesRequest{
		GroupID: msg.Chat.ID,
	})
	if err != nil {
		return err
	}

	if len(resp.Lotteries) == 0 {
		b.reply(ctx, msg.Chat.ID, "No lottery is running right now.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("🎰 Active lotteries:\n\n")
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, lottery := range resp.Lotteries {
		sb.WriteString(formatLottery(lottery))
		sb.WriteString("\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"Join 🎟 "+lottery.Prize, callbackJoinPrefix+lottery.ID)))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, sb.String())
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(reply); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send lottery list: %v", err)
	}

	return nil
}

func formatLottery(lottery model.Lottery) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏅 %s (id %s)\n", lottery.Prize, lottery.ID))
	sb.WriteString(fmt.Sprintf("   winners: %d, participants: %d\n",
		lottery.WinnersCount, lottery.Participants))

	if lottery.PointsRequired > 0 {
		sb.WriteString(fmt.Sprintf("   entry: %g points\n", lottery.PointsRequired))
	}

	if lottery.Keyword != "" {
		sb.WriteString(fmt.Sprintf("   keyword: %s\n", lottery.Keyword))
	}

	if lottery.EndTime != nil {
		sb.WriteString(fmt.Sprintf("   ends at: %s\n",
			lottery.EndTime.Format("2006-01-02 15:04:05")))
	}

	return sb.String()
}

func (b *Bot) handleJoinLottery(ctx context.Context, msg *tgbotapi.Message) error {
	lotteryID := strings.TrimSpace(msg.CommandArguments())
	if lotteryID == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: /joinlottery <id>")
		return nil
	}

	resp, err := b.lotteryDomain.Join(ctx, &model.JoinLotteryRequest{
		LotteryID: lotteryID,
		Name:      displayName(msg.From),
	})
	if err != nil {
		return err
	}

	b.replyJoined(ctx, msg.Chat.ID, resp.PointsCharged)
	return nil
}

func (b *Bot) handleJoinCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	lotteryID := strings.TrimPrefix(query.Data, callbackJoinPrefix)
	resp, err := b.lotteryDomain.Join(ctx, &model.JoinLotteryRequest{
		LotteryID: lotteryID,
		Name:      displayName(query.From),
	})
	if err != nil {
		b.replyError(ctx, query.Message.Chat.ID, err)
		return
	}

	b.replyJoined(ctx, query.Message.Chat.ID, resp.PointsCharged)
}

func (b *Bot) replyJoined(ctx context.Context, chatID int64, charged float64) {
	if charged > 0 {
		b.reply(ctx, chatID, fmt.Sprintf("🎟 You are in! %g points were charged.", charged))
	} else {
		b.reply(ctx, chatID, "🎟 You are in!")
	}
}

func (b *Bot) handleForceDraw(ctx context.Context, msg *tgbotapi.Message) error {
	lotteryID := strings.TrimSpace(msg.CommandArguments())
	if lotteryID == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: /forcedraw <id>")
		return nil
	}

	resp, err := b.lotteryDomain.Draw(ctx, &model.DrawLotteryRequest{LotteryID: lotteryID})
	if err != nil {
		return err
	}

	b.reply(ctx, msg.Chat.ID, formatWinners(resp.Lottery, resp.Winners))
	return nil
}

func formatWinners(lottery model.Lottery, winners []model.Winner) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎉 Draw results for %s:\n", lottery.Prize))
	for _, winner := range winners {
		sb.WriteString(fmt.Sprintf("🏆 %s\n", winner.Name))
	}

	if len(winners) == 0 {
		sb.WriteString("Nobody joined, nobody won.")
	}

	return sb.String()
}

func (b *Bot) handleCancelLottery(ctx context.Context, msg *tgbotapi.Message) error {
	lotteryID := strings.TrimSpace(msg.CommandArguments())
	if lotteryID == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: /cancellottery <id>")
		return nil
	}

	if _, err := b.lotteryDomain.Cancel(ctx, &model.CancelLotteryRequest{LotteryID: lotteryID}); err != nil {
		return err
	}

	b.reply(ctx, msg.Chat.ID, "The lottery was cancelled.")
	return nil
}

func (b *Bot) handleAdjustPoints(ctx context.Context, msg *tgbotapi.Message, sign float64) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Usage: /%s <name> <points>", msg.Command()))
		return nil
	}

	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount <= 0 {
		b.reply(ctx, msg.Chat.ID, "Please send a positive number of points")
		return nil
	}

	resp, err := b.pointDomain.AdjustPoints(ctx, &model.AdjustPointsRequest{
		TargetName: args[0],
		Change:     sign * amount,
	})
	if err != nil {
		return err
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"⚖️ %s now has %g points.", resp.User.Name, resp.User.Points))
	return nil
}

func (b *Bot) handleSetSetting(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		b.reply(ctx, msg.Chat.ID, "Usage: /setsetting <name> <value>")
		return nil
	}

	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, "Please send a numeric value")
		return nil
	}

	_, err = b.pointDomain.UpdateGroupSettings(ctx, &model.UpdateGroupSettingsRequest{
		GroupID: msg.Chat.ID,
		Setting: args[0],
		Value:   value,
	})
	if err != nil {
		return err
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("⚙️ %s is now %g for this group.", args[0], value))
	return nil
}

// tryWizardReply feeds the message to the sender's creation dialog if one is
// in progress. "points" and "keyword" go to the type selection step.
func (b *Bot) tryWizardReply(ctx context.Context, msg *tgbotapi.Message) bool {
	if msg.Text == "" {
		return false
	}

	choice := strings.ToLower(strings.TrimSpace(msg.Text))
	if choice == "points" || choice == "keyword" {
		resp, err := b.wizardDomain.SelectType(ctx, &model.SelectWizardTypeRequest{Choice: choice})
		if err == nil {
			b.reply(ctx, msg.Chat.ID, resp.Prompt)
			return true
		}

		if !errors.Is(err, errorx.Error{Code: errorx.NotFound}) &&
			!errors.Is(err, errorx.Error{Code: errorx.BadRequest}) {
			b.replyError(ctx, msg.Chat.ID, err)
			return true
		}
	}

	resp, err := b.wizardDomain.Advance(ctx, &model.AdvanceWizardRequest{Input: msg.Text})
	if err != nil {
		if errors.Is(err, errorx.Error{Code: errorx.NotFound}) {
			return false
		}

		b.replyError(ctx, msg.Chat.ID, err)
		return true
	}

	if resp.Committed {
		b.reply(ctx, msg.Chat.ID, "✅ Lottery created!\n"+formatLottery(*resp.Lottery))
	} else {
		b.reply(ctx, msg.Chat.ID, resp.Prompt)
	}

	return true
}

func (b *Bot) tryKeywordJoin(ctx context.Context, msg *tgbotapi.Message) bool {
	if msg.Text == "" || msg.Chat == nil {
		return false
	}

	resp, err := b.lotteryDomain.JoinByKeyword(ctx, &model.JoinLotteryByKeywordRequest{
		GroupID: msg.Chat.ID,
		Name:    displayName(msg.From),
		Text:    strings.TrimSpace(msg.Text),
	})
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return true
	}

	if !resp.Joined {
		return false
	}

	b.replyJoined(ctx, msg.Chat.ID, resp.PointsCharged)
	return true
}

// awardMessagePoints scores regular group activity. Errors are logged only,
// chat noise about scoring would be worse than a missed point.
func (b *Bot) awardMessagePoints(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || (!msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup()) {
		return
	}

	isMedia := len(msg.Photo) > 0 || msg.Video != nil || msg.Document != nil || msg.Sticker != nil
	if msg.Text == "" && !isMedia {
		return
	}

	if _, err := b.pointDomain.Register(ctx, &model.RegisterUserRequest{
		TelegramID: msg.From.ID,
		Name:       displayName(msg.From),
	}); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot register user: %v", err)
		return
	}

	_, err := b.pointDomain.AwardMessagePoints(ctx, &model.AwardMessagePointsRequest{
		TelegramID: msg.From.ID,
		GroupID:    msg.Chat.ID,
		Text:       msg.Text,
		IsMedia:    isMedia,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot award message points: %v", err)
	}
}
