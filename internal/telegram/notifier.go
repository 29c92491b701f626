package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/luckygram/backend/internal/model"
)

// Notifier announces draw results to the lottery's group.
type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) AnnounceWinners(
	ctx context.Context, lottery model.Lottery, winners []model.Winner,
) error {
	_, err := n.api.Send(tgbotapi.NewMessage(lottery.GroupID, formatWinners(lottery, winners)))
	return err
}
