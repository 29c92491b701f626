package domain

import (
	"context"

	"github.com/luckygram/backend/internal/model"
)

// Notifier delivers outbound announcements to the chat group. The telegram
// package provides the real implementation.
type Notifier interface {
	AnnounceWinners(ctx context.Context, lottery model.Lottery, winners []model.Winner) error
}
