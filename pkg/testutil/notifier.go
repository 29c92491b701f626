package testutil

import (
	"context"
	"sync"

	"github.com/luckygram/backend/internal/model"
)

// MockNotifier records announcements instead of sending them.
type MockNotifier struct {
	mutex         sync.Mutex
	Announcements []model.DrawLotteryResponse
	Err           error
}

func (m *MockNotifier) AnnounceWinners(
	ctx context.Context, lottery model.Lottery, winners []model.Winner,
) error {
	if m.Err != nil {
		return m.Err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Announcements = append(m.Announcements, model.DrawLotteryResponse{
		Lottery: lottery,
		Winners: winners,
	})
	return nil
}
