package model

import "github.com/luckygram/backend/internal/entity"

// Snapshot is the full export of the durable store, consumed by the external
// backup collaborator.
type Snapshot struct {
	Users         []entity.User               `json:"users"`
	Invitations   []entity.Invitation         `json:"invitations"`
	Lotteries     []entity.Lottery            `json:"lotteries"`
	Participants  []entity.LotteryParticipant `json:"participants"`
	GroupSettings []entity.GroupSettings      `json:"group_settings"`
}
