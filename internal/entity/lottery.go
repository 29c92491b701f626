package entity

import (
	"database/sql"
	"time"

	"github.com/luckygram/backend/pkg/enum"
)

type LotteryStatusType string

var (
	LotteryActive    = enum.New(LotteryStatusType("active"))
	LotteryCompleted = enum.New(LotteryStatusType("completed"))
	LotteryCancelled = enum.New(LotteryStatusType("cancelled"))
)

type Lottery struct {
	Base

	GroupID   int64 `gorm:"index"`
	CreatorID int64

	Prize           string
	WinnersCount    int
	PointsRequired  float64
	MinParticipants int

	// Keyword, if set, lets users join by sending the keyword as a plain
	// message instead of the explicit join command.
	Keyword sql.NullString

	EndTime sql.NullTime

	Status LotteryStatusType `gorm:"default:active"`
}

type LotteryParticipant struct {
	CreatedAt time.Time

	LotteryID string  `gorm:"primaryKey"`
	Lottery   Lottery `gorm:"foreignKey:LotteryID"`

	UserID int64 `gorm:"primaryKey"`
	User   User  `gorm:"foreignKey:UserID;references:TelegramID"`

	Name     string
	IsWinner bool
}
