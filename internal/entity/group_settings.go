package entity

import "time"

// GroupSettings overrides the default point economy for a single chat group.
type GroupSettings struct {
	GroupID   int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	MinMessageLength int
	PointsPerMessage float64
	PointsPerMedia   float64
	DailyCheckin     float64
	InviteReward     float64
}
