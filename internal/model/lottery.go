package model

import "time"

type Lottery struct {
	ID              string     `json:"id"`
	GroupID         int64      `json:"group_id"`
	CreatorID       int64      `json:"creator_id"`
	Prize           string     `json:"prize"`
	WinnersCount    int        `json:"winners_count"`
	PointsRequired  float64    `json:"points_required"`
	MinParticipants int        `json:"min_participants"`
	Keyword         string     `json:"keyword,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Status          string     `json:"status"`
	Participants    int64      `json:"participants"`
}

type CreateLotteryRequest struct {
	GroupID         int64   `json:"group_id"`
	Prize           string  `json:"prize"`
	WinnersCount    int     `json:"winners_count"`
	PointsRequired  float64 `json:"points_required"`
	MinParticipants int     `json:"min_participants"`
	Keyword         string  `json:"keyword"`
	DurationHours   int     `json:"duration_hours"`
}

type CreateLotteryResponse struct {
	Lottery Lottery `json:"lottery"`
}

type GetLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type GetLotteryResponse struct {
	Lottery Lottery `json:"lottery"`
}

type ListActiveLotteriesRequest struct {
	GroupID int64 `json:"group_id"`
}

type ListActiveLotteriesResponse struct {
	Lotteries []Lottery `json:"lotteries"`
}

type JoinLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
	Name      string `json:"name"`
}

type JoinLotteryResponse struct {
	PointsCharged float64 `json:"points_charged"`
}

type JoinLotteryByKeywordRequest struct {
	GroupID int64  `json:"group_id"`
	Name    string `json:"name"`
	Text    string `json:"text"`
}

type JoinLotteryByKeywordResponse struct {
	Joined        bool    `json:"joined"`
	LotteryID     string  `json:"lottery_id,omitempty"`
	PointsCharged float64 `json:"points_charged"`
}

type Winner struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type DrawLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type DrawLotteryResponse struct {
	Lottery Lottery  `json:"lottery"`
	Winners []Winner `json:"winners"`
}

type CancelLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type CancelLotteryResponse struct{}
