package model

import (
	"github.com/luckygram/backend/internal/entity"
)

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		TelegramID: user.TelegramID,
		Name:       user.Name,
		Points:     user.Points,
	}
}

func ConvertLottery(lottery *entity.Lottery, participants int64) Lottery {
	if lottery == nil {
		return Lottery{}
	}

	result := Lottery{
		ID:              lottery.ID,
		GroupID:         lottery.GroupID,
		CreatorID:       lottery.CreatorID,
		Prize:           lottery.Prize,
		WinnersCount:    lottery.WinnersCount,
		PointsRequired:  lottery.PointsRequired,
		MinParticipants: lottery.MinParticipants,
		Status:          string(lottery.Status),
		Participants:    participants,
	}

	if lottery.Keyword.Valid {
		result.Keyword = lottery.Keyword.String
	}

	if lottery.EndTime.Valid {
		endTime := lottery.EndTime.Time
		result.EndTime = &endTime
	}

	return result
}
