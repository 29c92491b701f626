package model

type User struct {
	TelegramID int64   `json:"telegram_id"`
	Name       string  `json:"name"`
	Points     float64 `json:"points"`
}

type RegisterUserRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Name       string `json:"name"`
}

type RegisterUserResponse struct {
	User    User `json:"user"`
	Created bool `json:"created"`
}

type GetBalanceRequest struct {
	TelegramID int64 `json:"telegram_id"`
}

type GetBalanceResponse struct {
	User User `json:"user"`
}

type DailyCheckinRequest struct {
	TelegramID int64 `json:"telegram_id"`
	GroupID    int64 `json:"group_id"`
}

type DailyCheckinResponse struct {
	Awarded float64 `json:"awarded"`
	Balance float64 `json:"balance"`
}

type AwardMessagePointsRequest struct {
	TelegramID int64  `json:"telegram_id"`
	GroupID    int64  `json:"group_id"`
	Text       string `json:"text"`
	IsMedia    bool   `json:"is_media"`
}

type AwardMessagePointsResponse struct {
	Awarded float64 `json:"awarded"`
}

type AdjustPointsRequest struct {
	TargetName string  `json:"target_name"`
	Change     float64 `json:"change"`
}

type AdjustPointsResponse struct {
	User User `json:"user"`
}

type UpdateGroupSettingsRequest struct {
	GroupID int64   `json:"group_id"`
	Setting string  `json:"setting"`
	Value   float64 `json:"value"`
}

type UpdateGroupSettingsResponse struct{}

type LeaderboardEntry struct {
	User  User    `json:"user"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
}

type GetLeaderboardRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetLeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Total       int64              `json:"total"`
}
