package model

type IssueInviteCodeRequest struct {
	TelegramID int64 `json:"telegram_id"`
}

type IssueInviteCodeResponse struct {
	Code          string `json:"code"`
	InvitedPeople int64  `json:"invited_people"`
}

type RedeemInviteCodeRequest struct {
	Code        string `json:"code"`
	InviteeID   int64  `json:"invitee_id"`
	InviteeName string `json:"invitee_name"`
}

type RedeemInviteCodeResponse struct {
	InviterID   int64   `json:"inviter_id"`
	InviterName string  `json:"inviter_name"`
	Reward      float64 `json:"reward"`
}
