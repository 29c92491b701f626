package entity

type Invitation struct {
	Base

	InviterID int64
	Inviter   User `gorm:"foreignKey:InviterID;references:TelegramID"`

	// InviteeID is globally unique: a user can be the invitee of at most one
	// invitation ever.
	InviteeID int64 `gorm:"unique"`

	Rewarded bool
}
