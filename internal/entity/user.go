package entity

import "database/sql"

type User struct {
	Base

	TelegramID int64 `gorm:"unique"`
	Name       string

	// Points is mutated only through guarded repository updates, never
	// written directly by domains.
	Points float64

	LastCheckin string

	// InviteCode is lazily assigned on the first invite-link request.
	InviteCode sql.NullString `gorm:"unique"`

	Role string `gorm:"default:USER"`
}

const (
	AdminRole = "ADMIN"
	UserRole  = "USER"
)
