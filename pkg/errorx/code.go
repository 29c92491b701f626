package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Internal         Code = 100007
	Unavailable      Code = 100008

	// Point codes
	UnknownUser        Code = 200001
	InsufficientPoints Code = 200002
	AlreadyCheckedIn   Code = 200003

	// Lottery codes
	AlreadyJoined Code = 300001
	LotteryClosed Code = 300002
	NotActive     Code = 300003
	BelowMinimum  Code = 300004
	AlreadyClosed Code = 300005

	// Invitation codes
	InvalidCode    Code = 400001
	SelfInvite     Code = 400002
	AlreadyInvited Code = 400003
)
