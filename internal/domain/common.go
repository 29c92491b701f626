package domain

import (
	"strings"

	"github.com/luckygram/backend/pkg/errorx"
)

// errStorageUnavailable is returned whenever the durable store fails for a
// reason other than a missing record. Callers own the retry policy.
var errStorageUnavailable = errorx.New(errorx.Unavailable, "Storage is temporarily unavailable")

// isUniqueViolation reports whether an insert failed on a unique constraint.
// Both supported drivers are matched by message since gorm translates neither.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") // mysql
}
