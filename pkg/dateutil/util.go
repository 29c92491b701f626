package dateutil

import "time"

const dayLayout = "2006-01-02"

// Date formats t as a calendar day, the granularity used to track daily
// check-ins.
func Date(t time.Time) string {
	return t.Format(dayLayout)
}
