package service

import (
	"log/slog"
	"time"
	_ "time/tzdata"
)

// assignmentDeadlineLayout renders deadlines in assignment messages.
const assignmentDeadlineLayout = "Mon, Jan 2 2006 15:04 MST"

// FormatDeadline renders a deadline in the assignee's timezone. Unknown
// timezones fall back to UTC.
func FormatDeadline(deadline time.Time, timezone string) string {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			slog.Warn("unknown timezone, formatting deadline in UTC", "timezone", timezone)
		} else {
			loc = l
		}
	}
	return deadline.In(loc).Format(assignmentDeadlineLayout)
}
