// Package schedule decides whether an automated reply may be sent to a user
// at a given moment, honoring their quiet hours and weekend preference.
package schedule

import (
	"log/slog"
	"time"
	_ "time/tzdata" // user timezones must resolve in minimal containers

	"github.com/mtlprog/taskpulse/internal/domain"
)

// Skip reasons reported by CanReplyNow.
const (
	ReasonWeekendMode      = "Weekend Mode"
	ReasonOutsideWorkHours = "Outside Work Hours"
)

// Decision is the outcome of a scheduling check.
type Decision struct {
	Allowed bool
	Reason  string
}

// CanReplyNow checks the user's preferences against now.
// A nil settings record places no restriction.
func CanReplyNow(settings *domain.AISettings, now time.Time) Decision {
	if settings == nil {
		return Decision{Allowed: true}
	}

	local := now.In(location(settings.Timezone))

	if !settings.IncludeWeekends {
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return Decision{Reason: ReasonWeekendMode}
		}
	}

	start, end := clock(settings.WorkHoursStart), clock(settings.WorkHoursEnd)
	if start == "" || end == "" {
		return Decision{Allowed: true}
	}

	if !withinWindow(local.Format("15:04"), start, end) {
		return Decision{Reason: ReasonOutsideWorkHours}
	}
	return Decision{Allowed: true}
}

// withinWindow compares zero-padded HH:MM strings. A start after end wraps midnight.
func withinWindow(current, start, end string) bool {
	if start <= end {
		return current >= start && current <= end
	}
	return current >= start || current <= end
}

// clock normalizes a stored time of day to HH:MM, accepting HH:MM:SS.
func clock(v *string) string {
	if v == nil {
		return ""
	}
	s := *v
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}

func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}
