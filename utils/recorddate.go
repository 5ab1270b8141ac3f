package utils

import (
	"strings"
	"time"
)

// YesterdayToken is the only relative date the write path accepts.
const YesterdayToken = "yesterday"

// ParseRecordDate validates a user-supplied logical date for a backdated
// entry. Accepted input is "yesterday" or a strict YYYY-MM-DD literal no
// later than today and no more than backdateLimitDays local days in the
// past (the boundary day itself is accepted).
//
// Any rejection returns nil so the caller falls back to "use the current
// instant"; a bad date must never fail the write. Accepted dates are
// pinned to local noon, which keeps them unambiguous across DST shifts,
// and returned as the UTC instant the store expects.
func ParseRecordDate(input string, now time.Time, clock Clock, backdateLimitDays int) *time.Time {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}

	off := clock.OffsetHours(now)
	today := clock.LocalToday(now)

	var target time.Time
	if input == YesterdayToken {
		target = today.AddDate(0, 0, -1)
	} else {
		d, err := time.Parse("2006-01-02", input)
		if err != nil {
			return nil
		}
		target = d
	}

	if target.After(today) {
		return nil
	}
	if target.Before(today.AddDate(0, 0, -backdateLimitDays)) {
		return nil
	}

	utc := time.Date(target.Year(), target.Month(), target.Day(), 12, 0, 0, 0, time.UTC).
		Add(-time.Duration(off) * time.Hour)
	return &utc
}
