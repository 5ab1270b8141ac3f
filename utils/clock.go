package utils

import "time"

// Clock resolves the wall-clock offset for the single region the tracker
// serves. The region follows the EU daylight-saving rule: summer time runs
// from 01:00 UTC on the last Sunday of March until 01:00 UTC on the last
// Sunday of October of the same year.
//
// Callers pass the current instant explicitly so everything here stays pure.
type Clock struct {
	WinterOffsetHours int
	SummerOffsetHours int
}

// OffsetHours returns the hours to add to UTC to obtain local wall-clock
// time at the given instant.
func (c Clock) OffsetHours(now time.Time) int {
	now = now.UTC()
	dstStart := lastSunday(now.Year(), time.March).Add(1 * time.Hour)
	dstEnd := lastSunday(now.Year(), time.October).Add(1 * time.Hour)
	if !now.Before(dstStart) && now.Before(dstEnd) {
		return c.SummerOffsetHours
	}
	return c.WinterOffsetHours
}

// lastSunday walks back from the final calendar day of the month until the
// weekday is Sunday. Midnight UTC of that day.
func lastSunday(year int, month time.Month) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// LocalNow shifts the instant into local wall-clock time (still expressed
// as a time.Time in UTC for arithmetic convenience).
func (c Clock) LocalNow(now time.Time) time.Time {
	return now.UTC().Add(time.Duration(c.OffsetHours(now)) * time.Hour)
}

// LocalDate maps a stored UTC timestamp to its logical local calendar date,
// using the offset in force at call time so that a whole query window is
// bucketed consistently.
func (c Clock) LocalDate(ts time.Time, now time.Time) string {
	off := c.OffsetHours(now)
	return ts.UTC().Add(time.Duration(off) * time.Hour).Format("2006-01-02")
}

// LocalToday returns today's local date at midnight (no zone attached).
func (c Clock) LocalToday(now time.Time) time.Time {
	l := c.LocalNow(now)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// DayStartUTC returns the UTC instant at which the given local date begins.
func (c Clock) DayStartUTC(localDate time.Time, now time.Time) time.Time {
	off := c.OffsetHours(now)
	d := time.Date(localDate.Year(), localDate.Month(), localDate.Day(), 0, 0, 0, 0, time.UTC)
	return d.Add(-time.Duration(off) * time.Hour)
}

// TodayWindowUTC bounds the local "today" as a half-open UTC interval.
func (c Clock) TodayWindowUTC(now time.Time) (time.Time, time.Time) {
	start := c.DayStartUTC(c.LocalToday(now), now)
	return start, start.Add(24 * time.Hour)
}

// WeekWindowUTC bounds the trailing 7 local days (today included).
func (c Clock) WeekWindowUTC(now time.Time) (time.Time, time.Time) {
	today := c.LocalToday(now)
	start := c.DayStartUTC(today.AddDate(0, 0, -6), now)
	return start, c.DayStartUTC(today, now).Add(24 * time.Hour)
}

// MonthWindowUTC bounds the current local calendar month up to end of today.
func (c Clock) MonthWindowUTC(now time.Time) (time.Time, time.Time) {
	today := c.LocalToday(now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return c.DayStartUTC(first, now), c.DayStartUTC(today, now).Add(24 * time.Hour)
}
