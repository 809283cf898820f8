// Package localtime converts instants to the fixed UTC+3 wall clock the
// application's users see, and computes the next instant a given wall-clock
// time occurs.
package localtime

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// OffsetSeconds is the fixed offset from UTC used for all local times.
// The region observes UTC+3 year-round, so no tz database is consulted.
const OffsetSeconds = 3 * 60 * 60

// Zone is the fixed local zone.
var Zone = time.FixedZone("+03", OffsetSeconds)

// ErrInvalidWallClock is returned when a wall-clock string is not HH:MM.
var ErrInvalidWallClock = errors.New("wall clock must be HH:MM")

// isoLayout renders the offset literally as +03:00 instead of "Z"-style.
const isoLayout = "2006-01-02T15:04:05-07:00"

// ISOString formats t in the local zone, e.g. 2025-04-01T15:00:00+03:00.
// The zero time formats as an empty string.
func ISOString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Zone).Format(isoLayout)
}

// WallClock returns the local HH:MM of t.
func WallClock(t time.Time) string {
	return t.In(Zone).Format("15:04")
}

// ParseWallClock parses "H:MM" or "HH:MM" into hour and minute.
func ParseWallClock(s string) (int, int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !isDigits(hh) || !isDigits(mm) {
		return 0, 0, ErrInvalidWallClock
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidWallClock
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidWallClock
	}

	return hour, minute, nil
}

// isDigits rejects the sign prefixes strconv.Atoi would accept.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NextOccurrence returns the first instant at or after now whose local wall
// clock reads hour:minute:00. When today's occurrence is already in the past
// the occurrence on the following local day is returned.
func NextOccurrence(hour, minute int, now time.Time) time.Time {
	local := now.In(Zone)
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, Zone)
	if target.Before(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}
