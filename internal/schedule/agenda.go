package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LatenessBuffer is how long before a class starts attendance becomes due.
const LatenessBuffer = 15 * time.Minute

// startClock reads the leading "H[:MM]" of a schedule time, so "19:00-21:00" starts at 19:00.
var startClock = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?`)

// Today returns the occurrences falling on now's weekday, ordered by time.
func Today(classes []ClassSource, now time.Time) []Occurrence {
	return filterDay(Occurrences(classes), DayCode(now.Weekday()))
}

// StartOn resolves the occurrence's HH:MM on day's calendar date, in day's location.
func StartOn(occ Occurrence, day time.Time) (time.Time, bool) {
	hour, minute, ok := leadingClock(occ.Time)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location()), true
}

// IsDue reports whether attendance for occ should have been taken by now.
func IsDue(occ Occurrence, now time.Time) bool {
	start, ok := StartOn(occ, now)
	if !ok {
		return false
	}
	return !now.Before(start.Add(-LatenessBuffer))
}

// parseClock accepts "H:MM", "HH:MM" or a bare hour.
func parseClock(raw string) (int, int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(raw, ":", 2)
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute := 0
	if len(parts) == 2 {
		minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}

func leadingClock(raw string) (int, int, bool) {
	m := startClock.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// ValidClock reports whether raw is exactly a wall-clock time. Used to validate form input.
func ValidClock(raw string) bool {
	_, _, ok := parseClock(raw)
	return ok
}
