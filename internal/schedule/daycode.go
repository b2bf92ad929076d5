package schedule

import "time"

// Vietnamese weekday shorthand. Monday is "thứ hai" (T2), Sunday is "chủ nhật" (CN).
const (
	Monday    = "T2"
	Tuesday   = "T3"
	Wednesday = "T4"
	Thursday  = "T5"
	Friday    = "T6"
	Saturday  = "T7"
	Sunday    = "CN"
)

// CanonicalDays lists the day codes in display and storage order.
var CanonicalDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayCodes = map[time.Weekday]string{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// DayCode maps a weekday onto its schedule code.
func DayCode(day time.Weekday) string {
	return weekdayCodes[day]
}

// IsDayCode reports whether code is one of the canonical codes.
func IsDayCode(code string) bool {
	return dayRank(code) < len(CanonicalDays)
}

func dayRank(code string) int {
	for i, c := range CanonicalDays {
		if c == code {
			return i
		}
	}
	return len(CanonicalDays)
}
