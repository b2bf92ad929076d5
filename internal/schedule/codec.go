package schedule

import (
	"regexp"
	"sort"
	"strings"
)

// Slot is a single (day, time) pair extracted from a schedule string.
type Slot struct {
	DayCode string `json:"day_code"`
	Time    string `json:"time"`
}

var daySeparator = regexp.MustCompile(`[/,]`)

// Parse reads the free-text "<days> - HH:MM" representation of a class schedule.
// Input that does not fit the grammar yields no slots rather than an error.
func Parse(raw *string) []Slot {
	if raw == nil {
		return nil
	}
	return ParseString(*raw)
}

// ParseString is Parse for a plain string.
func ParseString(raw string) []Slot {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) < 2 {
		return nil
	}
	timePart := strings.TrimSpace(parts[1])
	tokens := daySeparator.Split(strings.TrimSpace(parts[0]), -1)

	slots := make([]Slot, 0, len(tokens))
	for _, token := range tokens {
		slots = append(slots, Slot{DayCode: strings.TrimSpace(token), Time: timePart})
	}
	return slots
}

// Format renders days and time back into the wire format. The " - HH:MM" suffix is
// only written when a time is set.
func Format(days []string, time string) string {
	joined := strings.Join(days, "/")
	time = strings.TrimSpace(time)
	if time == "" {
		return joined
	}
	return joined + " - " + time
}

// ToggleDay adds day to selected when absent and removes it otherwise. The result is
// ordered canonically, not by insertion.
func ToggleDay(selected []string, day string) []string {
	next := make([]string, 0, len(selected)+1)
	found := false
	for _, d := range selected {
		if d == day {
			found = true
			continue
		}
		next = append(next, d)
	}
	if !found {
		next = append(next, day)
	}
	SortDays(next)
	return next
}

// SortDays orders day codes T2..T7, CN. Unknown codes keep their relative order at the end.
func SortDays(days []string) {
	sort.SliceStable(days, func(i, j int) bool {
		return dayRank(days[i]) < dayRank(days[j])
	})
}

// Normalize re-renders a schedule with canonically ordered, de-duplicated days. Empty
// day tokens are dropped.
// ok is false when raw does not parse, in which case the caller keeps raw as typed.
func Normalize(raw string) (string, bool) {
	slots := ParseString(raw)
	if len(slots) == 0 {
		return raw, false
	}
	seen := make(map[string]struct{}, len(slots))
	days := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.DayCode == "" {
			continue
		}
		if _, ok := seen[slot.DayCode]; ok {
			continue
		}
		seen[slot.DayCode] = struct{}{}
		days = append(days, slot.DayCode)
	}
	if len(days) == 0 {
		return raw, false
	}
	SortDays(days)
	return Format(days, slots[0].Time), true
}
