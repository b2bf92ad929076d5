package schedule

import (
	"sort"
	"time"
)

// ClassSource is the minimal view of a class record the engine reads.
type ClassSource struct {
	ID       string
	Name     string
	Level    *string
	Schedule *string
}

// Occurrence places a class at a time on a given weekday.
type Occurrence struct {
	DayCode string  `json:"day_code"`
	Time    string  `json:"time"`
	ClassID string  `json:"class_id"`
	Name    string  `json:"name"`
	Level   *string `json:"level,omitempty"`
}

// Cell is one calendar day of a projected week.
type Cell struct {
	Date        time.Time    `json:"date"`
	Code        string       `json:"code"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Week is a Monday-first projection of seven cells.
type Week struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  [7]Cell   `json:"days"`
}

// DaysPerWeek is the length of a projected week.
const DaysPerWeek = 7

// WeekStart returns midnight of the Monday of ref's week, in ref's location.
func WeekStart(ref time.Time) time.Time {
	y, m, d := ref.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
	offset := (int(midnight.Weekday()) + 6) % DaysPerWeek
	return midnight.AddDate(0, 0, -offset)
}

// ShiftWeek moves ref by n whole weeks.
func ShiftWeek(ref time.Time, n int) time.Time {
	return ref.AddDate(0, 0, n*DaysPerWeek)
}

// Occurrences expands every class schedule into occurrences, preserving class order.
// A day listed twice in one schedule yields a single occurrence.
func Occurrences(classes []ClassSource) []Occurrence {
	var out []Occurrence
	for _, class := range classes {
		seen := make(map[string]struct{})
		for _, slot := range Parse(class.Schedule) {
			if _, ok := seen[slot.DayCode]; ok {
				continue
			}
			seen[slot.DayCode] = struct{}{}
			out = append(out, Occurrence{
				DayCode: slot.DayCode,
				Time:    slot.Time,
				ClassID: class.ID,
				Name:    class.Name,
				Level:   class.Level,
			})
		}
	}
	return out
}

// ProjectWeek lays the classes' occurrences onto the seven days of ref's week.
func ProjectWeek(ref time.Time, classes []ClassSource) Week {
	start := WeekStart(ref)
	week := Week{Start: start, End: start.AddDate(0, 0, DaysPerWeek-1)}
	all := Occurrences(classes)

	for i := 0; i < DaysPerWeek; i++ {
		date := start.AddDate(0, 0, i)
		code := DayCode(date.Weekday())
		week.Days[i] = Cell{Date: date, Code: code, Occurrences: filterDay(all, code)}
	}
	return week
}

func filterDay(all []Occurrence, code string) []Occurrence {
	day := make([]Occurrence, 0)
	for _, occ := range all {
		if occ.DayCode == code {
			day = append(day, occ)
		}
	}
	sortByTime(day)
	return day
}

func sortByTime(occurrences []Occurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Time < occurrences[j].Time
	})
}
