package dto

import "github.com/noah-isme/lms-agenda-api/internal/schedule"

// CalendarDay is one column of the weekly timetable.
type CalendarDay struct {
	Date    string                `json:"date"`
	DayCode string                `json:"day_code"`
	IsToday bool                  `json:"is_today"`
	Classes []schedule.Occurrence `json:"classes"`
}

// CalendarWeekResponse is a Monday-first projection of the class schedules.
type CalendarWeekResponse struct {
	WeekStart string        `json:"week_start"`
	WeekEnd   string        `json:"week_end"`
	Days      []CalendarDay `json:"days"`
}
