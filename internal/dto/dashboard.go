package dto

import (
	"time"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	"github.com/noah-isme/lms-agenda-api/internal/schedule"
)

// AgendaItem is a class meeting today.
type AgendaItem struct {
	ClassID string  `json:"class_id"`
	Name    string  `json:"name"`
	Level   *string `json:"level,omitempty"`
	Time    string  `json:"time"`
	Due     bool    `json:"due"`
}

// TodayDashboardResponse is today's agenda with its alerts. Degraded lists store
// lookups that failed and were treated as empty.
type TodayDashboardResponse struct {
	Date     string           `json:"date"`
	DayCode  string           `json:"day_code"`
	Agenda   []AgendaItem     `json:"agenda"`
	Alerts   []schedule.Alert `json:"alerts"`
	Degraded []string         `json:"degraded,omitempty"`
}

// ManagementTotals are headline figures derived from the revenue and attendance views.
type ManagementTotals struct {
	TotalExpected         int64   `json:"total_expected"`
	TotalPaid             int64   `json:"total_paid"`
	TotalPending          int64   `json:"total_pending"`
	TotalOverdue          int64   `json:"total_overdue"`
	CollectionRate        float64 `json:"collection_rate"`
	AverageAttendanceRate float64 `json:"average_attendance_rate"`
	OverdueCount          int     `json:"overdue_count"`
}

// ManagementSummaryResponse aggregates revenue, attendance and overdue tuition.
type ManagementSummaryResponse struct {
	Totals                ManagementTotals               `json:"totals"`
	Revenue               []models.RevenueSummary        `json:"revenue"`
	AttendancePerformance []models.AttendancePerformance `json:"attendance_performance"`
	OverdueTuitions       []models.TuitionDetail         `json:"overdue_tuitions"`
	GeneratedAt           time.Time                      `json:"generated_at"`
}
