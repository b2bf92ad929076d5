package repository

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

// FilterOverdue keeps pending tuitions whose due date is on or before asOf's calendar day.
func FilterOverdue(tuitions []models.Tuition, asOf time.Time) []models.Tuition {
	cutoff := asOf.Format(DateLayout)
	out := make([]models.Tuition, 0)
	for _, t := range tuitions {
		if t.Status != models.TuitionStatusPending || t.DueDate == nil {
			continue
		}
		if t.DueDate.Format(DateLayout) <= cutoff {
			out = append(out, t)
		}
	}
	return out
}

// SummarizeRevenue groups tuition amounts by class and period. Pending tuitions past
// their due date count as overdue, matching the revenue_summary view.
func SummarizeRevenue(tuitions []models.Tuition, asOf time.Time) []models.RevenueSummary {
	type groupKey struct{ classID, period string }
	cutoff := asOf.Format(DateLayout)
	groups := make(map[groupKey]*models.RevenueSummary)
	students := make(map[groupKey]map[string]struct{})

	for _, t := range tuitions {
		key := groupKey{t.ClassID, t.Period}
		summary, ok := groups[key]
		if !ok {
			summary = &models.RevenueSummary{ClassID: t.ClassID, Period: t.Period}
			groups[key] = summary
			students[key] = make(map[string]struct{})
		}
		summary.TotalExpected += t.Amount
		switch {
		case t.Status == models.TuitionStatusPaid:
			summary.TotalPaid += t.Amount
		case t.Status == models.TuitionStatusOverdue,
			t.DueDate != nil && t.DueDate.Format(DateLayout) <= cutoff:
			summary.TotalOverdue += t.Amount
		default:
			summary.TotalPending += t.Amount
		}
		students[key][t.StudentID] = struct{}{}
	}

	out := make([]models.RevenueSummary, 0, len(groups))
	for key, summary := range groups {
		summary.StudentCount = len(students[key])
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period > out[j].Period
		}
		return out[i].ClassID < out[j].ClassID
	})
	return out
}

// SummarizeAttendance counts statuses per class and derives the present rate as a
// percentage rounded to two decimals. Classes without records are omitted.
func SummarizeAttendance(records []models.AttendanceRecord, classes []models.Class) []models.AttendancePerformance {
	names := make(map[string]string, len(classes))
	for _, c := range classes {
		names[c.ID] = c.Name
	}

	byClass := make(map[string]*models.AttendancePerformance)
	for _, rec := range records {
		perf, ok := byClass[rec.ClassID]
		if !ok {
			perf = &models.AttendancePerformance{ClassID: rec.ClassID, ClassName: names[rec.ClassID]}
			byClass[rec.ClassID] = perf
		}
		perf.TotalRecords++
		switch rec.Status {
		case models.AttendanceStatusPresent:
			perf.PresentCount++
		case models.AttendanceStatusAbsent:
			perf.AbsentCount++
		case models.AttendanceStatusLate:
			perf.LateCount++
		}
	}

	out := make([]models.AttendancePerformance, 0, len(byClass))
	for _, perf := range byClass {
		if perf.TotalRecords > 0 {
			perf.PresentRate = math.Round(float64(perf.PresentCount)*10000/float64(perf.TotalRecords)) / 100
		}
		out = append(out, *perf)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassName != out[j].ClassName {
			return out[i].ClassName < out[j].ClassName
		}
		return out[i].ClassID < out[j].ClassID
	})
	return out
}
