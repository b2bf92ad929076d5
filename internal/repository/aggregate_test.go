package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFilterOverdue(t *testing.T) {
	asOf := time.Date(2024, 11, 13, 18, 0, 0, 0, time.UTC)
	tuitions := []models.Tuition{
		{ID: "due-today", Status: models.TuitionStatusPending, DueDate: day(2024, 11, 13)},
		{ID: "past", Status: models.TuitionStatusPending, DueDate: day(2024, 10, 1)},
		{ID: "future", Status: models.TuitionStatusPending, DueDate: day(2024, 11, 14)},
		{ID: "paid", Status: models.TuitionStatusPaid, DueDate: day(2024, 10, 1)},
		{ID: "no-due", Status: models.TuitionStatusPending},
	}

	overdue := FilterOverdue(tuitions, asOf)
	ids := make([]string, 0, len(overdue))
	for _, t := range overdue {
		ids = append(ids, t.ID)
	}
	assert.Equal(t, []string{"due-today", "past"}, ids)
}

func TestSummarizeRevenue(t *testing.T) {
	asOf := time.Date(2024, 11, 13, 0, 0, 0, 0, time.UTC)
	tuitions := []models.Tuition{
		{ClassID: "c1", StudentID: "s1", Period: "2024-11", Amount: 100, Status: models.TuitionStatusPaid},
		{ClassID: "c1", StudentID: "s2", Period: "2024-11", Amount: 100, Status: models.TuitionStatusPending, DueDate: day(2024, 11, 30)},
		{ClassID: "c1", StudentID: "s3", Period: "2024-11", Amount: 100, Status: models.TuitionStatusPending, DueDate: day(2024, 11, 1)},
		{ClassID: "c1", StudentID: "s3", Period: "2024-10", Amount: 80, Status: models.TuitionStatusOverdue},
	}

	summary := SummarizeRevenue(tuitions, asOf)
	require.Len(t, summary, 2)
	assert.Equal(t, "2024-11", summary[0].Period)
	assert.Equal(t, int64(100), summary[0].TotalPaid)
	assert.Equal(t, int64(100), summary[0].TotalPending)
	assert.Equal(t, int64(100), summary[0].TotalOverdue)
	assert.Equal(t, int64(300), summary[0].TotalExpected)
	assert.Equal(t, 3, summary[0].StudentCount)
	assert.Equal(t, int64(80), summary[1].TotalOverdue)
	assert.Equal(t, 1, summary[1].StudentCount)
}

func TestSummarizeAttendance(t *testing.T) {
	classes := []models.Class{{ID: "c1", Name: "IELTS A"}, {ID: "c2", Name: "Grammar"}}
	records := []models.AttendanceRecord{
		{ClassID: "c1", Status: models.AttendanceStatusPresent},
		{ClassID: "c1", Status: models.AttendanceStatusPresent},
		{ClassID: "c1", Status: models.AttendanceStatusLate},
		{ClassID: "c2", Status: models.AttendanceStatusAbsent},
	}

	perf := SummarizeAttendance(records, classes)
	require.Len(t, perf, 2)
	assert.Equal(t, "Grammar", perf[0].ClassName)
	assert.Zero(t, perf[0].PresentRate)
	assert.Equal(t, "IELTS A", perf[1].ClassName)
	assert.Equal(t, 3, perf[1].TotalRecords)
	assert.InDelta(t, 66.67, perf[1].PresentRate, 0.001)
}

func TestAttendanceKeys(t *testing.T) {
	date := time.Date(2024, 11, 13, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, "attendance:c1:2024-11-13:s1", attendanceKey("c1", date, "s1"))
	assert.Equal(t, "index:attendance:c1:2024-11-13", attendanceDayIndex("c1", date))
	assert.Equal(t, "class:c1", classKey("c1"))
}

func TestPageSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, pageSlice(items, 2, 2, 20, 100))
	assert.Equal(t, []int{}, pageSlice(items, 4, 2, 20, 100))
	assert.Equal(t, items, pageSlice(items, 0, 0, 20, 100))
}
