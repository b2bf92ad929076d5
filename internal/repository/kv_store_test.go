package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

var kvNow = time.Date(2024, 11, 13, 8, 0, 0, 0, time.UTC)

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewKVStore(client)
	store.now = func() time.Time { return kvNow }
	return store
}

func calendarDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestKVClassRoundTrip(t *testing.T) {
	store := newTestKVStore(t)
	ctx := context.Background()
	classes := store.Classes()

	class := &models.Class{Name: "IELTS A", Schedule: strPtr("T2/T4 - 19:00"), Level: strPtr("B2")}
	require.NoError(t, classes.Create(ctx, class))
	require.NotEmpty(t, class.ID)
	assert.True(t, kvNow.Equal(class.CreatedAt))

	loaded, err := classes.FindByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, "IELTS A", loaded.Name)
	assert.Equal(t, "T2/T4 - 19:00", *loaded.Schedule)
	assert.Equal(t, "B2", *loaded.Level)
	assert.True(t, kvNow.Equal(loaded.CreatedAt))

	loaded.Name = "IELTS A+"
	require.NoError(t, classes.Update(ctx, loaded))
	all, err := classes.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "IELTS A+", all[0].Name)

	require.NoError(t, classes.Delete(ctx, class.ID))
	_, err = classes.FindByID(ctx, class.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	all, err = classes.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestKVMissingRecordsReturnErrNoRows(t *testing.T) {
	store := newTestKVStore(t)
	ctx := context.Background()

	_, err := store.Classes().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = store.Students().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = store.Tuitions().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, store.Tuitions().MarkPaid(ctx, "missing", kvNow), sql.ErrNoRows)
}

func TestKVAttendanceUpsertCountsDistinctStudents(t *testing.T) {
	store := newTestKVStore(t)
	ctx := context.Background()
	attendance := store.Attendance()
	session := calendarDay(2024, 11, 11)

	require.NoError(t, attendance.UpsertBatch(ctx, []models.AttendanceRecord{
		{ClassID: "c1", StudentID: "s1", Date: session, Status: models.AttendanceStatusPresent},
		{ClassID: "c1", StudentID: "s2", Date: session, Status: models.AttendanceStatusAbsent},
	}))
	count, err := attendance.CountForClassOnDate(ctx, "c1", session)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, attendance.UpsertBatch(ctx, []models.AttendanceRecord{
		{ClassID: "c1", StudentID: "s1", Date: session, Status: models.AttendanceStatusLate},
	}))
	count, err = attendance.CountForClassOnDate(ctx, "c1", session)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := attendance.List(ctx, models.AttendanceFilter{ClassID: "c1", StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendanceStatusLate, records[0].Status)

	count, err = attendance.CountForClassOnDate(ctx, "c1", calendarDay(2024, 11, 12))
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = attendance.CountForClassOnDate(ctx, "c2", session)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestKVTuitionOverdue(t *testing.T) {
	store := newTestKVStore(t)
	ctx := context.Background()
	tuitions := store.Tuitions()

	require.NoError(t, store.Classes().Create(ctx, &models.Class{ID: "c1", Name: "IELTS A"}))
	require.NoError(t, store.Students().Create(ctx, &models.Student{ID: "s1", ClassID: "c1", Name: "Lan"}))

	dueDates := map[string]time.Time{
		"t-early":  calendarDay(2024, 11, 1),
		"t-today":  calendarDay(2024, 11, 13),
		"t-future": calendarDay(2024, 11, 20),
	}
	for id, due := range dueDates {
		require.NoError(t, tuitions.Create(ctx, &models.Tuition{ID: id, ClassID: "c1", StudentID: "s1", Amount: 1500, Period: "2024-11", DueDate: &due}))
	}
	paidDue := calendarDay(2024, 10, 1)
	require.NoError(t, tuitions.Create(ctx, &models.Tuition{ID: "t-paid", ClassID: "c1", StudentID: "s1", Amount: 1500, Period: "2024-10", Status: models.TuitionStatusPaid, DueDate: &paidDue}))

	count, err := tuitions.CountOverdue(ctx, kvNow)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	limited, err := tuitions.ListOverdue(ctx, kvNow, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "t-early", limited[0].ID)
	require.NotNil(t, limited[0].StudentName)
	assert.Equal(t, "Lan", *limited[0].StudentName)
	assert.Equal(t, "IELTS A", *limited[0].ClassName)

	all, err := tuitions.ListOverdue(ctx, kvNow, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t-today", all[1].ID)

	require.NoError(t, tuitions.MarkPaid(ctx, "t-early", kvNow))
	count, err = tuitions.CountOverdue(ctx, kvNow)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	paid, err := tuitions.FindByID(ctx, "t-early")
	require.NoError(t, err)
	assert.Equal(t, models.TuitionStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
}

func TestKVClassCountStudentsAndPing(t *testing.T) {
	store := newTestKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Students().Create(ctx, &models.Student{ClassID: "c1", Name: "Lan"}))
	require.NoError(t, store.Students().Create(ctx, &models.Student{ClassID: "c1", Name: "Minh"}))
	require.NoError(t, store.Students().Create(ctx, &models.Student{ClassID: "c2", Name: "Hoa"}))

	count, err := store.Classes().CountStudents(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	students, total, err := store.Students().List(ctx, models.StudentFilter{ClassID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Lan", students[0].Name)
}
