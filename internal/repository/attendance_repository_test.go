package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

func TestAttendanceRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 11, 11, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, class_id, date)")).
		WithArgs(sqlmock.AnyArg(), "s1", "c1", "2024-11-11", models.AttendanceStatusPresent, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, class_id, date)")).
		WithArgs(sqlmock.AnyArg(), "s2", "c1", "2024-11-11", models.AttendanceStatusLate, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	records := []models.AttendanceRecord{
		{StudentID: "s1", ClassID: "c1", Date: day, Status: models.AttendanceStatusPresent},
		{StudentID: "s2", ClassID: "c1", Date: day, Status: models.AttendanceStatusLate},
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), records))
	assert.NotEmpty(t, records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.UpsertBatch(context.Background(), []models.AttendanceRecord{{StudentID: "s1", ClassID: "c1", Date: time.Now(), Status: models.AttendanceStatusAbsent}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCountForClassOnDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance WHERE class_id = $1 AND date = $2")).
		WithArgs("c1", "2024-11-13").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountForClassOnDate(context.Background(), "c1", time.Date(2024, 11, 13, 19, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryPerformance(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("FROM attendance_performance").
		WillReturnRows(sqlmock.NewRows([]string{"class_id", "class_name", "present_count", "absent_count", "late_count", "total_attendance_records", "present_rate"}).
			AddRow("c1", "IELTS A", 8, 1, 1, 10, 80.0))

	rows, err := repo.Performance(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].TotalRecords)
	assert.InDelta(t, 80.0, rows[0].PresentRate, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
