package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

var classRowColumns = []string{"id", "user_id", "name", "schedule", "level", "created_at"}

func TestClassRepositoryListDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows(classRowColumns).
		AddRow("c1", "u1", "IELTS A", "T2/T4 - 08:00", "B2", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, schedule, level, created_at FROM classes WHERE 1=1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "T2/T4 - 08:00", *classes[0].Schedule)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND level = $1 AND (LOWER(name) LIKE $2) ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("B2", "%ielts%").
		WillReturnRows(sqlmock.NewRows(classRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE 1=1 AND level = $1")).
		WithArgs("B2", "%ielts%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	_, total, err := repo.List(context.Background(), models.ClassFilter{Level: "B2", Search: "IELTS", Page: 2, PageSize: 10, SortBy: "created_at", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("FROM classes WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Grammar", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{Name: "Grammar", Schedule: strPtr("T5 - 17:00")}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.NotEmpty(t, class.ID)
	assert.False(t, class.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCountStudents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE class_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountStudents(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
