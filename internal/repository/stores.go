package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

// ClassStore persists classes. Missing records surface as sql.ErrNoRows on both backends.
type ClassStore interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	ListAll(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, classID string) (int, error)
}

// StudentStore persists students.
type StudentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// AttendanceStore persists attendance marks and their per-class aggregate.
type AttendanceStore interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error
	CountForClassOnDate(ctx context.Context, classID string, date time.Time) (int, error)
	Performance(ctx context.Context) ([]models.AttendancePerformance, error)
}

// TuitionStore persists invoices and their revenue aggregates.
type TuitionStore interface {
	List(ctx context.Context, filter models.TuitionFilter) ([]models.TuitionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Tuition, error)
	Create(ctx context.Context, tuition *models.Tuition) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int, error)
	RevenueSummary(ctx context.Context) ([]models.RevenueSummary, error)
}

var (
	_ ClassStore      = (*ClassRepository)(nil)
	_ ClassStore      = (*KVClassRepository)(nil)
	_ StudentStore    = (*StudentRepository)(nil)
	_ StudentStore    = (*KVStudentRepository)(nil)
	_ AttendanceStore = (*AttendanceRepository)(nil)
	_ AttendanceStore = (*KVAttendanceRepository)(nil)
	_ TuitionStore    = (*TuitionRepository)(nil)
	_ TuitionStore    = (*KVTuitionRepository)(nil)
)

// Stores bundles one backend's repositories.
type Stores struct {
	Classes    ClassStore
	Students   StudentStore
	Attendance AttendanceStore
	Tuitions   TuitionStore
}

// NewSQLStores backs every store with PostgreSQL.
func NewSQLStores(db *sqlx.DB) Stores {
	return Stores{
		Classes:    NewClassRepository(db),
		Students:   NewStudentRepository(db),
		Attendance: NewAttendanceRepository(db),
		Tuitions:   NewTuitionRepository(db),
	}
}

// Stores backs every store with the key-value backend.
func (s *KVStore) Stores() Stores {
	return Stores{
		Classes:    s.Classes(),
		Students:   s.Students(),
		Attendance: s.Attendance(),
		Tuitions:   s.Tuitions(),
	}
}
