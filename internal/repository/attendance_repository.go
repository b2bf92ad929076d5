package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

// DateLayout is the calendar date format used for DATE columns and store keys.
const DateLayout = "2006-01-02"

// AttendanceRepository handles persistence for per-session attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date.Format(DateLayout))
	}

	query := fmt.Sprintf(`SELECT id, student_id, class_id, date, status, created_at FROM attendance WHERE %s ORDER BY date DESC, student_id ASC`, strings.Join(where, " AND "))
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// UpsertBatch writes all records in one transaction, replacing the status of any
// existing (student, class, date) row.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance (id, student_id, class_id, date, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id, class_id, date)
DO UPDATE SET status = EXCLUDED.status`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.StudentID, rec.ClassID, rec.Date.Format(DateLayout), rec.Status, rec.CreatedAt); err != nil {
			return fmt.Errorf("upsert attendance for student %s: %w", rec.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance batch: %w", err)
	}
	commit = true
	return nil
}

// CountForClassOnDate returns how many attendance records exist for a class on a date.
func (r *AttendanceRepository) CountForClassOnDate(ctx context.Context, classID string, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance WHERE class_id = $1 AND date = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, date.Format(DateLayout)); err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}

// Performance reads the per-class attendance aggregate view.
func (r *AttendanceRepository) Performance(ctx context.Context) ([]models.AttendancePerformance, error) {
	const query = `SELECT class_id, class_name, present_count, absent_count, late_count, total_attendance_records, present_rate
FROM attendance_performance ORDER BY class_name ASC`
	var rows []models.AttendancePerformance
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("attendance performance: %w", err)
	}
	return rows, nil
}
