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

const tuitionDetailSelect = `SELECT t.id, t.class_id, t.student_id, t.amount, t.period, t.status, t.due_date, t.paid_at, t.note, t.created_at,
s.name AS student_name, c.name AS class_name
FROM tuitions t
LEFT JOIN students s ON s.id = t.student_id
LEFT JOIN classes c ON c.id = t.class_id`

// TuitionRepository handles persistence for tuition invoices.
type TuitionRepository struct {
	db *sqlx.DB
}

// NewTuitionRepository constructs the repository.
func NewTuitionRepository(db *sqlx.DB) *TuitionRepository {
	return &TuitionRepository{db: db}
}

// List returns tuitions with student and class names.
func (r *TuitionRepository) List(ctx context.Context, filter models.TuitionFilter) ([]models.TuitionDetail, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("t.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	whereClause := strings.Join(where, " AND ")

	page, size := normalizePage(filter.Page, filter.PageSize, 20, 100)
	offset := (page - 1) * size

	query := fmt.Sprintf("%s WHERE %s ORDER BY t.due_date ASC NULLS LAST, t.created_at DESC LIMIT %d OFFSET %d", tuitionDetailSelect, whereClause, size, offset)
	var rows []models.TuitionDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tuitions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM tuitions t WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count tuitions: %w", err)
	}
	return rows, total, nil
}

// FindByID fetches a tuition by ID.
func (r *TuitionRepository) FindByID(ctx context.Context, id string) (*models.Tuition, error) {
	const query = `SELECT id, class_id, student_id, amount, period, status, due_date, paid_at, note, created_at FROM tuitions WHERE id = $1`
	var tuition models.Tuition
	if err := r.db.GetContext(ctx, &tuition, query, id); err != nil {
		return nil, err
	}
	return &tuition, nil
}

// Create inserts a tuition invoice.
func (r *TuitionRepository) Create(ctx context.Context, tuition *models.Tuition) error {
	if tuition.ID == "" {
		tuition.ID = uuid.NewString()
	}
	if tuition.CreatedAt.IsZero() {
		tuition.CreatedAt = time.Now().UTC()
	}
	if tuition.Status == "" {
		tuition.Status = models.TuitionStatusPending
	}
	const query = `INSERT INTO tuitions (id, class_id, student_id, amount, period, status, due_date, paid_at, note, created_at)
VALUES (:id, :class_id, :student_id, :amount, :period, :status, :due_date, :paid_at, :note, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tuition); err != nil {
		return fmt.Errorf("create tuition: %w", err)
	}
	return nil
}

// MarkPaid records payment for a tuition.
func (r *TuitionRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	const query = `UPDATE tuitions SET status = $1, paid_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.TuitionStatusPaid, paidAt, id); err != nil {
		return fmt.Errorf("mark tuition paid: %w", err)
	}
	return nil
}

// ListOverdue returns pending tuitions due on or before asOf. limit <= 0 returns all.
func (r *TuitionRepository) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error) {
	query := tuitionDetailSelect + ` WHERE t.status = $1 AND t.due_date <= $2 ORDER BY t.due_date ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var rows []models.TuitionDetail
	if err := r.db.SelectContext(ctx, &rows, query, models.TuitionStatusPending, asOf.Format(DateLayout)); err != nil {
		return nil, fmt.Errorf("list overdue tuitions: %w", err)
	}
	return rows, nil
}

// CountOverdue counts pending tuitions due on or before asOf.
func (r *TuitionRepository) CountOverdue(ctx context.Context, asOf time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM tuitions WHERE status = $1 AND due_date <= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.TuitionStatusPending, asOf.Format(DateLayout)); err != nil {
		return 0, fmt.Errorf("count overdue tuitions: %w", err)
	}
	return count, nil
}

// RevenueSummary reads the per-class revenue aggregate view.
func (r *TuitionRepository) RevenueSummary(ctx context.Context) ([]models.RevenueSummary, error) {
	const query = `SELECT class_id, period, total_paid, total_pending, total_overdue, total_expected, student_count
FROM revenue_summary ORDER BY period DESC, class_id ASC`
	var rows []models.RevenueSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("revenue summary: %w", err)
	}
	return rows, nil
}
