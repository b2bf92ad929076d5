package models

import "time"

// TuitionStatus is the payment state of a tuition invoice.
type TuitionStatus string

const (
	TuitionStatusPending TuitionStatus = "pending"
	TuitionStatusPaid    TuitionStatus = "paid"
	TuitionStatusOverdue TuitionStatus = "overdue"
)

// Valid returns true when the status is a supported value.
func (s TuitionStatus) Valid() bool {
	switch s {
	case TuitionStatusPending, TuitionStatusPaid, TuitionStatusOverdue:
		return true
	default:
		return false
	}
}

// Tuition is an invoice issued to a student for a billing period.
type Tuition struct {
	ID        string        `db:"id" json:"id"`
	ClassID   string        `db:"class_id" json:"class_id"`
	StudentID string        `db:"student_id" json:"student_id"`
	Amount    int64         `db:"amount" json:"amount"`
	Period    string        `db:"period" json:"period"`
	Status    TuitionStatus `db:"status" json:"status"`
	DueDate   *time.Time    `db:"due_date" json:"due_date,omitempty"`
	PaidAt    *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	Note      *string       `db:"note" json:"note,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// TuitionDetail joins a tuition with its student and class names.
type TuitionDetail struct {
	Tuition
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
	ClassName   *string `db:"class_name" json:"class_name,omitempty"`
}

// TuitionFilter scopes tuition listings.
type TuitionFilter struct {
	Status   *TuitionStatus
	ClassID  string
	Page     int
	PageSize int
}

// RevenueSummary aggregates tuition amounts for a class and period.
type RevenueSummary struct {
	ClassID       string `db:"class_id" json:"class_id"`
	Period        string `db:"period" json:"period"`
	TotalPaid     int64  `db:"total_paid" json:"total_paid"`
	TotalPending  int64  `db:"total_pending" json:"total_pending"`
	TotalOverdue  int64  `db:"total_overdue" json:"total_overdue"`
	TotalExpected int64  `db:"total_expected" json:"total_expected"`
	StudentCount  int    `db:"student_count" json:"student_count"`
}
