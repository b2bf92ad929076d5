package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's attendance for a class session. A student has at
// most one record per class and date.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceFilter scopes attendance listings.
type AttendanceFilter struct {
	ClassID   string
	StudentID string
	Date      *time.Time
}

// AttendancePerformance aggregates attendance for a class.
type AttendancePerformance struct {
	ClassID      string  `db:"class_id" json:"class_id"`
	ClassName    string  `db:"class_name" json:"class_name"`
	PresentCount int     `db:"present_count" json:"present_count"`
	AbsentCount  int     `db:"absent_count" json:"absent_count"`
	LateCount    int     `db:"late_count" json:"late_count"`
	TotalRecords int     `db:"total_attendance_records" json:"total_attendance_records"`
	PresentRate  float64 `db:"present_rate" json:"present_rate"`
}
