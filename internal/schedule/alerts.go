package schedule

import (
	"fmt"
	"time"
)

// AlertKind classifies alert entries.
type AlertKind string

const (
	AlertMissingAttendance AlertKind = "missing-attendance"
	AlertTuitionOverdue    AlertKind = "tuition-overdue"
)

// Severity ranks how urgently an alert should be handled.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Action names what the client should open to resolve an alert.
type Action string

const (
	ActionTakeAttendance Action = "take-attendance"
	ActionReviewTuition  Action = "review-overdue-tuition"
)

// Alert is an actionable dashboard entry.
type Alert struct {
	ID            string    `json:"id"`
	Kind          AlertKind `json:"kind"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Severity      Severity  `json:"severity"`
	Action        Action    `json:"action"`
	TargetClassID *string   `json:"target_class_id,omitempty"`
}

// AttendanceLookup counts attendance rows recorded for a class on a day.
type AttendanceLookup func(classID string, day time.Time) (int, error)

// AlertInput gathers what ComputeAlerts needs. OverdueTuitions is only counted.
type AlertInput struct {
	Today           []Occurrence
	Attendance      AttendanceLookup
	OverdueTuitions int
	Now             time.Time
	// OnLookupError is told about a failed attendance lookup; the class is skipped.
	OnLookupError func(classID string, err error)
}

// ComputeAlerts evaluates the missing-attendance rule for each due class, then the
// aggregated tuition rule. A failed lookup never stops the remaining classes.
func ComputeAlerts(in AlertInput) []Alert {
	alerts := make([]Alert, 0)
	checked := make(map[string]struct{})

	for _, occ := range in.Today {
		if _, ok := checked[occ.ClassID]; ok {
			continue
		}
		if !IsDue(occ, in.Now) {
			continue
		}
		checked[occ.ClassID] = struct{}{}
		if in.Attendance == nil {
			continue
		}
		count, err := in.Attendance(occ.ClassID, in.Now)
		if err != nil {
			if in.OnLookupError != nil {
				in.OnLookupError(occ.ClassID, err)
			}
			continue
		}
		if count > 0 {
			continue
		}
		classID := occ.ClassID
		alerts = append(alerts, Alert{
			ID:            "attendance-" + classID,
			Kind:          AlertMissingAttendance,
			Title:         fmt.Sprintf("Attendance not taken: %s", occ.Name),
			Description:   fmt.Sprintf("The %s class today has no attendance records yet.", occ.Time),
			Severity:      SeverityHigh,
			Action:        ActionTakeAttendance,
			TargetClassID: &classID,
		})
	}

	if in.OverdueTuitions > 0 {
		alerts = append(alerts, Alert{
			ID:          "tuition-overdue",
			Kind:        AlertTuitionOverdue,
			Title:       fmt.Sprintf("%d overdue tuition payments", in.OverdueTuitions),
			Description: fmt.Sprintf("%d tuition invoices are past due and still unpaid.", in.OverdueTuitions),
			Severity:    SeverityMedium,
			Action:      ActionReviewTuition,
		})
	}
	return alerts
}
