package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-agenda-api/internal/dto"
	"github.com/noah-isme/lms-agenda-api/internal/schedule"
)

// Lookup labels reported in metrics and in the degraded list.
const (
	lookupClasses    = "classes"
	lookupAttendance = "attendance"
	lookupTuitions   = "tuitions"
)

type attendanceCounter interface {
	CountForClassOnDate(ctx context.Context, classID string, date time.Time) (int, error)
}

type overdueCounter interface {
	CountOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// DashboardService builds today's agenda and alerts. Every store read is advisory:
// a failed read is logged and treated as empty so the rest of the page still renders.
type DashboardService struct {
	classes    classLister
	attendance attendanceCounter
	tuitions   overdueCounter
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
	location   *time.Location
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Classes    classLister
	Attendance attendanceCounter
	Tuitions   overdueCounter
	Metrics    *MetricsService
	Logger     *zap.Logger
	Location   *time.Location
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		classes:    params.Classes,
		attendance: params.Attendance,
		tuitions:   params.Tuitions,
		metrics:    params.Metrics,
		logger:     logger,
		now:        time.Now,
		location:   loc,
	}
}

// Today returns the agenda for the current local day with missing-attendance and
// overdue-tuition alerts.
func (s *DashboardService) Today(ctx context.Context) *dto.TodayDashboardResponse {
	now := s.now().In(s.location)
	resp := &dto.TodayDashboardResponse{
		Date:    now.Format(dateLayout),
		DayCode: schedule.DayCode(now.Weekday()),
		Agenda:  make([]dto.AgendaItem, 0),
	}

	start := time.Now()
	classes, err := s.classes.ListAll(ctx)
	s.metrics.ObserveDBQuery("classes_list_all", time.Since(start))
	if err != nil {
		s.lookupFailed(resp, lookupClasses, err)
		classes = nil
	}

	today := schedule.Today(classSources(classes), now)
	for _, occ := range today {
		resp.Agenda = append(resp.Agenda, dto.AgendaItem{
			ClassID: occ.ClassID,
			Name:    occ.Name,
			Level:   occ.Level,
			Time:    occ.Time,
			Due:     schedule.IsDue(occ, now),
		})
	}

	overdue, err := s.tuitions.CountOverdue(ctx, now)
	if err != nil {
		s.lookupFailed(resp, lookupTuitions, err)
		overdue = 0
	}

	attendanceFailed := false
	resp.Alerts = schedule.ComputeAlerts(schedule.AlertInput{
		Today: today,
		Attendance: func(classID string, day time.Time) (int, error) {
			return s.attendance.CountForClassOnDate(ctx, classID, day)
		},
		OverdueTuitions: overdue,
		Now:             now,
		OnLookupError: func(classID string, err error) {
			s.metrics.RecordLookupFailure(lookupAttendance)
			s.logger.Warn("attendance lookup failed", zap.String("class_id", classID), zap.Error(err))
			attendanceFailed = true
		},
	})
	if attendanceFailed {
		resp.Degraded = append(resp.Degraded, lookupAttendance)
	}

	for _, alert := range resp.Alerts {
		s.metrics.RecordAlert(string(alert.Kind))
	}
	return resp
}

func (s *DashboardService) lookupFailed(resp *dto.TodayDashboardResponse, lookup string, err error) {
	s.metrics.RecordLookupFailure(lookup)
	s.logger.Warn("dashboard lookup failed", zap.String("lookup", lookup), zap.Error(err))
	resp.Degraded = append(resp.Degraded, lookup)
}
