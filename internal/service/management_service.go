package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-agenda-api/internal/dto"
	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

type revenueReader interface {
	RevenueSummary(ctx context.Context) ([]models.RevenueSummary, error)
	ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int, error)
}

type performanceReader interface {
	Performance(ctx context.Context) ([]models.AttendancePerformance, error)
}

// ManagementServiceConfig tunes the management summary.
type ManagementServiceConfig struct {
	CacheTTL         time.Duration
	OverdueListLimit int
}

// ManagementService composes the revenue and attendance overview for centre managers.
type ManagementService struct {
	tuitions   revenueReader
	attendance performanceReader
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	location   *time.Location
	cfg        ManagementServiceConfig
}

// ManagementServiceParams groups constructor dependencies.
type ManagementServiceParams struct {
	Tuitions   revenueReader
	Attendance performanceReader
	Cache      *CacheService
	Logger     *zap.Logger
	Location   *time.Location
	Config     ManagementServiceConfig
}

// NewManagementService constructs the service.
func NewManagementService(params ManagementServiceParams) *ManagementService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.OverdueListLimit <= 0 {
		cfg.OverdueListLimit = 10
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ManagementService{
		tuitions:   params.Tuitions,
		attendance: params.Attendance,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		location:   loc,
		cfg:        cfg,
	}
}

// Summary returns the management overview and whether it was served from cache.
func (s *ManagementService) Summary(ctx context.Context) (*dto.ManagementSummaryResponse, bool, error) {
	now := s.now().In(s.location)
	key := fmt.Sprintf("%s:%s", cacheKeyManagement, now.Format(dateLayout))

	var cached dto.ManagementSummaryResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	revenue, err := s.tuitions.RevenueSummary(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load revenue summary")
	}
	performance, err := s.attendance.Performance(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance performance")
	}
	overdue, err := s.tuitions.ListOverdue(ctx, now, s.cfg.OverdueListLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load overdue tuitions")
	}
	overdueCount, err := s.tuitions.CountOverdue(ctx, now)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count overdue tuitions")
	}

	totals := managementTotals(revenue, performance)
	totals.OverdueCount = overdueCount

	summary := &dto.ManagementSummaryResponse{
		Totals:                totals,
		Revenue:               nonNil(revenue),
		AttendancePerformance: nonNil(performance),
		OverdueTuitions:       nonNil(overdue),
		GeneratedAt:           now.UTC(),
	}
	s.cache.Set(ctx, key, summary, s.cfg.CacheTTL)
	return summary, false, nil
}

// managementTotals sums revenue and averages present rates over classes. Rates are
// percentages rounded to two decimals and are zero when there is nothing to divide by.
func managementTotals(revenue []models.RevenueSummary, performance []models.AttendancePerformance) dto.ManagementTotals {
	var totals dto.ManagementTotals
	for _, r := range revenue {
		totals.TotalExpected += r.TotalExpected
		totals.TotalPaid += r.TotalPaid
		totals.TotalPending += r.TotalPending
		totals.TotalOverdue += r.TotalOverdue
	}
	if totals.TotalExpected > 0 {
		totals.CollectionRate = round2(float64(totals.TotalPaid) / float64(totals.TotalExpected) * 100)
	}
	if len(performance) > 0 {
		var sum float64
		for _, p := range performance {
			sum += p.PresentRate
		}
		totals.AverageAttendanceRate = round2(sum / float64(len(performance)))
	}
	return totals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
