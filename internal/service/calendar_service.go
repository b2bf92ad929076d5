package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-agenda-api/internal/dto"
	"github.com/noah-isme/lms-agenda-api/internal/models"
	"github.com/noah-isme/lms-agenda-api/internal/schedule"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
	"github.com/noah-isme/lms-agenda-api/pkg/export"
)

// Export formats supported by the week timetable.
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

type classLister interface {
	ListAll(ctx context.Context) ([]models.Class, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// WeekQuery selects a week by reference date (YYYY-MM-DD, today when empty) and week offset.
type WeekQuery struct {
	Date   string
	Offset int
}

// ExportedFile is a rendered download.
type ExportedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CalendarService projects class schedules onto calendar weeks.
type CalendarService struct {
	classes  classLister
	cache    *CacheService
	metrics  *MetricsService
	pdf      pdfRenderer
	csv      csvRenderer
	logger   *zap.Logger
	now      func() time.Time
	location *time.Location
	ttl      time.Duration
}

// CalendarServiceParams groups constructor dependencies.
type CalendarServiceParams struct {
	Classes  classLister
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Location *time.Location
	CacheTTL time.Duration
}

// NewCalendarService constructs the service.
func NewCalendarService(params CalendarServiceParams) *CalendarService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{
		classes:  params.Classes,
		cache:    params.Cache,
		metrics:  params.Metrics,
		pdf:      export.NewTimetableExporter(),
		csv:      export.NewCSVExporter(),
		logger:   logger,
		now:      time.Now,
		location: loc,
		ttl:      params.CacheTTL,
	}
}

// Week returns the projected week and whether it came from cache.
func (s *CalendarService) Week(ctx context.Context, query WeekQuery) (*dto.CalendarWeekResponse, bool, error) {
	week, err := s.resolveWeek(query)
	if err != nil {
		return nil, false, err
	}
	key := fmt.Sprintf("%s:%s", cacheKeyCalendar, week.Format(dateLayout))

	var cached dto.CalendarWeekResponse
	if s.cache.Get(ctx, key, &cached) {
		s.markToday(&cached)
		return &cached, true, nil
	}

	projected, err := s.project(ctx, week)
	if err != nil {
		return nil, false, err
	}
	resp := s.toResponse(projected)
	s.cache.Set(ctx, key, resp, s.ttl)
	return resp, false, nil
}

// Export renders the selected week as a PDF timetable or a CSV listing.
func (s *CalendarService) Export(ctx context.Context, query WeekQuery, format string) (*ExportedFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}
	week, err := s.resolveWeek(query)
	if err != nil {
		return nil, err
	}
	projected, err := s.project(ctx, week)
	if err != nil {
		return nil, err
	}

	file := &ExportedFile{Filename: export.Filename("timetable", projected.Start, format)}
	switch format {
	case FormatCSV:
		file.ContentType = "text/csv; charset=utf-8"
		file.Content, err = s.csv.Render(weekListing(projected))
	default:
		file.ContentType = "application/pdf"
		title := fmt.Sprintf("Timetable %s - %s", projected.Start.Format("02/01/2006"), projected.End.Format("02/01/2006"))
		file.Content, err = s.pdf.Render(weekGrid(projected), title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	s.metrics.RecordExport("timetable", format)
	return file, nil
}

func (s *CalendarService) resolveWeek(query WeekQuery) (time.Time, error) {
	ref := s.now().In(s.location)
	if query.Date != "" {
		parsed, err := time.ParseInLocation(dateLayout, query.Date, s.location)
		if err != nil {
			return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
		}
		ref = parsed
	}
	return schedule.WeekStart(schedule.ShiftWeek(ref, query.Offset)), nil
}

func (s *CalendarService) project(ctx context.Context, weekStart time.Time) (schedule.Week, error) {
	start := time.Now()
	classes, err := s.classes.ListAll(ctx)
	s.metrics.ObserveDBQuery("classes_list_all", time.Since(start))
	if err != nil {
		return schedule.Week{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	return schedule.ProjectWeek(weekStart, classSources(classes)), nil
}

func (s *CalendarService) toResponse(week schedule.Week) *dto.CalendarWeekResponse {
	resp := &dto.CalendarWeekResponse{
		WeekStart: week.Start.Format(dateLayout),
		WeekEnd:   week.End.Format(dateLayout),
		Days:      make([]dto.CalendarDay, 0, schedule.DaysPerWeek),
	}
	for _, cell := range week.Days {
		resp.Days = append(resp.Days, dto.CalendarDay{
			Date:    cell.Date.Format(dateLayout),
			DayCode: cell.Code,
			Classes: cell.Occurrences,
		})
	}
	s.markToday(resp)
	return resp
}

// markToday is applied after cache reads too, since cached weeks outlive a day change.
func (s *CalendarService) markToday(resp *dto.CalendarWeekResponse) {
	today := s.now().In(s.location).Format(dateLayout)
	for i := range resp.Days {
		resp.Days[i].IsToday = resp.Days[i].Date == today
	}
}

// weekGrid lays the week out as one timetable row with a column per day.
func weekGrid(week schedule.Week) export.Dataset {
	data := export.Dataset{
		Headers: make([]string, 0, schedule.DaysPerWeek),
		Labels:  make(map[string]string, schedule.DaysPerWeek),
	}
	row := make(map[string]string, schedule.DaysPerWeek)
	for _, cell := range week.Days {
		data.Headers = append(data.Headers, cell.Code)
		data.Labels[cell.Code] = fmt.Sprintf("%s %s", cell.Code, cell.Date.Format("02/01"))
		lines := make([]string, 0, len(cell.Occurrences))
		for _, occ := range cell.Occurrences {
			lines = append(lines, fmt.Sprintf("%s %s", occ.Time, occ.Name))
		}
		row[cell.Code] = strings.Join(lines, "\n")
	}
	data.Rows = []map[string]string{row}
	return data
}

// weekListing flattens the week to one row per occurrence.
func weekListing(week schedule.Week) export.Dataset {
	data := export.Dataset{
		Headers: []string{"date", "day_code", "time", "class", "level"},
	}
	for _, cell := range week.Days {
		for _, occ := range cell.Occurrences {
			level := ""
			if occ.Level != nil {
				level = *occ.Level
			}
			data.Rows = append(data.Rows, map[string]string{
				"date":     cell.Date.Format(dateLayout),
				"day_code": cell.Code,
				"time":     occ.Time,
				"class":    occ.Name,
				"level":    level,
			})
		}
	}
	return data
}
