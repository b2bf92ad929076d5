package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

type stubCacheRepo struct {
	store       map[string][]byte
	invalidated []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	return nil
}

func newStubCache() (*CacheService, *stubCacheRepo) {
	repo := &stubCacheRepo{}
	return NewCacheService(repo, nil, time.Minute, nil, true), repo
}

type fakeClassRepo struct {
	classes      map[string]models.Class
	studentCount map[string]int
	listErr      error
	created      []models.Class
}

func newFakeClassRepo(classes ...models.Class) *fakeClassRepo {
	repo := &fakeClassRepo{classes: make(map[string]models.Class), studentCount: make(map[string]int)}
	for _, c := range classes {
		repo.classes[c.ID] = c
	}
	return repo
}

func (f *fakeClassRepo) List(_ context.Context, _ models.ClassFilter) ([]models.Class, int, error) {
	all, err := f.ListAll(context.Background())
	return all, len(all), err
}

func (f *fakeClassRepo) ListAll(context.Context) ([]models.Class, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Class, 0, len(f.classes))
	for _, c := range f.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeClassRepo) FindByID(_ context.Context, id string) (*models.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (f *fakeClassRepo) Create(_ context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "generated"
	}
	f.classes[class.ID] = *class
	f.created = append(f.created, *class)
	return nil
}

func (f *fakeClassRepo) Update(_ context.Context, class *models.Class) error {
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) Delete(_ context.Context, id string) error {
	delete(f.classes, id)
	return nil
}

func (f *fakeClassRepo) CountStudents(_ context.Context, classID string) (int, error) {
	return f.studentCount[classID], nil
}

type fakeStudentRepo struct {
	students map[string]models.Student
}

func (f *fakeStudentRepo) List(context.Context, models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	if f.students == nil {
		f.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	delete(f.students, id)
	return nil
}

type fakeAttendanceRepo struct {
	counts      map[string]int
	countErr    map[string]error
	upserted    []models.AttendanceRecord
	performance []models.AttendancePerformance
	lookups     []string
}

func (f *fakeAttendanceRepo) List(context.Context, models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	return f.upserted, nil
}

func (f *fakeAttendanceRepo) UpsertBatch(_ context.Context, records []models.AttendanceRecord) error {
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *fakeAttendanceRepo) CountForClassOnDate(_ context.Context, classID string, date time.Time) (int, error) {
	f.lookups = append(f.lookups, classID+"@"+date.Format(dateLayout))
	if err := f.countErr[classID]; err != nil {
		return 0, err
	}
	return f.counts[classID], nil
}

func (f *fakeAttendanceRepo) Performance(context.Context) ([]models.AttendancePerformance, error) {
	return f.performance, nil
}

type fakeTuitionRepo struct {
	tuitions    map[string]models.Tuition
	overdue     []models.TuitionDetail
	revenue     []models.RevenueSummary
	countErr    error
	revenueHits int
	paid        []string
	overdueAsOf time.Time
}

func (f *fakeTuitionRepo) List(context.Context, models.TuitionFilter) ([]models.TuitionDetail, int, error) {
	out := make([]models.TuitionDetail, 0, len(f.tuitions))
	for _, t := range f.tuitions {
		out = append(out, models.TuitionDetail{Tuition: t})
	}
	return out, len(out), nil
}

func (f *fakeTuitionRepo) FindByID(_ context.Context, id string) (*models.Tuition, error) {
	t, ok := f.tuitions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTuitionRepo) Create(_ context.Context, tuition *models.Tuition) error {
	if f.tuitions == nil {
		f.tuitions = make(map[string]models.Tuition)
	}
	if tuition.ID == "" {
		tuition.ID = "generated"
	}
	f.tuitions[tuition.ID] = *tuition
	return nil
}

func (f *fakeTuitionRepo) MarkPaid(_ context.Context, id string, paidAt time.Time) error {
	f.paid = append(f.paid, id)
	t := f.tuitions[id]
	t.Status = models.TuitionStatusPaid
	t.PaidAt = &paidAt
	f.tuitions[id] = t
	return nil
}

func (f *fakeTuitionRepo) ListOverdue(_ context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error) {
	f.overdueAsOf = asOf
	if limit > 0 && len(f.overdue) > limit {
		return f.overdue[:limit], nil
	}
	return f.overdue, nil
}

func (f *fakeTuitionRepo) CountOverdue(context.Context, time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.overdue), nil
}

func (f *fakeTuitionRepo) RevenueSummary(context.Context) ([]models.RevenueSummary, error) {
	f.revenueHits++
	return f.revenue, nil
}

func strPtr(s string) *string { return &s }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
