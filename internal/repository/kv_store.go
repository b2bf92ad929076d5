package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/lms-agenda-api/internal/models"
)

// Key layout of the key-value backend.
const (
	kvClassPrefix      = "class:"
	kvStudentPrefix    = "student:"
	kvTuitionPrefix    = "tuition:"
	kvAttendancePrefix = "attendance:"

	kvClassIndex      = "index:classes"
	kvStudentIndex    = "index:students"
	kvTuitionIndex    = "index:tuitions"
	kvAttendanceIndex = "index:attendance"
)

func classKey(id string) string   { return kvClassPrefix + id }
func studentKey(id string) string { return kvStudentPrefix + id }
func tuitionKey(id string) string { return kvTuitionPrefix + id }

func attendanceKey(classID string, date time.Time, studentID string) string {
	return kvAttendancePrefix + classID + ":" + date.Format(DateLayout) + ":" + studentID
}

func attendanceDayIndex(classID string, date time.Time) string {
	return "index:attendance:" + classID + ":" + date.Format(DateLayout)
}

// KVStore keeps classes, students, attendance and tuitions as JSON documents in Redis.
// Lookups of missing records return sql.ErrNoRows so callers treat both backends alike.
type KVStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewKVStore wraps a Redis client.
func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{client: client, now: time.Now}
}

// Classes exposes class operations.
func (s *KVStore) Classes() *KVClassRepository { return &KVClassRepository{store: s} }

// Students exposes student operations.
func (s *KVStore) Students() *KVStudentRepository { return &KVStudentRepository{store: s} }

// Attendance exposes attendance operations.
func (s *KVStore) Attendance() *KVAttendanceRepository { return &KVAttendanceRepository{store: s} }

// Tuitions exposes tuition operations.
func (s *KVStore) Tuitions() *KVTuitionRepository { return &KVTuitionRepository{store: s} }

// Ping reports whether Redis is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *KVStore) put(ctx context.Context, key, index, member string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, 0)
		pipe.SAdd(ctx, index, member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) get(ctx context.Context, key string, dest interface{}) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("kv get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) remove(ctx context.Context, key, index, member string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, index, member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// loadAll decodes every document referenced by an index set. decode is called once per
// stored document; entries removed between SMEMBERS and MGET are skipped.
func (s *KVStore) loadAll(ctx context.Context, index string, keyOf func(string) string, decode func([]byte) error) error {
	members, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("kv members %s: %w", index, err)
	}
	if len(members) == 0 {
		return nil
	}
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = keyOf(m)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("kv mget %s: %w", index, err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if err := decode([]byte(raw)); err != nil {
			return fmt.Errorf("decode %s: %w", keys[i], err)
		}
	}
	return nil
}

func identity(s string) string { return s }

func pageSlice[T any](items []T, page, size, defaultSize, maxSize int) []T {
	page, size = normalizePage(page, size, defaultSize, maxSize)
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// KVClassRepository is the key-value counterpart of ClassRepository.
type KVClassRepository struct {
	store *KVStore
}

func (r *KVClassRepository) all(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	err := r.store.loadAll(ctx, kvClassIndex, classKey, func(raw []byte) error {
		var c models.Class
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		classes = append(classes, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// List filters, sorts and pages classes in memory.
func (r *KVClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	classes, err := r.all(ctx)
	if err != nil {
		return nil, 0, err
	}
	search := strings.ToLower(filter.Search)
	matched := classes[:0]
	for _, c := range classes {
		if filter.Level != "" && (c.Level == nil || *c.Level != filter.Level) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		matched = append(matched, c)
	}

	desc := strings.EqualFold(filter.SortOrder, "DESC")
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "created_at":
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		case "level":
			less = derefString(matched[i].Level) < derefString(matched[j].Level)
		default:
			less = matched[i].Name < matched[j].Name
		}
		if desc {
			return !less
		}
		return less
	})
	return pageSlice(matched, filter.Page, filter.PageSize, 20, 100), len(matched), nil
}

// ListAll returns every class ordered by name.
func (r *KVClassRepository) ListAll(ctx context.Context) ([]models.Class, error) {
	classes, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

// FindByID loads a class.
func (r *KVClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := r.store.get(ctx, classKey(id), &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create stores a new class.
func (r *KVClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = r.store.now().UTC()
	}
	return r.store.put(ctx, classKey(class.ID), kvClassIndex, class.ID, class)
}

// Update overwrites a class.
func (r *KVClassRepository) Update(ctx context.Context, class *models.Class) error {
	return r.store.put(ctx, classKey(class.ID), kvClassIndex, class.ID, class)
}

// Delete removes a class.
func (r *KVClassRepository) Delete(ctx context.Context, id string) error {
	return r.store.remove(ctx, classKey(id), kvClassIndex, id)
}

// CountStudents counts students assigned to the class.
func (r *KVClassRepository) CountStudents(ctx context.Context, classID string) (int, error) {
	students, err := r.store.Students().all(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, s := range students {
		if s.ClassID == classID {
			count++
		}
	}
	return count, nil
}

// KVStudentRepository is the key-value counterpart of StudentRepository.
type KVStudentRepository struct {
	store *KVStore
}

func (r *KVStudentRepository) all(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.store.loadAll(ctx, kvStudentIndex, studentKey, func(raw []byte) error {
		var s models.Student
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		students = append(students, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// List filters, sorts and pages students in memory.
func (r *KVStudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	students, err := r.all(ctx)
	if err != nil {
		return nil, 0, err
	}
	search := strings.ToLower(filter.Search)
	matched := students[:0]
	for _, s := range students {
		if filter.ClassID != "" && s.ClassID != filter.ClassID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Name), search) {
			continue
		}
		matched = append(matched, s)
	}
	desc := strings.EqualFold(filter.SortOrder, "DESC")
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		if filter.SortBy == "joined_at" {
			less = matched[i].JoinedAt.Before(matched[j].JoinedAt)
		} else {
			less = matched[i].Name < matched[j].Name
		}
		if desc {
			return !less
		}
		return less
	})
	return pageSlice(matched, filter.Page, filter.PageSize, 50, 200), len(matched), nil
}

// FindByID loads a student.
func (r *KVStudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.store.get(ctx, studentKey(id), &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create stores a new student.
func (r *KVStudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.JoinedAt.IsZero() {
		student.JoinedAt = r.store.now().UTC()
	}
	return r.store.put(ctx, studentKey(student.ID), kvStudentIndex, student.ID, student)
}

// Update overwrites a student.
func (r *KVStudentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.store.put(ctx, studentKey(student.ID), kvStudentIndex, student.ID, student)
}

// Delete removes a student.
func (r *KVStudentRepository) Delete(ctx context.Context, id string) error {
	return r.store.remove(ctx, studentKey(id), kvStudentIndex, id)
}

// KVAttendanceRepository is the key-value counterpart of AttendanceRepository. The
// record key embeds class, date and student so rewriting a record upserts it.
type KVAttendanceRepository struct {
	store *KVStore
}

func (r *KVAttendanceRepository) all(ctx context.Context) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := r.store.loadAll(ctx, kvAttendanceIndex, identity, func(raw []byte) error {
		var rec models.AttendanceRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// List returns attendance records matching the filter, newest first.
func (r *KVAttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	records, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	matched := records[:0]
	for _, rec := range records {
		if filter.ClassID != "" && rec.ClassID != filter.ClassID {
			continue
		}
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.Date != nil && rec.Date.Format(DateLayout) != filter.Date.Format(DateLayout) {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].StudentID < matched[j].StudentID
	})
	return matched, nil
}

// UpsertBatch writes every record in one MULTI block.
func (r *KVAttendanceRepository) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	now := r.store.now().UTC()
	_, err := r.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range records {
			rec := &records[i]
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = now
			}
			payload, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			key := attendanceKey(rec.ClassID, rec.Date, rec.StudentID)
			pipe.Set(ctx, key, payload, 0)
			pipe.SAdd(ctx, kvAttendanceIndex, key)
			pipe.SAdd(ctx, attendanceDayIndex(rec.ClassID, rec.Date), rec.StudentID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert attendance batch: %w", err)
	}
	return nil
}

// CountForClassOnDate counts distinct students recorded for a class on a date.
func (r *KVAttendanceRepository) CountForClassOnDate(ctx context.Context, classID string, date time.Time) (int, error) {
	n, err := r.store.client.SCard(ctx, attendanceDayIndex(classID, date)).Result()
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return int(n), nil
}

// Performance aggregates attendance per class.
func (r *KVAttendanceRepository) Performance(ctx context.Context) ([]models.AttendancePerformance, error) {
	records, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := r.store.Classes().all(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeAttendance(records, classes), nil
}

// KVTuitionRepository is the key-value counterpart of TuitionRepository.
type KVTuitionRepository struct {
	store *KVStore
}

func (r *KVTuitionRepository) all(ctx context.Context) ([]models.Tuition, error) {
	var tuitions []models.Tuition
	err := r.store.loadAll(ctx, kvTuitionIndex, tuitionKey, func(raw []byte) error {
		var t models.Tuition
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		tuitions = append(tuitions, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tuitions: %w", err)
	}
	return tuitions, nil
}

func (r *KVTuitionRepository) details(ctx context.Context, tuitions []models.Tuition) ([]models.TuitionDetail, error) {
	classes, err := r.store.Classes().all(ctx)
	if err != nil {
		return nil, err
	}
	students, err := r.store.Students().all(ctx)
	if err != nil {
		return nil, err
	}
	classNames := make(map[string]string, len(classes))
	for _, c := range classes {
		classNames[c.ID] = c.Name
	}
	studentNames := make(map[string]string, len(students))
	for _, s := range students {
		studentNames[s.ID] = s.Name
	}

	out := make([]models.TuitionDetail, 0, len(tuitions))
	for _, t := range tuitions {
		detail := models.TuitionDetail{Tuition: t}
		if name, ok := studentNames[t.StudentID]; ok {
			detail.StudentName = &name
		}
		if name, ok := classNames[t.ClassID]; ok {
			detail.ClassName = &name
		}
		out = append(out, detail)
	}
	return out, nil
}

// List filters and pages tuitions in memory, ordered by due date.
func (r *KVTuitionRepository) List(ctx context.Context, filter models.TuitionFilter) ([]models.TuitionDetail, int, error) {
	tuitions, err := r.all(ctx)
	if err != nil {
		return nil, 0, err
	}
	matched := tuitions[:0]
	for _, t := range tuitions {
		if filter.Status != nil && filter.Status.Valid() && t.Status != *filter.Status {
			continue
		}
		if filter.ClassID != "" && t.ClassID != filter.ClassID {
			continue
		}
		matched = append(matched, t)
	}
	sortByDueDate(matched)
	page := pageSlice(matched, filter.Page, filter.PageSize, 20, 100)
	details, err := r.details(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	return details, len(matched), nil
}

// FindByID loads a tuition.
func (r *KVTuitionRepository) FindByID(ctx context.Context, id string) (*models.Tuition, error) {
	var tuition models.Tuition
	if err := r.store.get(ctx, tuitionKey(id), &tuition); err != nil {
		return nil, err
	}
	return &tuition, nil
}

// Create stores a new tuition.
func (r *KVTuitionRepository) Create(ctx context.Context, tuition *models.Tuition) error {
	if tuition.ID == "" {
		tuition.ID = uuid.NewString()
	}
	if tuition.CreatedAt.IsZero() {
		tuition.CreatedAt = r.store.now().UTC()
	}
	if tuition.Status == "" {
		tuition.Status = models.TuitionStatusPending
	}
	return r.store.put(ctx, tuitionKey(tuition.ID), kvTuitionIndex, tuition.ID, tuition)
}

// MarkPaid records payment for a tuition.
func (r *KVTuitionRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	tuition, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	tuition.Status = models.TuitionStatusPaid
	tuition.PaidAt = &paidAt
	return r.store.put(ctx, tuitionKey(id), kvTuitionIndex, id, tuition)
}

// ListOverdue returns pending tuitions due on or before asOf. limit <= 0 returns all.
func (r *KVTuitionRepository) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error) {
	tuitions, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	overdue := FilterOverdue(tuitions, asOf)
	sortByDueDate(overdue)
	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}
	return r.details(ctx, overdue)
}

// CountOverdue counts pending tuitions due on or before asOf.
func (r *KVTuitionRepository) CountOverdue(ctx context.Context, asOf time.Time) (int, error) {
	tuitions, err := r.all(ctx)
	if err != nil {
		return 0, err
	}
	return len(FilterOverdue(tuitions, asOf)), nil
}

// RevenueSummary aggregates tuition amounts per class and period.
func (r *KVTuitionRepository) RevenueSummary(ctx context.Context) ([]models.RevenueSummary, error) {
	tuitions, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeRevenue(tuitions, r.store.now()), nil
}

func sortByDueDate(tuitions []models.Tuition) {
	sort.SliceStable(tuitions, func(i, j int) bool {
		a, b := tuitions[i].DueDate, tuitions[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
