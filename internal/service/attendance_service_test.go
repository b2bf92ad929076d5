package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

func TestAttendanceServiceRecordKeepsLastMark(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	cache, cacheRepo := newStubCache()
	svc := NewAttendanceService(repo, newFakeClassRepo(models.Class{ID: "c1"}), cache, nil, nil)

	records, err := svc.Record(context.Background(), RecordAttendanceRequest{
		ClassID: "c1",
		Date:    "2024-11-11",
		Records: []AttendanceEntry{
			{StudentID: "s1", Status: "absent"},
			{StudentID: "s2", Status: "present"},
			{StudentID: "s1", Status: "late"},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.AttendanceStatusLate, records[0].Status)
	assert.Equal(t, "2024-11-11", records[0].Date.Format(dateLayout))
	assert.Len(t, repo.upserted, 2)
	assert.Equal(t, []string{"dashboard:management*"}, cacheRepo.invalidated)
}

func TestAttendanceServiceRecordValidation(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, newFakeClassRepo(models.Class{ID: "c1"}), nil, nil, nil)

	cases := []RecordAttendanceRequest{
		{ClassID: "c1", Date: "2024-11-11"},
		{ClassID: "c1", Date: "11/11/2024", Records: []AttendanceEntry{{StudentID: "s1", Status: "present"}}},
		{ClassID: "c1", Date: "2024-11-11", Records: []AttendanceEntry{{StudentID: "s1", Status: "excused"}}},
	}
	for _, req := range cases {
		_, err := svc.Record(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestAttendanceServiceRecordUnknownClass(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, newFakeClassRepo(), nil, nil, nil)
	_, err := svc.Record(context.Background(), RecordAttendanceRequest{ClassID: "c9", Date: "2024-11-11", Records: []AttendanceEntry{{StudentID: "s1", Status: "present"}}})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceCount(t *testing.T) {
	repo := &fakeAttendanceRepo{counts: map[string]int{"c1": 7}}
	svc := NewAttendanceService(repo, newFakeClassRepo(), nil, nil, nil)

	count, err := svc.Count(context.Background(), "c1", "2024-11-13")
	require.NoError(t, err)
	assert.Equal(t, 7, count.Count)
	assert.Equal(t, []string{"c1@2024-11-13"}, repo.lookups)

	_, err = svc.Count(context.Background(), "", "2024-11-13")
	assert.Error(t, err)
}
