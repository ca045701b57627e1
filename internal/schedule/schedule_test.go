package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	templates map[uuid.UUID]WeekSchedule
}

func newMemRepo() *memRepo {
	return &memRepo{templates: make(map[uuid.UUID]WeekSchedule)}
}

func (r *memRepo) Upsert(ctx context.Context, doctorID uuid.UUID, week WeekSchedule) (*WeeklySchedule, error) {
	r.templates[doctorID] = week
	return &WeeklySchedule{DoctorID: doctorID, Week: week}, nil
}

func (r *memRepo) Get(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error) {
	week, ok := r.templates[doctorID]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	return &WeeklySchedule{DoctorID: doctorID, Week: week}, nil
}

func (r *memRepo) Delete(ctx context.Context, doctorID uuid.UUID) error {
	if _, ok := r.templates[doctorID]; !ok {
		return ErrScheduleNotFound
	}
	delete(r.templates, doctorID)
	return nil
}

func TestWeekSchedule_Day(t *testing.T) {
	week := WeekSchedule{
		Mon: DaySchedule{Active: true, Slots: []Slot{{StartTime: "09:00", EndTime: "09:30"}}},
		Sun: DaySchedule{Active: false},
	}

	assert.True(t, week.Day(time.Monday).Active)
	assert.Len(t, week.Day(time.Monday).Slots, 1)
	assert.False(t, week.Day(time.Sunday).Active)
	assert.False(t, week.Day(time.Wednesday).Active)
}

func TestWeekSchedule_Normalize(t *testing.T) {
	week := WeekSchedule{
		Mon: DaySchedule{Active: true, Slots: []Slot{{StartTime: "09:00", EndTime: "09:30"}}},
	}

	norm := week.Normalize()

	assert.NotNil(t, norm.Tue.Slots)
	assert.Empty(t, norm.Tue.Slots)
	assert.NotNil(t, norm.Sun.Slots)
	assert.Len(t, norm.Mon.Slots, 1)

	// receiver is untouched
	assert.Nil(t, week.Tue.Slots)
}

func TestService_SetWeekNormalizesBeforeStore(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())

	doctorID := uuid.New()
	saved, err := svc.SetWeek(context.Background(), doctorID, WeekSchedule{
		Fri: DaySchedule{Active: true, Slots: []Slot{{StartTime: "14:00", EndTime: "14:30"}}},
	})
	require.NoError(t, err)

	assert.NotNil(t, saved.Week.Mon.Slots)
	assert.Equal(t, "14:00", saved.Week.Fri.Slots[0].StartTime)

	stored := repo.templates[doctorID]
	assert.NotNil(t, stored.Wed.Slots)
}

func TestService_SetWeekReplacesExisting(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())

	doctorID := uuid.New()

	_, err := svc.SetWeek(context.Background(), doctorID, WeekSchedule{
		Mon: DaySchedule{Active: true, Slots: []Slot{{StartTime: "09:00", EndTime: "09:30"}}},
	})
	require.NoError(t, err)

	_, err = svc.SetWeek(context.Background(), doctorID, WeekSchedule{
		Tue: DaySchedule{Active: true, Slots: []Slot{{StartTime: "10:00", EndTime: "10:30"}}},
	})
	require.NoError(t, err)

	got, err := svc.GetWeek(context.Background(), doctorID)
	require.NoError(t, err)
	assert.False(t, got.Week.Mon.Active)
	assert.Empty(t, got.Week.Mon.Slots)
	assert.True(t, got.Week.Tue.Active)
}

func TestService_GetWeekNotFound(t *testing.T) {
	svc := NewService(newMemRepo(), zap.NewNop())

	_, err := svc.GetWeek(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestService_DeleteWeek(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())

	doctorID := uuid.New()
	_, err := svc.SetWeek(context.Background(), doctorID, WeekSchedule{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWeek(context.Background(), doctorID))

	err = svc.DeleteWeek(context.Background(), doctorID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
