package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Slot is one bookable window inside a weekday, times as naive "HH:MM"
// strings with no timezone.
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type DaySchedule struct {
	Active bool   `json:"active"`
	Slots  []Slot `json:"slots"`
}

// WeekSchedule is a doctor's recurring weekly availability pattern,
// independent of calendar date.
type WeekSchedule struct {
	Mon DaySchedule `json:"mon"`
	Tue DaySchedule `json:"tue"`
	Wed DaySchedule `json:"wed"`
	Thu DaySchedule `json:"thu"`
	Fri DaySchedule `json:"fri"`
	Sat DaySchedule `json:"sat"`
	Sun DaySchedule `json:"sun"`
}

// Day returns the schedule for a calendar weekday.
func (w WeekSchedule) Day(d time.Weekday) DaySchedule {
	switch d {
	case time.Monday:
		return w.Mon
	case time.Tuesday:
		return w.Tue
	case time.Wednesday:
		return w.Wed
	case time.Thursday:
		return w.Thu
	case time.Friday:
		return w.Fri
	case time.Saturday:
		return w.Sat
	default:
		return w.Sun
	}
}

// Normalize replaces nil slot lists with empty ones so that an upsert with
// missing weekday keys stores inactive/empty days rather than nulls.
func (w WeekSchedule) Normalize() WeekSchedule {
	for _, day := range []*DaySchedule{&w.Mon, &w.Tue, &w.Wed, &w.Thu, &w.Fri, &w.Sat, &w.Sun} {
		if day.Slots == nil {
			day.Slots = []Slot{}
		}
	}
	return w
}

// WeeklySchedule is the persisted template, one row per doctor.
type WeeklySchedule struct {
	DoctorID  uuid.UUID
	Week      WeekSchedule
	CreatedAt time.Time
	UpdatedAt time.Time
}
