package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docbook/booking-service/internal/booking"
	"github.com/docbook/booking-service/internal/schedule"
)

var (
	// ErrInvalidDate means the requested date was not a valid YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

const dateLayout = "2006-01-02"

// TemplateSource yields a doctor's weekly template.
type TemplateSource interface {
	GetWeek(ctx context.Context, doctorID uuid.UUID) (*schedule.WeeklySchedule, error)
}

// BookingSource yields booked appointments inside a time window.
type BookingSource interface {
	ListBookedBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]booking.Appointment, error)
}

// Resolver computes free slots for a doctor on a calendar date by
// subtracting booked instances from the weekly template. It takes no locks:
// the view is eventually accurate and the booking path owns correctness.
type Resolver struct {
	templates TemplateSource
	bookings  BookingSource
}

func NewResolver(templates TemplateSource, bookings BookingSource) *Resolver {
	return &Resolver{
		templates: templates,
		bookings:  bookings,
	}
}

// AvailableSlots returns the template slots for date's weekday that are not
// already booked. An inactive weekday yields an empty list, not an error.
func (r *Resolver) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, ErrInvalidDate
	}

	tmpl, err := r.templates.GetWeek(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	daySchedule := tmpl.Week.Day(day.Weekday())
	if !daySchedule.Active {
		return []schedule.Slot{}, nil
	}

	startOfDay := day
	endOfDay := day.Add(24*time.Hour - time.Millisecond)

	booked, err := r.bookings.ListBookedBetween(ctx, doctorID, startOfDay, endOfDay)
	if err != nil {
		return nil, fmt.Errorf("list booked appointments: %w", err)
	}

	// A booked appointment only records its start instant, not a range, so
	// slots are matched on start time alone. A template slot is excluded
	// when any booked appointment starts at its StartTime.
	bookedStarts := make(map[string]struct{}, len(booked))
	for _, appt := range booked {
		bookedStarts[appt.ScheduledFor.Format("15:04")] = struct{}{}
	}

	available := []schedule.Slot{}
	for _, slot := range daySchedule.Slots {
		if _, taken := bookedStarts[slot.StartTime]; !taken {
			available = append(available, slot)
		}
	}

	return available, nil
}
