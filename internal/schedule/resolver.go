// Package schedule computes bookable slots for a professional on a date.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/movementhq/booking-platform/internal/directory"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// DateLayout is the calendar-date wire format used across the system.
const DateLayout = "2006-01-02"

// AppointmentSource reports the slot times already taken by non-cancelled
// appointments for a professional on a date.
type AppointmentSource interface {
	ReservedTimes(ctx context.Context, professional, date string) ([]string, error)
}

// Resolver turns a professional's schedule plus existing reservations into the
// ordered list of bookable times. It holds no cache: every call re-queries the
// appointment source.
type Resolver struct {
	source AppointmentSource
	// failOpen treats an appointment-source error as "nothing reserved" instead
	// of surfacing it. Off unless explicitly configured.
	failOpen bool
	logger   *logging.Logger
}

// NewResolver builds a resolver over the given appointment source.
func NewResolver(source AppointmentSource, failOpen bool, logger *logging.Logger) *Resolver {
	if source == nil {
		panic("schedule: appointment source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{source: source, failOpen: failOpen, logger: logger}
}

// SlotsForDate returns the bookable times for the professional on the date, in
// schedule order. The empty slice means the professional cannot be booked that
// day.
func (r *Resolver) SlotsForDate(ctx context.Context, p *directory.Professional, date string) ([]string, error) {
	if p == nil {
		return nil, fmt.Errorf("schedule: professional required")
	}
	candidates, err := CandidateSlots(p, date)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	reserved, err := r.source.ReservedTimes(ctx, p.Slug, date)
	if err != nil {
		if !r.failOpen {
			return nil, fmt.Errorf("schedule: failed to load reservations for %s on %s: %w", p.Slug, date, err)
		}
		r.logger.Warn("treating reservation query failure as no reservations",
			"professional", p.Slug, "date", date, "error", err)
		reserved = nil
	}

	taken := make(map[string]struct{}, len(reserved))
	for _, t := range reserved {
		taken[t] = struct{}{}
	}

	free := make([]string, 0, len(candidates))
	for _, t := range candidates {
		if _, ok := taken[t]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}

// CandidateSlots applies the schedule precedence rules without consulting the
// appointment store:
//
//  1. a non-working date wins over everything;
//  2. a date-specific entry wins over the weekly template;
//  3. periodic professionals fall back to the weekday template;
//  4. sporadic professionals have no fallback.
func CandidateSlots(p *directory.Professional, date string) ([]string, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid date %q: %w", date, err)
	}

	if p.HasDayOff(date) {
		return nil, nil
	}
	if times, ok := p.DateSchedule[date]; ok {
		return times, nil
	}
	if p.Kind == directory.KindPeriodic {
		return p.Weekly.ForDay(day.Weekday()), nil
	}
	return nil, nil
}
