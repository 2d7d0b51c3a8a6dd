// Package booking orchestrates reservations: payload validation, the
// pre-write slot guard, and the appointment write.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/movementhq/booking-platform/internal/appointments"
	"github.com/movementhq/booking-platform/internal/directory"
	"github.com/movementhq/booking-platform/internal/notify"
	"github.com/movementhq/booking-platform/internal/observability/metrics"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// ErrSlotUnavailable indicates the requested slot is no longer free. A store
// failure during the guard check maps here too: the guard fails closed.
var ErrSlotUnavailable = errors.New("booking: slot no longer available")

// ErrProfessionalNotFound indicates the reservation names an unknown professional.
var ErrProfessionalNotFound = errors.New("booking: professional not found")

// Store is the slice of the appointments repository the service needs.
type Store interface {
	IsSlotFree(ctx context.Context, professional, date, slotTime string) (bool, error)
	Create(ctx context.Context, appt *appointments.Appointment) (string, error)
	ClaimSlot(ctx context.Context, professional, date, slotTime string) error
	ReleaseSlotClaim(ctx context.Context, professional, date, slotTime string) error
}

// Directory resolves professionals by slug.
type Directory interface {
	Lookup(ctx context.Context, slug string) (*directory.Professional, error)
}

// Result is a successful reservation.
type Result struct {
	Appointment  *appointments.Appointment `json:"appointment"`
	WhatsAppLink string                    `json:"whatsappLink,omitempty"`
}

// Service performs the reserve flow.
type Service struct {
	store       Store
	directory   Directory
	links       *notify.LinkBuilder
	metrics     *metrics.BookingMetrics
	countryCode string
	// atomic switches from check-then-act to a conditional slot-claim write.
	atomic bool
	logger *logging.Logger
}

// NewService constructs a booking service.
func NewService(store Store, dir Directory, links *notify.LinkBuilder, m *metrics.BookingMetrics, countryCode string, atomic bool, logger *logging.Logger) *Service {
	if store == nil {
		panic("booking: store required")
	}
	if dir == nil {
		panic("booking: directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:       store,
		directory:   dir,
		links:       links,
		metrics:     m,
		countryCode: countryCode,
		atomic:      atomic,
		logger:      logger,
	}
}

// CheckSlot is the reservation guard: free iff no non-cancelled appointment
// holds the triple. Any store error reports the slot as taken.
func (s *Service) CheckSlot(ctx context.Context, professional, date, slotTime string) bool {
	free, err := s.store.IsSlotFree(ctx, professional, date, slotTime)
	if err != nil {
		s.logger.Error("slot check failed, treating slot as unavailable",
			"professional", professional, "date", date, "time", slotTime, "error", err)
		s.metrics.ObserveGuardCheck("error")
		return false
	}
	if free {
		s.metrics.ObserveGuardCheck("free")
	} else {
		s.metrics.ObserveGuardCheck("taken")
	}
	return free
}

// Reserve validates the payload, re-verifies the slot, and persists the
// appointment. The guard and the write are not atomic unless the service was
// built with atomic claims enabled.
func (s *Service) Reserve(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("booking: request cannot be nil")
	}
	if err := req.normalize(s.countryCode); err != nil {
		s.metrics.ObserveReservation("invalid")
		return nil, err
	}

	prof, err := s.directory.Lookup(ctx, req.ProfessionalSlug)
	if errors.Is(err, directory.ErrNotFound) {
		s.metrics.ObserveReservation("invalid")
		return nil, ErrProfessionalNotFound
	}
	if err != nil {
		s.metrics.ObserveReservation("error")
		return nil, fmt.Errorf("booking: failed to load professional: %w", err)
	}

	if s.atomic {
		if err := s.store.ClaimSlot(ctx, req.ProfessionalSlug, req.Date, req.Time); err != nil {
			if errors.Is(err, appointments.ErrSlotClaimed) {
				s.metrics.ObserveReservation("conflict")
				return nil, ErrSlotUnavailable
			}
			s.metrics.ObserveReservation("error")
			return nil, err
		}
	} else if !s.CheckSlot(ctx, req.ProfessionalSlug, req.Date, req.Time) {
		s.metrics.ObserveReservation("conflict")
		return nil, ErrSlotUnavailable
	}

	appt := &appointments.Appointment{
		ProfessionalSlug: req.ProfessionalSlug,
		Date:             req.Date,
		Time:             req.Time,
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		Email:            req.Email,
		Document:         req.Document,
	}
	if _, err := s.store.Create(ctx, appt); err != nil {
		if s.atomic {
			if relErr := s.store.ReleaseSlotClaim(ctx, req.ProfessionalSlug, req.Date, req.Time); relErr != nil {
				s.logger.Error("failed to release slot claim after write failure",
					"professional", req.ProfessionalSlug, "date", req.Date, "time", req.Time, "error", relErr)
			}
		}
		s.metrics.ObserveReservation("error")
		return nil, err
	}

	result := &Result{Appointment: appt}
	if s.links != nil {
		link, err := s.links.BookingLink(prof, appt)
		if err != nil {
			// The booking stands; the caller just has no deep link to open.
			s.logger.Warn("could not build WhatsApp link", "professional", prof.Slug, "error", err)
		} else {
			result.WhatsAppLink = link
		}
	}

	s.metrics.ObserveReservation("confirmed")
	s.logger.Info("appointment confirmed",
		"appointment_id", appt.ID,
		"professional", appt.ProfessionalSlug,
		"date", appt.Date,
		"time", appt.Time,
	)
	return result, nil
}
