// Package cancellation implements the self-service cancellation flow: find a
// customer's upcoming appointments, then flip one to cancelled.
package cancellation

import (
	"context"
	"errors"
	"time"

	"github.com/movementhq/booking-platform/internal/appointments"
	"github.com/movementhq/booking-platform/internal/observability/metrics"
	"github.com/movementhq/booking-platform/internal/phone"
	"github.com/movementhq/booking-platform/internal/schedule"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// Reason classifies a failed cancellation.
type Reason string

const (
	ReasonNotFound         Reason = "not_found"
	ReasonAlreadyCancelled Reason = "already_cancelled"
	ReasonDatePassed       Reason = "date_passed"
	ReasonStoreError       Reason = "store_error"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:         "El turno no fue encontrado.",
	ReasonAlreadyCancelled: "Este turno ya fue cancelado anteriormente.",
	ReasonDatePassed:       "No se puede cancelar un turno de una fecha pasada.",
	ReasonStoreError:       "Error al cancelar el turno.",
}

// Result reports the outcome of a cancellation attempt.
type Result struct {
	OK          bool                      `json:"ok"`
	Reason      Reason                    `json:"reason,omitempty"`
	Message     string                    `json:"message"`
	Appointment *appointments.Appointment `json:"appointment,omitempty"`
}

// Store is the slice of the appointments repository the service needs.
type Store interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
	MarkCancelled(ctx context.Context, id string) error
	FindActiveByDocument(ctx context.Context, document, fromDate string) ([]*appointments.Appointment, error)
	FindActiveByPhone(ctx context.Context, phoneNumber, fromDate string) ([]*appointments.Appointment, error)
	ReleaseSlotClaim(ctx context.Context, professional, date, slotTime string) error
}

// Service performs lookups and cancellations.
type Service struct {
	store       Store
	metrics     *metrics.BookingMetrics
	countryCode string
	// releaseClaims mirrors the booking service's atomic mode: a cancelled slot
	// must drop its claim item to become bookable again.
	releaseClaims bool
	logger        *logging.Logger
	now           func() time.Time
}

// NewService constructs a cancellation service.
func NewService(store Store, m *metrics.BookingMetrics, countryCode string, releaseClaims bool, logger *logging.Logger) *Service {
	if store == nil {
		panic("cancellation: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:         store,
		metrics:       m,
		countryCode:   countryCode,
		releaseClaims: releaseClaims,
		logger:        logger,
		now:           time.Now,
	}
}

// LookupByDocument returns the customer's future, non-cancelled appointments.
func (s *Service) LookupByDocument(ctx context.Context, document string) ([]*appointments.Appointment, error) {
	if document == "" {
		return nil, errors.New("cancellation: document required")
	}
	return s.store.FindActiveByDocument(ctx, document, s.today())
}

// LookupByPhone normalizes the number and returns the customer's future,
// non-cancelled appointments.
func (s *Service) LookupByPhone(ctx context.Context, rawPhone string) ([]*appointments.Appointment, error) {
	normalized, err := phone.Normalize(rawPhone, s.countryCode)
	if err != nil {
		return nil, err
	}
	return s.store.FindActiveByPhone(ctx, normalized, s.today())
}

// Cancel transitions an appointment to cancelled. A repeated cancel fails
// without touching the original cancellation timestamp, and past-dated
// appointments cannot be cancelled regardless of state.
func (s *Service) Cancel(ctx context.Context, id string) *Result {
	appt, err := s.store.Get(ctx, id)
	if errors.Is(err, appointments.ErrNotFound) {
		return s.failure(ReasonNotFound, nil)
	}
	if err != nil {
		s.logger.Error("failed to load appointment for cancellation", "appointment_id", id, "error", err)
		return s.failure(ReasonStoreError, nil)
	}

	if appt.Status == appointments.StatusCancelled {
		return s.failure(ReasonAlreadyCancelled, appt)
	}
	if appt.Date < s.today() {
		return s.failure(ReasonDatePassed, appt)
	}

	if err := s.store.MarkCancelled(ctx, id); err != nil {
		s.logger.Error("failed to cancel appointment", "appointment_id", id, "error", err)
		return s.failure(ReasonStoreError, appt)
	}

	if s.releaseClaims {
		if err := s.store.ReleaseSlotClaim(ctx, appt.ProfessionalSlug, appt.Date, appt.Time); err != nil {
			s.logger.Warn("failed to release slot claim after cancellation",
				"appointment_id", id, "error", err)
		}
	}

	s.metrics.ObserveCancellation("cancelled")
	s.logger.Info("appointment cancelled", "appointment_id", id,
		"professional", appt.ProfessionalSlug, "date", appt.Date, "time", appt.Time)
	return &Result{
		OK:          true,
		Message:     "Turno cancelado exitosamente.",
		Appointment: appt,
	}
}

func (s *Service) failure(reason Reason, appt *appointments.Appointment) *Result {
	s.metrics.ObserveCancellation(string(reason))
	return &Result{
		OK:          false,
		Reason:      reason,
		Message:     reasonMessages[reason],
		Appointment: appt,
	}
}

func (s *Service) today() string {
	return s.now().UTC().Format(schedule.DateLayout)
}
