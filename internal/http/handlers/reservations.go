package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/movementhq/booking-platform/internal/booking"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// ReservationHandler accepts new bookings.
type ReservationHandler struct {
	svc    *booking.Service
	logger *logging.Logger
}

// NewReservationHandler creates a reservation handler.
func NewReservationHandler(svc *booking.Service, logger *logging.Logger) *ReservationHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReservationHandler{svc: svc, logger: logger}
}

// Create handles POST /reservations.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode reservation", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Reserve(r.Context(), &req)
	if err != nil {
		var verr *booking.ValidationError
		switch {
		case errors.As(err, &verr):
			http.Error(w, verr.Error(), http.StatusBadRequest)
		case errors.Is(err, booking.ErrProfessionalNotFound):
			http.Error(w, "professional not found", http.StatusNotFound)
		case errors.Is(err, booking.ErrSlotUnavailable):
			http.Error(w, "slot no longer available", http.StatusConflict)
		default:
			h.logger.Error("reservation failed", "error", err)
			http.Error(w, "failed to create reservation", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// CheckSlot handles GET /reservations/check?professional=…&date=…&time=….
// The widget calls it right before submitting; the service re-checks again on
// the actual write.
func (h *ReservationHandler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	professional := q.Get("professional")
	date := q.Get("date")
	slotTime := q.Get("time")
	if professional == "" || date == "" || slotTime == "" {
		http.Error(w, "professional, date and time are required", http.StatusBadRequest)
		return
	}

	available := h.svc.CheckSlot(r.Context(), professional, date, slotTime)
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}
