package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/movementhq/booking-platform/internal/appointments"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// AppointmentDeleter removes appointment records permanently.
type AppointmentDeleter interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// AdminAppointmentsHandler exposes the administrative hard-delete. The booking
// flow itself never deletes records.
type AdminAppointmentsHandler struct {
	repo   AppointmentDeleter
	logger *logging.Logger
}

// NewAdminAppointmentsHandler creates the admin appointments handler.
func NewAdminAppointmentsHandler(repo AppointmentDeleter, logger *logging.Logger) *AdminAppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{repo: repo, logger: logger}
}

// Delete handles DELETE /admin/appointments/{id}.
func (h *AdminAppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	if _, err := h.repo.Get(r.Context(), id); err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "appointment_id", id, "error", err)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete appointment", "appointment_id", id, "error", err)
		http.Error(w, "failed to delete appointment", http.StatusInternalServerError)
		return
	}

	h.logger.Info("appointment deleted permanently", "appointment_id", id)
	w.WriteHeader(http.StatusNoContent)
}
