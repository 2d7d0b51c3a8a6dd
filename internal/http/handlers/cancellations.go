package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/movementhq/booking-platform/internal/appointments"
	"github.com/movementhq/booking-platform/internal/cancellation"
	"github.com/movementhq/booking-platform/internal/phone"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// CancellationHandler serves the self-service cancellation flow.
type CancellationHandler struct {
	svc    *cancellation.Service
	logger *logging.Logger
}

// NewCancellationHandler creates a cancellation handler.
func NewCancellationHandler(svc *cancellation.Service, logger *logging.Logger) *CancellationHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CancellationHandler{svc: svc, logger: logger}
}

// LookupResponse lists a customer's upcoming appointments.
type LookupResponse struct {
	Appointments []*appointments.Appointment `json:"appointments"`
	Count        int                         `json:"count"`
}

// Lookup handles GET /cancellations?document=… or ?phone=….
func (h *CancellationHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	document := r.URL.Query().Get("document")
	rawPhone := r.URL.Query().Get("phone")

	var (
		appts []*appointments.Appointment
		err   error
	)
	switch {
	case document != "":
		appts, err = h.svc.LookupByDocument(r.Context(), document)
	case rawPhone != "":
		appts, err = h.svc.LookupByPhone(r.Context(), rawPhone)
	default:
		http.Error(w, "document or phone parameter required", http.StatusBadRequest)
		return
	}

	if errors.Is(err, phone.ErrTooShort) {
		http.Error(w, "phone must have at least 10 digits", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("appointment lookup failed", "error", err)
		http.Error(w, "failed to look up appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []*appointments.Appointment{}
	}

	writeJSON(w, http.StatusOK, LookupResponse{Appointments: appts, Count: len(appts)})
}

// Cancel handles POST /cancellations/{id}.
func (h *CancellationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	result := h.svc.Cancel(r.Context(), id)
	writeJSON(w, cancelStatus(result), result)
}

func cancelStatus(result *cancellation.Result) int {
	if result.OK {
		return http.StatusOK
	}
	switch result.Reason {
	case cancellation.ReasonNotFound:
		return http.StatusNotFound
	case cancellation.ReasonAlreadyCancelled, cancellation.ReasonDatePassed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
