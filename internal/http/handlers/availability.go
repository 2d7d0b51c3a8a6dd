// Package handlers exposes the booking flows over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/movementhq/booking-platform/internal/directory"
	"github.com/movementhq/booking-platform/internal/notify"
	"github.com/movementhq/booking-platform/internal/observability/metrics"
	"github.com/movementhq/booking-platform/internal/schedule"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// AvailabilityHandler resolves bookable slots for a professional and date.
type AvailabilityHandler struct {
	cache    *directory.Cache
	resolver *schedule.Resolver
	links    *notify.LinkBuilder
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewAvailabilityHandler creates an availability handler.
func NewAvailabilityHandler(cache *directory.Cache, resolver *schedule.Resolver, links *notify.LinkBuilder, m *metrics.BookingMetrics, logger *logging.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{cache: cache, resolver: resolver, links: links, metrics: m, logger: logger}
}

// AvailabilityResponse lists the free slots of a professional on a date.
type AvailabilityResponse struct {
	Professional string   `json:"professional"`
	Date         string   `json:"date"`
	Slots        []string `json:"slots"`
}

// GetAvailability handles GET /professionals/{slug}/availability?date=YYYY-MM-DD.
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "missing date parameter", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	prof, err := h.cache.Lookup(r.Context(), slug)
	if errors.Is(err, directory.ErrNotFound) {
		http.Error(w, "professional not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load professional", "slug", slug, "error", err)
		http.Error(w, "failed to load professional", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	slots, err := h.resolver.SlotsForDate(r.Context(), prof, date)
	h.metrics.ObserveAvailabilityLatency(time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("failed to resolve availability", "slug", slug, "date", date, "error", err)
		http.Error(w, "failed to resolve availability", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []string{}
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Professional: slug,
		Date:         date,
		Slots:        slots,
	})
}

// ContactLinksResponse carries the direct WhatsApp links for a professional.
type ContactLinksResponse struct {
	Professional string               `json:"professional"`
	Links        []notify.ContactLink `json:"links"`
}

// GetContactLinks handles GET /professionals/{slug}/contact-links.
func (h *AvailabilityHandler) GetContactLinks(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	prof, err := h.cache.Lookup(r.Context(), slug)
	if errors.Is(err, directory.ErrNotFound) {
		http.Error(w, "professional not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load professional", "slug", slug, "error", err)
		http.Error(w, "failed to load professional", http.StatusInternalServerError)
		return
	}

	links, err := h.links.ContactLinks(prof)
	if err != nil {
		h.logger.Error("failed to build contact links", "slug", slug, "error", err)
		http.Error(w, "professional has no usable contact number", http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, ContactLinksResponse{Professional: slug, Links: links})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
