package directory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// Handler serves the professional directory over HTTP.
type Handler struct {
	cache  *Cache
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a directory handler.
func NewHandler(cache *Cache, repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{cache: cache, repo: repo, logger: logger}
}

// ListResponse is the payload for directory listings.
type ListResponse struct {
	Professionals []*Professional `json:"professionals"`
	Count         int             `json:"count"`
}

// List handles GET /professionals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.cache.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to load directory", "error", err)
		http.Error(w, "failed to load professionals", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Professionals: snapshot, Count: len(snapshot)})
}

// Refresh handles POST /professionals/refresh and returns the new snapshot.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.cache.Refresh(r.Context())
	if err != nil {
		h.logger.Error("failed to refresh directory", "error", err)
		http.Error(w, "failed to refresh professionals", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Professionals: snapshot, Count: len(snapshot)})
}

// Get handles GET /professionals/{slug}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.cache.Lookup(r.Context(), slug)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "professional not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load professional", "slug", slug, "error", err)
		http.Error(w, "failed to load professional", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Upsert handles PUT /admin/professionals/{slug}. The slug in the URL wins over
// any slug in the body; an empty URL slug creates a new entry keyed by name.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var p Professional
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.logger.Error("failed to decode professional", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if slug := chi.URLParam(r, "slug"); slug != "" {
		p.Slug = slug
	}

	saved, err := h.repo.Put(r.Context(), &p)
	if err != nil {
		h.logger.Error("failed to save professional", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.cache.Refresh(r.Context()); err != nil {
		h.logger.Warn("directory refresh after upsert failed", "error", err)
	}

	h.logger.Info("professional saved", "slug", saved.Slug, "kind", saved.Kind)
	writeJSON(w, http.StatusOK, saved)
}

// Delete handles DELETE /admin/professionals/{slug}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		http.Error(w, "missing slug", http.StatusBadRequest)
		return
	}
	if err := h.repo.Delete(r.Context(), slug); err != nil {
		h.logger.Error("failed to delete professional", "slug", slug, "error", err)
		http.Error(w, "failed to delete professional", http.StatusInternalServerError)
		return
	}
	if _, err := h.cache.Refresh(r.Context()); err != nil {
		h.logger.Warn("directory refresh after delete failed", "error", err)
	}

	h.logger.Info("professional deleted", "slug", slug)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
