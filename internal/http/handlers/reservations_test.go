package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/movementhq/booking-platform/internal/appointments"
	"github.com/movementhq/booking-platform/internal/booking"
	"github.com/movementhq/booking-platform/internal/directory"
	"github.com/movementhq/booking-platform/internal/notify"
	"github.com/movementhq/booking-platform/pkg/logging"
)

type stubBookingStore struct {
	free     bool
	freeErr  error
	createID string
}

func (s *stubBookingStore) IsSlotFree(ctx context.Context, professional, date, slotTime string) (bool, error) {
	return s.free, s.freeErr
}

func (s *stubBookingStore) Create(ctx context.Context, appt *appointments.Appointment) (string, error) {
	appt.ID = s.createID
	appt.Status = appointments.StatusConfirmed
	return appt.ID, nil
}

func (s *stubBookingStore) ClaimSlot(ctx context.Context, professional, date, slotTime string) error {
	return nil
}

func (s *stubBookingStore) ReleaseSlotClaim(ctx context.Context, professional, date, slotTime string) error {
	return nil
}

type stubBookingDirectory struct {
	professional *directory.Professional
	err          error
}

func (s *stubBookingDirectory) Lookup(ctx context.Context, slug string) (*directory.Professional, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.professional, nil
}

func newReservationRouter(store booking.Store, dir booking.Directory) http.Handler {
	links := notify.NewLinkBuilder("https://wa.me", "54", "Hola!", "Movement")
	svc := booking.NewService(store, dir, links, nil, "54", false, logging.Default())
	h := NewReservationHandler(svc, logging.Default())

	r := chi.NewRouter()
	r.Post("/reservations", h.Create)
	r.Get("/reservations/check", h.CheckSlot)
	return r
}

const reservationBody = `{
	"professionalSlug": "maria-lopez",
	"date": "2025-06-11",
	"time": "09:30",
	"customerName": "ana gómez",
	"phone": "11 5555-2222",
	"document": "30123456"
}`

func TestCreateReservation(t *testing.T) {
	store := &stubBookingStore{free: true, createID: "appt-1"}
	router := newReservationRouter(store, &stubBookingDirectory{professional: availabilityProfessional()})

	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(reservationBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var result booking.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Appointment.ID != "appt-1" {
		t.Fatalf("unexpected appointment: %#v", result.Appointment)
	}
	if result.WhatsAppLink == "" {
		t.Fatal("expected WhatsApp link in response")
	}
}

func TestCreateReservation_InvalidBody(t *testing.T) {
	router := newReservationRouter(&stubBookingStore{free: true}, &stubBookingDirectory{professional: availabilityProfessional()})

	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateReservation_ValidationFailure(t *testing.T) {
	router := newReservationRouter(&stubBookingStore{free: true}, &stubBookingDirectory{professional: availabilityProfessional()})

	body := strings.Replace(reservationBody, "09:30", "9h30", 1)
	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "time") {
		t.Fatalf("expected field name in error, got %q", rec.Body.String())
	}
}

func TestCreateReservation_UnknownProfessional(t *testing.T) {
	router := newReservationRouter(&stubBookingStore{free: true}, &stubBookingDirectory{err: directory.ErrNotFound})

	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(reservationBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateReservation_Conflict(t *testing.T) {
	router := newReservationRouter(&stubBookingStore{free: false}, &stubBookingDirectory{professional: availabilityProfessional()})

	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(reservationBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCheckSlot(t *testing.T) {
	router := newReservationRouter(&stubBookingStore{free: true}, &stubBookingDirectory{professional: availabilityProfessional()})

	req := httptest.NewRequest(http.MethodGet, "/reservations/check?professional=maria-lopez&date=2025-06-11&time=09:30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp["available"] {
		t.Fatal("expected available slot")
	}
}

func TestCheckSlot_StoreErrorReportsTaken(t *testing.T) {
	router := newReservationRouter(&stubBookingStore{freeErr: errors.New("query failed")}, &stubBookingDirectory{professional: availabilityProfessional()})

	req := httptest.NewRequest(http.MethodGet, "/reservations/check?professional=maria-lopez&date=2025-06-11&time=09:30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["available"] {
		t.Fatal("expected store failure to report the slot as taken")
	}
}

func TestCheckSlot_MissingParams(t *testing.T) {
	router := newReservationRouter(&stubBookingStore{free: true}, &stubBookingDirectory{professional: availabilityProfessional()})

	req := httptest.NewRequest(http.MethodGet, "/reservations/check?professional=maria-lopez", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
