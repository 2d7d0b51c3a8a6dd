package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/movementhq/booking-platform/internal/phone"
	"github.com/movementhq/booking-platform/internal/schedule"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	timePattern  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

	titleCaser = cases.Title(language.Spanish)
)

// ValidationError describes a rejected reservation field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: invalid %s: %s", e.Field, e.Reason)
}

// Request is a reservation payload as submitted by the widget.
type Request struct {
	ProfessionalSlug string `json:"professionalSlug"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	CustomerName     string `json:"customerName"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Document         string `json:"document"`
}

// normalize validates the request in place: trims fields, capitalizes the
// customer name, and rewrites the phone to its international digit form.
func (r *Request) normalize(countryCode string) error {
	r.ProfessionalSlug = strings.TrimSpace(r.ProfessionalSlug)
	if r.ProfessionalSlug == "" {
		return &ValidationError{Field: "professionalSlug", Reason: "required"}
	}

	r.Date = strings.TrimSpace(r.Date)
	if _, err := time.Parse(schedule.DateLayout, r.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	r.Time = strings.TrimSpace(r.Time)
	if !timePattern.MatchString(r.Time) {
		return &ValidationError{Field: "time", Reason: "must be HH:MM (24-hour)"}
	}

	r.CustomerName = strings.TrimSpace(r.CustomerName)
	if r.CustomerName == "" {
		return &ValidationError{Field: "customerName", Reason: "required"}
	}
	r.CustomerName = CapitalizeName(r.CustomerName)

	normalized, err := phone.Normalize(r.Phone, countryCode)
	if err != nil {
		return &ValidationError{Field: "phone", Reason: "must have at least 10 digits"}
	}
	r.Phone = normalized

	r.Email = strings.TrimSpace(r.Email)
	if r.Email != "" && !emailPattern.MatchString(r.Email) {
		return &ValidationError{Field: "email", Reason: "invalid format"}
	}

	r.Document = strings.TrimSpace(r.Document)
	if r.Document == "" {
		return &ValidationError{Field: "document", Reason: "required"}
	}

	return nil
}

// CapitalizeName title-cases each word of a customer name.
func CapitalizeName(name string) string {
	return titleCaser.String(strings.ToLower(name))
}
