// Package notify builds the WhatsApp deep links used as the out-of-band
// notification channel. Opening a link is the browser's side effect; nothing
// here confirms delivery.
package notify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/movementhq/booking-platform/internal/appointments"
	"github.com/movementhq/booking-platform/internal/directory"
	"github.com/movementhq/booking-platform/internal/phone"
)

const defaultBookingHeader = "Nuevo turno confirmado"

// ErrNoPhone indicates the professional has no usable WhatsApp number.
var ErrNoPhone = errors.New("notify: professional has no phone number")

// ContactLink pairs an outreach message with its ready-to-open deep link.
type ContactLink struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// LinkBuilder constructs wa.me deep links for a configured country code.
type LinkBuilder struct {
	baseURL        string
	countryCode    string
	defaultContact string
	signature      string
}

// NewLinkBuilder creates a builder. baseURL is typically https://wa.me.
func NewLinkBuilder(baseURL, countryCode, defaultContact, signature string) *LinkBuilder {
	return &LinkBuilder{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		countryCode:    countryCode,
		defaultContact: defaultContact,
		signature:      signature,
	}
}

// BookingLink builds the confirmation deep link sent to the professional after
// a successful reservation.
func (b *LinkBuilder) BookingLink(p *directory.Professional, appt *appointments.Appointment) (string, error) {
	if p == nil || appt == nil {
		return "", errors.New("notify: professional and appointment required")
	}

	header := p.BaseMessage
	if header == "" {
		header = defaultBookingHeader
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "%s:\n\n", header)
	fmt.Fprintf(&msg, "Fecha: %s\n", FormatDate(appt.Date))
	fmt.Fprintf(&msg, "Hora: %s\n", appt.Time)
	fmt.Fprintf(&msg, "Paciente: %s\n", appt.CustomerName)
	fmt.Fprintf(&msg, "Teléfono: %s\n", appt.Phone)
	if appt.Email != "" {
		fmt.Fprintf(&msg, "Email: %s\n", appt.Email)
	}
	if appt.Document != "" {
		fmt.Fprintf(&msg, "Documento: %s\n", appt.Document)
	}
	if b.signature != "" {
		fmt.Fprintf(&msg, "\n%s", b.signature)
	}

	return b.link(p, msg.String())
}

// ContactLinks builds the direct-contact links for a professional: one per
// configured outreach message, falling back to the base message and then to
// the default greeting.
func (b *LinkBuilder) ContactLinks(p *directory.Professional) ([]ContactLink, error) {
	if p == nil {
		return nil, errors.New("notify: professional required")
	}

	messages := p.DirectMessages
	if len(messages) == 0 && p.BaseMessage != "" {
		messages = []string{p.BaseMessage}
	}
	if len(messages) == 0 {
		messages = []string{b.defaultContact}
	}

	links := make([]ContactLink, 0, len(messages))
	for _, msg := range messages {
		u, err := b.link(p, msg)
		if err != nil {
			return nil, err
		}
		links = append(links, ContactLink{Message: msg, URL: u})
	}
	return links, nil
}

func (b *LinkBuilder) link(p *directory.Professional, text string) (string, error) {
	if p.Phone == "" {
		return "", ErrNoPhone
	}
	number, err := phone.ForWhatsApp(p.Phone, b.countryCode)
	if err != nil {
		return "", fmt.Errorf("notify: professional %s: %w", p.Slug, err)
	}
	return fmt.Sprintf("%s/%s?text=%s", b.baseURL, number, url.QueryEscape(text)), nil
}

// FormatDate renders an ISO date as DD/MM/YYYY for message text. Unparseable
// input is passed through unchanged.
func FormatDate(isoDate string) string {
	parts := strings.Split(isoDate, "-")
	if len(parts) != 3 {
		return isoDate
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
