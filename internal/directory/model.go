// Package directory manages the catalog of bookable professionals.
package directory

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind tags how a professional's schedule is defined.
type Kind string

const (
	// KindPeriodic professionals follow a recurring weekly template, optionally
	// overridden on specific dates.
	KindPeriodic Kind = "periodic"
	// KindSporadic professionals are only bookable on explicitly listed dates.
	KindSporadic Kind = "sporadic"
)

// Weekly holds the recurring template, indexed by time.Weekday (Sunday = 0).
type Weekly [7][]string

// ForDay returns the slot times configured for the given weekday.
func (w Weekly) ForDay(d time.Weekday) []string {
	if d < 0 || int(d) >= len(w) {
		return nil
	}
	return w[d]
}

// IsEmpty reports whether no weekday has any slots.
func (w Weekly) IsEmpty() bool {
	for _, times := range w {
		if len(times) > 0 {
			return false
		}
	}
	return true
}

// Professional is a resolved directory entry. The schedule shape is fixed at
// load time by Kind, so callers never sniff optional fields.
type Professional struct {
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Kind           Kind     `json:"kind"`
	Phone          string   `json:"phone"`
	Icon           string   `json:"icon,omitempty"`
	WhatsAppOnly   bool     `json:"whatsappOnly,omitempty"`
	BaseMessage    string   `json:"baseMessage,omitempty"`
	DirectMessages []string `json:"directMessages,omitempty"`

	// Weekly is populated for periodic professionals only.
	Weekly Weekly `json:"weeklySchedule,omitempty"`
	// DateSchedule maps YYYY-MM-DD to slot times. For sporadic professionals it
	// is the entire schedule; for periodic ones it overrides the weekly template
	// on the listed dates.
	DateSchedule map[string][]string `json:"dateSchedule,omitempty"`
	// DaysOff are dates excluded from booking regardless of any schedule entry.
	DaysOff []string `json:"daysOff,omitempty"`
}

// HasDayOff reports whether the date (YYYY-MM-DD) is a non-working date.
func (p *Professional) HasDayOff(date string) bool {
	for _, d := range p.DaysOff {
		if d == date {
			return true
		}
	}
	return false
}

// record is the raw DynamoDB item shape for a professional.
type record struct {
	Slug           string              `dynamodbav:"slug"`
	Name           string              `dynamodbav:"name"`
	Specialty      string              `dynamodbav:"specialty,omitempty"`
	Kind           string              `dynamodbav:"kind,omitempty"`
	Phone          string              `dynamodbav:"phone"`
	Icon           string              `dynamodbav:"icon,omitempty"`
	WhatsAppOnly   bool                `dynamodbav:"whatsappOnly,omitempty"`
	BaseMessage    string              `dynamodbav:"baseMessage,omitempty"`
	DirectMessages []string            `dynamodbav:"directMessages,omitempty"`
	Weekly         map[string][]string `dynamodbav:"weeklySchedule,omitempty"`
	DateSchedule   map[string][]string `dynamodbav:"dateSchedule,omitempty"`
	DaysOff        []string            `dynamodbav:"daysOff,omitempty"`
}

// resolve converts a raw store item into a tagged Professional. A missing kind
// means periodic, matching how legacy records were written.
func (r *record) resolve() (*Professional, error) {
	p := &Professional{
		Slug:           r.Slug,
		Name:           r.Name,
		Specialty:      r.Specialty,
		Phone:          r.Phone,
		Icon:           r.Icon,
		WhatsAppOnly:   r.WhatsAppOnly,
		BaseMessage:    r.BaseMessage,
		DirectMessages: r.DirectMessages,
		DateSchedule:   r.DateSchedule,
	}

	switch r.Kind {
	case "", string(KindPeriodic):
		p.Kind = KindPeriodic
		for key, times := range r.Weekly {
			day, err := strconv.Atoi(key)
			if err != nil || day < 0 || day > 6 {
				return nil, fmt.Errorf("directory: professional %s has invalid weekday %q", r.Slug, key)
			}
			p.Weekly[day] = times
		}
	case string(KindSporadic):
		p.Kind = KindSporadic
	default:
		return nil, fmt.Errorf("directory: professional %s has unknown kind %q", r.Slug, r.Kind)
	}

	if len(r.DaysOff) > 0 {
		p.DaysOff = append([]string(nil), r.DaysOff...)
		sort.Strings(p.DaysOff)
	}

	return p, nil
}

// toRecord flattens a Professional back into the store item shape.
func toRecord(p *Professional) *record {
	r := &record{
		Slug:           p.Slug,
		Name:           p.Name,
		Specialty:      p.Specialty,
		Kind:           string(p.Kind),
		Phone:          p.Phone,
		Icon:           p.Icon,
		WhatsAppOnly:   p.WhatsAppOnly,
		BaseMessage:    p.BaseMessage,
		DirectMessages: p.DirectMessages,
		DateSchedule:   p.DateSchedule,
	}

	if p.Kind == KindPeriodic && !p.Weekly.IsEmpty() {
		r.Weekly = make(map[string][]string)
		for day, times := range p.Weekly {
			if len(times) > 0 {
				r.Weekly[strconv.Itoa(day)] = times
			}
		}
	}

	if len(p.DaysOff) > 0 {
		r.DaysOff = append([]string(nil), p.DaysOff...)
		sort.Strings(r.DaysOff)
	}

	return r
}
