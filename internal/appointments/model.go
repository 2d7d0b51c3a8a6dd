// Package appointments persists booking records. Appointments are never
// deleted by the normal flow; cancellation is a state transition.
package appointments

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Appointment is a persisted booking record.
type Appointment struct {
	ID               string `dynamodbav:"id" json:"id"`
	ProfessionalSlug string `dynamodbav:"professionalSlug" json:"professionalSlug"`
	// SlotKey is professionalSlug#date, the partition key of the slot index.
	SlotKey      string `dynamodbav:"slotKey" json:"-"`
	Date         string `dynamodbav:"date" json:"date"` // YYYY-MM-DD
	Time         string `dynamodbav:"time" json:"time"` // HH:MM, 24-hour
	CustomerName string `dynamodbav:"customerName" json:"customerName"`
	Phone        string `dynamodbav:"phone" json:"phone"`
	Email        string `dynamodbav:"email,omitempty" json:"email,omitempty"`
	Document     string `dynamodbav:"document" json:"document"`
	Status       Status `dynamodbav:"status" json:"status"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
	CancelledAt  string `dynamodbav:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// Active reports whether the appointment still occupies its slot.
func (a *Appointment) Active() bool {
	return a.Status != StatusCancelled
}

// slotKey builds the composite partition key for the slot index.
func slotKey(professional, date string) string {
	return professional + "#" + date
}
