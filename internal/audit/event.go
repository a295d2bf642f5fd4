package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	EventAppointmentBooked = "APPOINTMENT_BOOKED"
	EventBookingRejected   = "BOOKING_REJECTED"
	EventLedgerCleared     = "LEDGER_CLEARED"
	EventSessionExpired    = "SESSION_EXPIRED"
)

// Event is an append-only record of something that happened to a session's
// ledger. Events are never read back into a ledger.
type Event struct {
	ID            int64
	EventType     string
	SessionID     uuid.UUID
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

type Sink interface {
	InsertEvent(ctx context.Context, ev Event) error
}

// LogSink writes events to the process log. Used when no database is configured.
type LogSink struct{}

func (LogSink) InsertEvent(_ context.Context, ev Event) error {
	appt := "-"
	if ev.AppointmentID != nil {
		appt = ev.AppointmentID.String()
	}
	log.Printf("event=%s session_id=%s appointment_id=%s payload=%s",
		ev.EventType, ev.SessionID, appt, ev.Payload)
	return nil
}
