package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPastDateTime      = errors.New("appointment time is not in the future")
	ErrSlotAlreadyBooked = errors.New("slot already booked for this service")
)

// Ledger holds the confirmed appointments of one session in admission order.
// It is not safe for concurrent use; callers serialize access per session.
type Ledger struct {
	appointments []Appointment
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Submit admits req if its time is strictly after now and its slot is free.
// The first failing check wins and a failed call leaves the ledger unchanged.
func (l *Ledger) Submit(req BookingRequest, now time.Time) (Appointment, error) {
	at := req.DateTime.Truncate(time.Minute)

	if !at.After(now) {
		return Appointment{}, ErrPastDateTime
	}

	if l.taken(req.Service, at) {
		return Appointment{}, ErrSlotAlreadyBooked
	}

	appt := Appointment{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Service:  req.Service,
		DateTime: at,
		BookedAt: now,
	}
	l.appointments = append(l.appointments, appt)

	return appt, nil
}

func (l *Ledger) taken(service Service, at time.Time) bool {
	for _, a := range l.appointments {
		if a.Service == service && a.DateTime.Equal(at) {
			return true
		}
	}
	return false
}

// List returns a copy of the ledger in admission order, never nil.
func (l *Ledger) List() []Appointment {
	out := make([]Appointment, len(l.appointments))
	copy(out, l.appointments)
	return out
}

// Find returns the appointment with the given id.
func (l *Ledger) Find(id uuid.UUID) (Appointment, bool) {
	for _, a := range l.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return Appointment{}, false
}

func (l *Ledger) Len() int {
	return len(l.appointments)
}

// Clear discards every appointment.
func (l *Ledger) Clear() {
	l.appointments = nil
}
