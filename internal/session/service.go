package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/audit"
	"github.com/hackgods/appointment-booking/internal/booking"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Service runs booking operations against the ledger of one session at a
// time and records what happened to the audit sink.
type Service struct {
	registry *Registry
	locker   Locker
	events   audit.Sink
}

func NewService(registry *Registry, locker Locker, events audit.Sink) *Service {
	if events == nil {
		events = audit.LogSink{}
	}
	return &Service{
		registry: registry,
		locker:   locker,
		events:   events,
	}
}

// Submit admits req into the session's ledger, evaluated against now.
func (s *Service) Submit(ctx context.Context, sessionID uuid.UUID, req booking.BookingRequest, now time.Time) (booking.Appointment, error) {
	var created booking.Appointment

	err := s.locker.WithSessionLock(ctx, sessionID, func(lockCtx context.Context) error {
		ledger := s.registry.Open(sessionID, now)

		appt, err := ledger.Submit(req, now)
		if err != nil {
			s.logEvent(lockCtx, sessionID, nil, audit.EventBookingRejected, map[string]any{
				"service":   req.Service,
				"date_time": req.DateTime,
				"reason":    rejectReason(err),
			})
			return err
		}

		created = appt
		s.logEvent(lockCtx, sessionID, &appt.ID, audit.EventAppointmentBooked, map[string]any{
			"name":      appt.Name,
			"email":     appt.Email,
			"service":   appt.Service,
			"date_time": appt.DateTime,
		})
		return nil
	})
	if err != nil {
		return booking.Appointment{}, err
	}

	return created, nil
}

// List returns the session's appointments in admission order.
func (s *Service) List(ctx context.Context, sessionID uuid.UUID, now time.Time) ([]booking.Appointment, error) {
	out := []booking.Appointment{}

	err := s.locker.WithSessionLock(ctx, sessionID, func(context.Context) error {
		if ledger, ok := s.registry.Lookup(sessionID, now); ok {
			out = ledger.List()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single appointment of the session.
func (s *Service) Get(ctx context.Context, sessionID, id uuid.UUID, now time.Time) (booking.Appointment, error) {
	var found booking.Appointment

	err := s.locker.WithSessionLock(ctx, sessionID, func(context.Context) error {
		ledger, ok := s.registry.Lookup(sessionID, now)
		if !ok {
			return ErrAppointmentNotFound
		}
		appt, ok := ledger.Find(id)
		if !ok {
			return ErrAppointmentNotFound
		}
		found = appt
		return nil
	})
	if err != nil {
		return booking.Appointment{}, err
	}
	return found, nil
}

// Clear empties the session's ledger. Clearing an unknown or empty session is a no-op.
func (s *Service) Clear(ctx context.Context, sessionID uuid.UUID, now time.Time) error {
	return s.locker.WithSessionLock(ctx, sessionID, func(lockCtx context.Context) error {
		ledger, ok := s.registry.Lookup(sessionID, now)
		if !ok {
			return nil
		}
		discarded := ledger.Len()
		ledger.Clear()
		s.logEvent(lockCtx, sessionID, nil, audit.EventLedgerCleared, map[string]any{
			"discarded": discarded,
		})
		return nil
	})
}

// ExpireIdleSessions is called periodically by the sweeper loop.
func (s *Service) ExpireIdleSessions(ctx context.Context, now time.Time, ttl time.Duration) int {
	expired := s.registry.Sweep(now, ttl)
	for id, discarded := range expired {
		s.logEvent(ctx, id, nil, audit.EventSessionExpired, map[string]any{
			"discarded": discarded,
			"idle_ttl":  ttl.String(),
		})
	}
	return len(expired)
}

func (s *Service) ActiveSessions() int {
	return s.registry.Len()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, booking.ErrPastDateTime):
		return "past_date_time"
	case errors.Is(err, booking.ErrSlotAlreadyBooked):
		return "slot_already_booked"
	default:
		return "unknown"
	}
}

func (s *Service) logEvent(ctx context.Context, sessionID uuid.UUID, appointmentID *uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	ev := audit.Event{
		EventType:     eventType,
		SessionID:     sessionID,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.events.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event %s for session %s: %v", eventType, sessionID, err)
	}
}
