package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/booking"
	"github.com/hackgods/appointment-booking/internal/export"
	"github.com/hackgods/appointment-booking/internal/session"
)

const (
	msgPastDateTime = "Please select a future time."
	msgSlotBooked   = "This time slot is already booked for the selected service. Please choose another time."
	msgConfirmed    = "Appointment Confirmed!"
	msgCleared      = "All bookings cleared."
)

// A booking is four short fields; anything past this is not a form post.
const maxBookingBodyBytes = 16 << 10

type handlerDeps struct {
	svc      *session.Service
	services booking.Catalog
	now      func() time.Time
	loc      *time.Location
}

func listServicesHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, len(d.services))
		for i, s := range d.services {
			names[i] = string(s)
		}
		writeJSON(w, http.StatusOK, ServicesResponse{Services: names})
	}
}

func createAppointmentHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := GetSessionID(r.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "internal_error", "missing session")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBookingBodyBytes)

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "booking request body is too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		service, ok := d.services.Lookup(req.Service)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_service", "service must be one of the offered services")
			return
		}

		when, err := booking.ParseDateTime(strings.TrimSpace(req.Date), strings.TrimSpace(req.Time), d.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date_time", "date must be YYYY-MM-DD and time HH:MM")
			return
		}

		appt, err := d.svc.Submit(r.Context(), sessionID, booking.BookingRequest{
			Name:     strings.TrimSpace(req.Name),
			Email:    strings.TrimSpace(req.Email),
			Service:  service,
			DateTime: when,
		}, d.now())
		if err != nil {
			handleBookingError(w, err)
			return
		}

		c := booking.Confirm(appt)
		writeJSON(w, http.StatusCreated, ConfirmationResponse{
			Message:     msgConfirmed,
			Name:        c.Name,
			Service:     string(c.Service),
			When:        c.When,
			Email:       c.Email,
			Appointment: toAppointmentResponse(appt),
		})
	}
}

func listAppointmentsHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := GetSessionID(r.Context())

		appts, err := d.svc.List(r.Context(), sessionID, d.now())
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := ListAppointmentsResponse{
			Appointments: make([]AppointmentResponse, 0, len(appts)),
			Count:        len(appts),
		}
		for _, a := range appts {
			resp.Appointments = append(resp.Appointments, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func clearAppointmentsHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := GetSessionID(r.Context())

		if err := d.svc.Clear(r.Context(), sessionID, d.now()); err != nil {
			handleBookingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: msgCleared})
	}
}

func exportAppointmentsHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := GetSessionID(r.Context())

		appts, err := d.svc.List(r.Context(), sessionID, d.now())
		if err != nil {
			handleBookingError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, appts); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.Header().Set("Content-Type", export.CSVContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFilename+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			log.Printf("failed to write csv export: %v", err)
		}
	}
}

func appointmentSlipHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := GetSessionID(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := d.svc.Get(r.Context(), sessionID, id, d.now())
		if err != nil {
			handleBookingError(w, err)
			return
		}

		pdf, err := export.RenderSlip(appt)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.Header().Set("Content-Type", export.SlipContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.SlipFilename(appt)+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdf); err != nil {
			log.Printf("failed to write slip: %v", err)
		}
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrPastDateTime):
		writeError(w, http.StatusUnprocessableEntity, "past_date_time", msgPastDateTime)
	case errors.Is(err, booking.ErrSlotAlreadyBooked):
		writeWarning(w, http.StatusConflict, "slot_already_booked", msgSlotBooked)
	case errors.Is(err, session.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, session.ErrSessionBusy):
		writeError(w, http.StatusConflict, "session_busy", "another request for this session is in progress, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
