package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/booking"
)

type CreateAppointmentRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Date    string `json:"date"` // YYYY-MM-DD
	Time    string `json:"time"` // HH:MM, 24h
}

type AppointmentResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Service  string    `json:"service"`
	DateTime time.Time `json:"date_time"`
	Display  string    `json:"display"`
}

type ConfirmationResponse struct {
	Message     string              `json:"message"`
	Name        string              `json:"name"`
	Service     string              `json:"service"`
	When        string              `json:"when"`
	Email       string              `json:"email,omitempty"`
	Appointment AppointmentResponse `json:"appointment"`
}

type ListAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Count        int                   `json:"count"`
}

type ServicesResponse struct {
	Services []string `json:"services"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Severity string `json:"severity,omitempty"`
}

func toAppointmentResponse(a booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Service:  string(a.Service),
		DateTime: a.DateTime,
		Display:  a.DateTime.Format(booking.TableLayout),
	}
}
