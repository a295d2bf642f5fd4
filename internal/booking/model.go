package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service string

// DefaultServices is the catalog offered when no override is configured.
var DefaultServices = Catalog{
	"Doctor",
	"Salon",
	"Consultant",
	"Event Planner",
	"Education & Tuition Session",
	"Personal Trainer",
	"HR/Recruitment Session",
}

// Catalog is the ordered set of service categories a booker may choose from.
type Catalog []Service

// Lookup matches name against the catalog ignoring case and surrounding
// whitespace, and returns the canonical spelling.
func (c Catalog) Lookup(name string) (Service, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, s := range c {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// ParseCatalog builds a catalog from a comma separated list, dropping blanks
// and duplicates. An empty result falls back to DefaultServices.
func ParseCatalog(raw string) Catalog {
	var out Catalog
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := out.Lookup(part); dup {
			continue
		}
		out = append(out, Service(part))
	}
	if len(out) == 0 {
		return append(Catalog(nil), DefaultServices...)
	}
	return out
}

type BookingRequest struct {
	Name     string
	Email    string
	Service  Service
	DateTime time.Time
}

type Appointment struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Service  Service
	DateTime time.Time
	BookedAt time.Time
}

// Slot is the uniqueness key of an appointment.
type Slot struct {
	Service  Service
	DateTime time.Time
}

func (a Appointment) Slot() Slot {
	return Slot{Service: a.Service, DateTime: a.DateTime}
}

func (a Appointment) HasEmail() bool {
	return strings.TrimSpace(a.Email) != ""
}
