package booking

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func TestLedger_Scenarios(t *testing.T) {
	l := NewLedger()

	ana, err := l.Submit(BookingRequest{Name: "Ana", Service: "Doctor", DateTime: at(1, 10, 0)}, now)
	if err != nil {
		t.Fatalf("submit Ana: %v", err)
	}
	if ana.Name != "Ana" || !ana.DateTime.Equal(at(1, 10, 0)) || !ana.BookedAt.Equal(now) {
		t.Fatalf("unexpected appointment %+v", ana)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}

	_, err = l.Submit(BookingRequest{Name: "Bo", Service: "Doctor", DateTime: at(1, 10, 0)}, now)
	if !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Fatalf("expected ErrSlotAlreadyBooked, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry after duplicate, got %d", l.Len())
	}

	if _, err := l.Submit(BookingRequest{Name: "Cy", Service: "Salon", DateTime: at(1, 10, 0)}, now); err != nil {
		t.Fatalf("submit Cy: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}

	_, err = l.Submit(BookingRequest{Name: "Di", Service: "Doctor", DateTime: time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC)}, now)
	if !errors.Is(err, ErrPastDateTime) {
		t.Fatalf("expected ErrPastDateTime, got %v", err)
	}

	got := l.List()
	if len(got) != 2 || got[0].Name != "Ana" || got[1].Name != "Cy" {
		t.Fatalf("unexpected ledger %+v", got)
	}

	l.Clear()
	if got := l.List(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list after clear, got %#v", got)
	}
}

func TestLedger_Submit_CheckOrder(t *testing.T) {
	tests := []struct {
		name    string
		when    time.Time
		service Service
		wantErr error
	}{
		{"exactly now is past", now, "Doctor", ErrPastDateTime},
		{"one minute ahead", now.Add(time.Minute), "Doctor", nil},
		{"past slot that is also taken reports past", at(1, 8, 0), "Salon", ErrPastDateTime},
		{"taken slot", at(1, 11, 0), "Salon", ErrSlotAlreadyBooked},
		{"taken slot with seconds", at(1, 11, 0).Add(42 * time.Second), "Salon", ErrSlotAlreadyBooked},
		{"same time other service", at(1, 11, 0), "Doctor", nil},
		{"quarter past is not a conflict", at(1, 11, 15), "Salon", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			if _, err := l.Submit(BookingRequest{Name: "seed", Service: "Salon", DateTime: at(1, 11, 0)}, now); err != nil {
				t.Fatalf("seed: %v", err)
			}
			// seed an appointment that is in the past relative to a later clock
			if _, err := l.Submit(BookingRequest{Name: "early", Service: "Salon", DateTime: at(1, 8, 0)}, at(1, 7, 0)); err != nil {
				t.Fatalf("seed early: %v", err)
			}

			before := l.List()
			_, err := l.Submit(BookingRequest{Name: "x", Service: tc.service, DateTime: tc.when}, now)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				after := l.List()
				if len(after) != len(before) {
					t.Fatalf("failed submit changed ledger: %d -> %d", len(before), len(after))
				}
				for i := range before {
					if before[i] != after[i] {
						t.Fatalf("failed submit changed entry %d", i)
					}
				}
			}
		})
	}
}

func TestLedger_TruncatesToMinute(t *testing.T) {
	l := NewLedger()
	appt, err := l.Submit(BookingRequest{Service: "Doctor", DateTime: at(2, 10, 0).Add(59 * time.Second)}, now)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !appt.DateTime.Equal(at(2, 10, 0)) {
		t.Fatalf("expected minute precision, got %s", appt.DateTime)
	}
}

func TestLedger_PastIsJudgedAfterTruncation(t *testing.T) {
	clock := at(2, 10, 0).Add(30 * time.Second)

	tests := []struct {
		name    string
		when    time.Time
		wantErr error
	}{
		{"same minute, later seconds", at(2, 10, 0).Add(59 * time.Second), ErrPastDateTime},
		{"same minute, exact", at(2, 10, 0), ErrPastDateTime},
		{"next minute", at(2, 10, 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			_, err := l.Submit(BookingRequest{Service: "Doctor", DateTime: tt.when}, clock)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && l.Len() != 0 {
				t.Fatalf("rejected booking was stored")
			}
		})
	}
}

func TestLedger_Properties(t *testing.T) {
	l := NewLedger()
	services := []Service{"Doctor", "Salon", "Consultant"}

	var admitted []string
	clock := now
	for i := 0; i < 60; i++ {
		clock = clock.Add(7 * time.Minute)
		req := BookingRequest{
			Name:     string(rune('a' + i%26)),
			Service:  services[i%len(services)],
			DateTime: now.Add(time.Duration(i%11) * 30 * time.Minute),
		}
		before := l.Len()
		appt, err := l.Submit(req, clock)
		if err != nil {
			if l.Len() != before {
				t.Fatalf("failed submit %d changed ledger length", i)
			}
			continue
		}
		if !appt.DateTime.After(clock) {
			t.Fatalf("admitted %s at clock %s", appt.DateTime, clock)
		}
		admitted = append(admitted, appt.ID.String())
	}

	got := l.List()
	if len(got) != len(admitted) {
		t.Fatalf("expected %d appointments, got %d", len(admitted), len(got))
	}

	seen := make(map[Slot]bool)
	for i, a := range got {
		if a.ID.String() != admitted[i] {
			t.Fatalf("order mismatch at %d", i)
		}
		key := Slot{Service: a.Service, DateTime: a.DateTime.UTC()}
		if seen[key] {
			t.Fatalf("duplicate slot %+v", key)
		}
		seen[key] = true
	}

	l.Clear()
	l.Clear()
	if l.Len() != 0 || len(l.List()) != 0 {
		t.Fatalf("expected empty ledger after double clear")
	}
}

func TestLedger_ListIsACopy(t *testing.T) {
	l := NewLedger()
	if _, err := l.Submit(BookingRequest{Name: "Ana", Service: "Doctor", DateTime: at(1, 10, 0)}, now); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got := l.List()
	got[0].Name = "changed"
	if l.List()[0].Name != "Ana" {
		t.Fatalf("List exposed internal storage")
	}
}

func TestLedger_Find(t *testing.T) {
	l := NewLedger()
	appt, err := l.Submit(BookingRequest{Name: "Ana", Service: "Doctor", DateTime: at(1, 10, 0)}, now)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got, ok := l.Find(appt.ID); !ok || got.Name != "Ana" {
		t.Fatalf("Find returned %+v, %v", got, ok)
	}
	l.Clear()
	if _, ok := l.Find(appt.ID); ok {
		t.Fatalf("expected appointment to be gone after clear")
	}
}
