package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/booking"
)

func TestWriteCSV(t *testing.T) {
	appts := []booking.Appointment{
		{Name: "Ana", Service: "Doctor", DateTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{Name: "Cy", Email: "cy@example.com", Service: "Salon", DateTime: time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)},
		{Name: "Smith, Jo", Service: "Education & Tuition Session", DateTime: time.Date(2024, 6, 2, 0, 5, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, appts); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := "name,email,service,dateTime\n" +
		"Ana,,Doctor,2024-06-01 10:00 AM\n" +
		"Cy,cy@example.com,Salon,2024-06-01 03:30 PM\n" +
		"\"Smith, Jo\",,Education & Tuition Session,2024-06-02 12:05 AM\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "name,email,service,dateTime\n" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestRenderSlip(t *testing.T) {
	a := booking.Appointment{
		ID:       uuid.MustParse("6f1c2a52-8f1e-4c55-9a8e-2a6f0c1d9b11"),
		Name:     "Zoë",
		Email:    "zoe@example.com",
		Service:  "Personal Trainer",
		DateTime: time.Date(2024, 6, 3, 18, 45, 0, 0, time.UTC),
	}

	pdf, err := RenderSlip(a)
	if err != nil {
		t.Fatalf("RenderSlip: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", pdf[:min(len(pdf), 16)])
	}

	if got := SlipPayload(a); got != "6f1c2a52-8f1e-4c55-9a8e-2a6f0c1d9b11|Personal Trainer|2024-06-03 06:45 PM|Zoë" {
		t.Fatalf("unexpected payload %q", got)
	}
	if !strings.HasSuffix(SlipFilename(a), ".pdf") {
		t.Fatalf("unexpected filename %q", SlipFilename(a))
	}
}
