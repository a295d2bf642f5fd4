package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/hackgods/appointment-booking/internal/booking"
)

const SlipContentType = "application/pdf"

func SlipFilename(a booking.Appointment) string {
	return "appointment-" + a.ID.String() + ".pdf"
}

// SlipPayload is the text encoded in the slip's QR code.
func SlipPayload(a booking.Appointment) string {
	return fmt.Sprintf("%s|%s|%s|%s", a.ID, a.Service, a.DateTime.Format(booking.TableLayout), a.Name)
}

// RenderSlip produces a one page PDF confirming a.
func RenderSlip(a booking.Appointment) ([]byte, error) {
	qrPNG, err := qrcode.Encode(SlipPayload(a), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	c := booking.Confirm(a)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Appointment Confirmed")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, tr("Name: "+c.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, tr("Service: "+string(c.Service)))
	pdf.Ln(8)
	pdf.Cell(0, 10, tr("Date & Time: "+c.When))
	pdf.Ln(8)
	if c.Email != "" {
		pdf.Cell(0, 10, tr("Email: "+c.Email))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, "Reference: "+a.ID.String())
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{
		ImageType: "PNG",
	}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
