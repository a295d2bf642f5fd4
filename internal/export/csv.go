package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/hackgods/appointment-booking/internal/booking"
)

const (
	CSVFilename    = "appointments.csv"
	CSVContentType = "text/csv"
)

var csvHeader = []string{"name", "email", "service", "dateTime"}

// WriteCSV writes one row per appointment after the header row, in the order given.
func WriteCSV(w io.Writer, appointments []booking.Appointment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range appointments {
		row := []string{
			a.Name,
			a.Email,
			string(a.Service),
			a.DateTime.Format(booking.TableLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
