package booking

import "time"

const (
	// LongLayout renders a confirmation date, e.g. "Monday, 03 June 2024 at 10:00 AM".
	LongLayout = "Monday, 02 January 2006 at 03:04 PM"
	// TableLayout renders a date in listings and exports, e.g. "2024-06-03 10:00 AM".
	TableLayout = "2006-01-02 03:04 PM"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Confirmation struct {
	Name    string
	Service Service
	When    string
	Email   string
}

func Confirm(a Appointment) Confirmation {
	c := Confirmation{
		Name:    a.Name,
		Service: a.Service,
		When:    a.DateTime.Format(LongLayout),
	}
	if a.HasEmail() {
		c.Email = a.Email
	}
	return c
}

// ParseDateTime combines a form date ("2006-01-02") and time of day ("15:04")
// into a wall-clock instant in loc.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(TimeLayout, clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
