package fluxo

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// Date is a custom type that handles date-only JSON values.
// Date-only values are read as midnight in the local calendar;
// timestamps keep their instant.
//
// UnmarshalJSON has no client to ask, so it always uses time.Local.
// Records fetched through a Client are parsed with ParseDate in
// ClientOptions.Location instead; decode other payloads with ParseDate
// when the calendar matters.
type Date struct {
	time.Time
}

// ParseDate parses a date-only or timestamp string in loc
func ParseDate(str string, loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.Local
	}

	str = strings.TrimSpace(str)
	if str == "" || str == "null" {
		return Date{}, nil
	}

	// Try parsing as date only first (YYYY-MM-DD)
	if t, err := time.ParseInLocation(DateLayout, str, loc); err == nil {
		return Date{Time: t}, nil
	}

	// Full timestamp with zone (fractional seconds accepted)
	if t, err := time.Parse(time.RFC3339, str); err == nil {
		return Date{Time: t}, nil
	}

	// Timestamp without zone is local
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", str, loc); err == nil {
		return Date{Time: t}, nil
	}

	return Date{}, fmt.Errorf("unable to parse date: %s", str)
}

// UnmarshalJSON implements json.Unmarshaler for Date.
// Date-only values become midnight in time.Local.
func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`), time.Local)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Date
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"%s"`, d.Time.Format(DateLayout))), nil
}

// String returns the date as a string
func (d Date) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Day returns the calendar day of d in loc
func (d Date) Day(loc *time.Location) (year int, month time.Month, day int) {
	if loc == nil {
		loc = time.Local
	}
	return d.Time.In(loc).Date()
}
