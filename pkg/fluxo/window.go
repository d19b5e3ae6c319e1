package fluxo

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthLayout is the YYYY-MM key format of a month
const MonthLayout = "2006-01"

// MonthWindow is one calendar month in a location. It drives the fetch
// range and the length of the daily cash series.
type MonthWindow struct {
	Year     int
	Month    time.Month
	Location *time.Location
}

// NewMonthWindow returns the window for year/month in loc (local time when nil).
// Out-of-range months roll over the way time.Date does.
func NewMonthWindow(year int, month time.Month, loc *time.Location) MonthWindow {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return MonthWindow{Year: first.Year(), Month: first.Month(), Location: loc}
}

// MonthOf returns the window containing t, in t's location
func MonthOf(t time.Time) MonthWindow {
	return NewMonthWindow(t.Year(), t.Month(), t.Location())
}

// ParseMonth parses a YYYY-MM key
func ParseMonth(key string, loc *time.Location) (MonthWindow, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(MonthLayout, key, loc)
	if err != nil {
		return MonthWindow{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", key, err)
	}
	return NewMonthWindow(t.Year(), t.Month(), loc), nil
}

func (w MonthWindow) loc() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

// FirstDay is midnight of the first day of the month
func (w MonthWindow) FirstDay() time.Time {
	return time.Date(w.Year, w.Month, 1, 0, 0, 0, 0, w.loc())
}

// LastDay is midnight of the last day of the month
func (w MonthWindow) LastDay() time.Time {
	return time.Date(w.Year, w.Month+1, 0, 0, 0, 0, 0, w.loc())
}

// DaysInMonth is the number of calendar days in the month (28 to 31)
func (w MonthWindow) DaysInMonth() int {
	return w.LastDay().Day()
}

// From is the first instant of the month
func (w MonthWindow) From() time.Time {
	return w.FirstDay()
}

// To is the last instant of the month
func (w MonthWindow) To() time.Time {
	return w.FirstDay().AddDate(0, 1, 0).Add(-time.Millisecond)
}

// Next returns the following month
func (w MonthWindow) Next() MonthWindow {
	return w.Add(1)
}

// Prev returns the preceding month
func (w MonthWindow) Prev() MonthWindow {
	return w.Add(-1)
}

// Add moves the window by n months
func (w MonthWindow) Add(n int) MonthWindow {
	return NewMonthWindow(w.Year, w.Month+time.Month(n), w.loc())
}

// Contains reports whether t falls on a calendar day of the month in the window's location
func (w MonthWindow) Contains(t time.Time) bool {
	y, m, _ := t.In(w.loc()).Date()
	return y == w.Year && m == w.Month
}

// Key returns the YYYY-MM key of the month
func (w MonthWindow) Key() string {
	return w.FirstDay().Format(MonthLayout)
}

// Label returns a display label such as "August 2025"
func (w MonthWindow) Label() string {
	return w.FirstDay().Format("January 2006")
}

// String implements fmt.Stringer
func (w MonthWindow) String() string {
	return w.Key()
}

// IsZero reports whether the window is unset
func (w MonthWindow) IsZero() bool {
	return w.Year == 0 && w.Month == 0
}

// MarshalJSON renders the window with its derived bounds
func (w MonthWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Label       string `json:"label"`
		Year        int    `json:"year"`
		Month       int    `json:"month"`
		FirstDay    string `json:"firstDay"`
		LastDay     string `json:"lastDay"`
		DaysInMonth int    `json:"daysInMonth"`
	}{
		Key:         w.Key(),
		Label:       w.Label(),
		Year:        w.Year,
		Month:       int(w.Month),
		FirstDay:    w.FirstDay().Format(DateLayout),
		LastDay:     w.LastDay().Format(DateLayout),
		DaysInMonth: w.DaysInMonth(),
	})
}
