package period

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type selects how a Range is aligned on the calendar.
type Type string

const (
	TypeDay    Type = "day"
	TypeWeek   Type = "week"
	TypeMonth  Type = "month"
	TypeCustom Type = "custom"
)

// DateLayout is the ISO calendar date format used at the API boundary.
const DateLayout = "2006-01-02"

// Valid reports whether t is one of the known period types.
func (t Type) Valid() bool {
	switch t {
	case TypeDay, TypeWeek, TypeMonth, TypeCustom:
		return true
	}
	return false
}

// Range is an inclusive calendar-date window. Dates are stored at UTC midnight.
type Range struct {
	Type      Type      `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Date truncates t to its calendar date, evaluated in t's own location,
// and returns that date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Date(a).Equal(Date(b))
}

// Resolve returns the concrete inclusive window of r. StartDate is the
// reference date for day, week and month ranges. The returned start is
// never after the returned end.
func Resolve(r Range) (time.Time, time.Time) {
	ref := Date(r.StartDate)
	switch r.Type {
	case TypeDay:
		return ref, ref
	case TypeWeek:
		start := ref.AddDate(0, 0, -daysSinceMonday(ref))
		return start, start.AddDate(0, 0, 6)
	case TypeMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	default:
		end := ref
		if !r.EndDate.IsZero() {
			end = Date(r.EndDate)
		}
		if end.Before(ref) {
			return end, ref
		}
		return ref, end
	}
}

// Normalize returns r with its dates replaced by the resolved window.
func Normalize(r Range) Range {
	start, end := Resolve(r)
	return Range{Type: r.Type, StartDate: start, EndDate: end}
}

// Navigate moves r by one unit in the direction given by the sign of dir.
// Day, week and month ranges stay aligned to the calendar; custom ranges
// keep their width.
func Navigate(r Range, dir int) Range {
	return Shift(r, sign(dir))
}

// Shift moves r by n units in one step. Navigate(r, 1) applied n times and
// Shift(r, n) yield the same range.
func Shift(r Range, n int) Range {
	norm := Normalize(r)
	if n == 0 {
		return norm
	}

	switch norm.Type {
	case TypeDay:
		d := norm.StartDate.AddDate(0, 0, n)
		return Range{Type: TypeDay, StartDate: d, EndDate: d}
	case TypeWeek:
		return Normalize(Range{Type: TypeWeek, StartDate: norm.StartDate.AddDate(0, 0, 7*n)})
	case TypeMonth:
		// StartDate is the first of the month, so AddDate never overflows here.
		return Normalize(Range{Type: TypeMonth, StartDate: norm.StartDate.AddDate(0, n, 0)})
	default:
		days := norm.Days() * n
		return Range{
			Type:      norm.Type,
			StartDate: norm.StartDate.AddDate(0, 0, days),
			EndDate:   norm.EndDate.AddDate(0, 0, days),
		}
	}
}

// Today returns the window of type t that contains now's calendar date.
func Today(t Type, now time.Time) Range {
	d := Date(now)
	return Normalize(Range{Type: t, StartDate: d, EndDate: d})
}

// NewCustom builds a custom range from two dates given in any order.
func NewCustom(a, b time.Time) Range {
	return Normalize(Range{Type: TypeCustom, StartDate: a, EndDate: b})
}

// WithStart edits the start of a custom range, swapping the bounds if needed.
func (r Range) WithStart(d time.Time) Range {
	n := Normalize(r)
	return NewCustom(d, n.EndDate)
}

// WithEnd edits the end of a custom range, swapping the bounds if needed.
func (r Range) WithEnd(d time.Time) Range {
	n := Normalize(r)
	return NewCustom(n.StartDate, d)
}

// Contains reports whether the calendar date of d lies inside r.
func (r Range) Contains(d time.Time) bool {
	start, end := Resolve(r)
	day := Date(d)
	return !day.Before(start) && !day.After(end)
}

// Days returns the number of calendar days covered by r.
func (r Range) Days() int {
	start, end := Resolve(r)
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

type rangeJSON struct {
	Type      Type   `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r Range) wire() rangeJSON {
	w := rangeJSON{Type: r.Type}
	if !r.StartDate.IsZero() {
		w.StartDate = r.StartDate.Format(DateLayout)
	}
	if !r.EndDate.IsZero() {
		w.EndDate = r.EndDate.Format(DateLayout)
	}
	return w
}

func (w rangeJSON) decode() (Range, error) {
	r := Range{Type: w.Type}
	var err error
	if w.StartDate != "" {
		if r.StartDate, err = ParseDate(w.StartDate); err != nil {
			return Range{}, err
		}
	}
	if w.EndDate != "" {
		if r.EndDate, err = ParseDate(w.EndDate); err != nil {
			return Range{}, err
		}
	}
	return r, nil
}

// MarshalJSON writes both bounds as ISO calendar dates.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// UnmarshalJSON accepts bounds as "YYYY-MM-DD" or RFC 3339 timestamps.
func (r *Range) UnmarshalJSON(data []byte) error {
	var w rangeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	got, err := w.decode()
	if err != nil {
		return err
	}
	*r = got
	return nil
}

// ParseDate reads an ISO calendar date, also accepting a full RFC 3339
// timestamp, and returns it at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return Date(t), nil
}

// Parse builds a range of type t around the ISO date ref. For custom ranges
// end is the second bound; it defaults to ref when empty.
func Parse(t Type, ref, end string) (Range, error) {
	if t == "" {
		t = TypeDay
	}
	if !t.Valid() {
		return Range{}, fmt.Errorf("invalid period type: %s", t)
	}
	start, err := time.Parse(DateLayout, ref)
	if err != nil {
		return Range{}, fmt.Errorf("invalid date %q: %w", ref, err)
	}
	r := Range{Type: t, StartDate: start, EndDate: start}
	if t == TypeCustom && end != "" {
		e, err := time.Parse(DateLayout, end)
		if err != nil {
			return Range{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		r.EndDate = e
	}
	return Normalize(r), nil
}

func daysSinceMonday(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
