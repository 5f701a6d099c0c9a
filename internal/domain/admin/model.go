package admin

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DayHours is the opening window of one weekday, as "HH:MM" wall-clock times.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	IsOpen bool   `json:"is_open"`
}

// Hours returns the opening and closing hours of d. ok is false when the
// day is closed or the times cannot be read.
func (d DayHours) Hours() (open, close int, ok bool) {
	if !d.IsOpen {
		return 0, 0, false
	}
	o, err := time.Parse("15:04", d.Open)
	if err != nil {
		return 0, 0, false
	}
	c, err := time.Parse("15:04", d.Close)
	if err != nil {
		return 0, 0, false
	}
	return o.Hour(), c.Hour(), true
}

func (d DayHours) validate(day string) error {
	if !d.IsOpen {
		return nil
	}
	o, err := time.Parse("15:04", d.Open)
	if err != nil {
		return fmt.Errorf("%s: invalid opening time %q", day, d.Open)
	}
	c, err := time.Parse("15:04", d.Close)
	if err != nil {
		return fmt.Errorf("%s: invalid closing time %q", day, d.Close)
	}
	if !c.After(o) {
		return fmt.Errorf("%s: closing time must be after opening time", day)
	}
	return nil
}

// WeekSchedule holds the business hours of every weekday.
type WeekSchedule struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// For returns the hours of weekday d.
func (w WeekSchedule) For(d time.Weekday) DayHours {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

func (w WeekSchedule) Validate() error {
	days := []struct {
		name  string
		hours DayHours
	}{
		{"monday", w.Monday}, {"tuesday", w.Tuesday}, {"wednesday", w.Wednesday},
		{"thursday", w.Thursday}, {"friday", w.Friday}, {"saturday", w.Saturday},
		{"sunday", w.Sunday},
	}
	for _, d := range days {
		if err := d.hours.validate(d.name); err != nil {
			return err
		}
	}
	return nil
}

// DefaultWeekSchedule opens 08:00-18:00 on weekdays and 08:00-12:00 on
// Saturdays.
func DefaultWeekSchedule() WeekSchedule {
	weekday := DayHours{Open: "08:00", Close: "18:00", IsOpen: true}
	return WeekSchedule{
		Monday:    weekday,
		Tuesday:   weekday,
		Wednesday: weekday,
		Thursday:  weekday,
		Friday:    weekday,
		Saturday:  DayHours{Open: "08:00", Close: "12:00", IsOpen: true},
		Sunday:    DayHours{Open: "08:00", Close: "12:00"},
	}
}

// CompanyConfig maps to the single company_config row.
type CompanyConfig struct {
	Name           string          `db:"name" json:"name"`
	Document       string          `db:"document" json:"document,omitempty"`
	Phone          string          `db:"phone" json:"phone,omitempty"`
	BusinessHours  WeekSchedule    `db:"business_hours" json:"business_hours"`
	OpeningBalance decimal.Decimal `db:"opening_balance" json:"opening_balance"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// DefaultCompany is returned before the clinic saves its settings.
func DefaultCompany() CompanyConfig {
	return CompanyConfig{BusinessHours: DefaultWeekSchedule(), OpeningBalance: decimal.Zero}
}

// Room maps to the room table. Active rooms take part in allocation.
type Room struct {
	ID     uuid.UUID `db:"id" json:"id"`
	Name   string    `db:"name" json:"name"`
	Active bool      `db:"active" json:"active"`
}
