package scheduling

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinic/backoffice/internal/domain/period"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in-progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no-show"
)

// PatientStatus is what the front desk sees for a patient today.
type PatientStatus string

const (
	PatientScheduled      PatientStatus = "scheduled"
	PatientWaiting        PatientStatus = "waiting"
	PatientInConsultation PatientStatus = "in-consultation"
	PatientCompleted      PatientStatus = "completed"
)

type statusRule struct {
	Rank    int
	Patient PatientStatus
}

// statusRules orders appointment statuses for the board. When a patient has
// several appointments today, the one with the highest rank is shown.
var statusRules = map[AppointmentStatus]statusRule{
	StatusInProgress: {Rank: 5, Patient: PatientInConsultation},
	StatusConfirmed:  {Rank: 4, Patient: PatientWaiting},
	StatusScheduled:  {Rank: 3, Patient: PatientScheduled},
	StatusCompleted:  {Rank: 2, Patient: PatientCompleted},
	StatusCancelled:  {Rank: 1, Patient: PatientScheduled},
	StatusNoShow:     {Rank: 1, Patient: PatientScheduled},
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	_, ok := statusRules[s]
	return ok
}

// Rank returns the board priority of s, 0 for unknown statuses.
func (s AppointmentStatus) Rank() int {
	return statusRules[s].Rank
}

// PatientStatus returns the patient-facing status for s, or "" when s is
// unknown.
func (s AppointmentStatus) PatientStatus() PatientStatus {
	return statusRules[s].Patient
}

// ReleasesRoom reports whether an appointment in status s no longer needs
// a room.
func (s AppointmentStatus) ReleasesRoom() bool {
	return s == StatusCancelled || s == StatusNoShow
}

// DefaultDuration is used when an appointment is booked without one.
const DefaultDuration = 30

// Appointment maps to the appointment table. Date is a calendar date and
// Time a wall-clock "HH:MM" in the clinic's timezone.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	ProfessionalID  *uuid.UUID        `db:"professional_id" json:"professional_id,omitempty"`
	Date            time.Time         `db:"appointment_date" json:"date"`
	Time            string            `db:"appointment_time" json:"time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Price           decimal.Decimal   `db:"price" json:"price"`
	Paid            bool              `db:"paid" json:"paid"`
	Notes           *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// ParseClock reads an "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// Window returns the start and end instants of the appointment in loc.
func (a *Appointment) Window(loc *time.Location) (time.Time, time.Time, error) {
	h, m, err := ParseClock(a.Time)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	duration := a.DurationMinutes
	if duration <= 0 {
		duration = DefaultDuration
	}
	start := time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), h, m, 0, 0, loc)
	return start, start.Add(time.Duration(duration) * time.Minute), nil
}

type appointmentJSON Appointment

// MarshalJSON writes Date as an ISO calendar date.
func (a Appointment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		appointmentJSON
		Date string `json:"date"`
	}{appointmentJSON: appointmentJSON(a), Date: a.Date.Format(period.DateLayout)})
}

// UnmarshalJSON accepts Date as "YYYY-MM-DD" or an RFC 3339 timestamp.
func (a *Appointment) UnmarshalJSON(data []byte) error {
	aux := struct {
		*appointmentJSON
		Date string `json:"date"`
	}{appointmentJSON: (*appointmentJSON)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Date = time.Time{}
	if aux.Date != "" {
		d, err := period.ParseDate(aux.Date)
		if err != nil {
			return err
		}
		a.Date = d
	}
	return nil
}
