package scheduling

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/backoffice/internal/domain/identity"
	"github.com/clinic/backoffice/internal/domain/period"
)

// PatientWithStatus is one row of today's board.
type PatientWithStatus struct {
	Patient           identity.Patient  `json:"patient"`
	Status            PatientStatus     `json:"status"`
	AppointmentID     uuid.UUID         `json:"appointment_id"`
	AppointmentTime   string            `json:"appointment_time"`
	AppointmentStatus AppointmentStatus `json:"appointment_status"`
}

// ProjectToday picks, for every patient with an appointment on today's
// calendar date, the appointment that defines their current status.
//
// The highest ranked status wins. On equal rank the later appointment time
// wins, and on equal time the appointment that comes later in the input.
// Appointments with an unknown status or for patients missing from
// patients are ignored. Rows are ordered by appointment time, with rows
// lacking a time first.
func ProjectToday(patients []identity.Patient, appointments []Appointment, today time.Time) []PatientWithStatus {
	day := period.Date(today)

	byID := make(map[uuid.UUID]identity.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}

	current := make(map[uuid.UUID]Appointment)
	var order []uuid.UUID
	for _, a := range appointments {
		if !period.Date(a.Date).Equal(day) || !a.Status.Valid() {
			continue
		}
		if _, ok := byID[a.PatientID]; !ok {
			continue
		}
		cur, seen := current[a.PatientID]
		if !seen {
			order = append(order, a.PatientID)
			current[a.PatientID] = a
			continue
		}
		if supersedes(a, cur) {
			current[a.PatientID] = a
		}
	}

	rows := make([]PatientWithStatus, 0, len(order))
	for _, id := range order {
		a := current[id]
		rows = append(rows, PatientWithStatus{
			Patient:           byID[id],
			Status:            a.Status.PatientStatus(),
			AppointmentID:     a.ID,
			AppointmentTime:   a.Time,
			AppointmentStatus: a.Status,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AppointmentTime < rows[j].AppointmentTime })
	return rows
}

func supersedes(next, cur Appointment) bool {
	if nr, cr := next.Status.Rank(), cur.Status.Rank(); nr != cr {
		return nr > cr
	}
	return next.Time >= cur.Time
}

// BoardSummary counts board rows per patient status.
type BoardSummary map[PatientStatus]int

func Summarize(rows []PatientWithStatus) BoardSummary {
	s := BoardSummary{
		PatientScheduled:      0,
		PatientWaiting:        0,
		PatientInConsultation: 0,
		PatientCompleted:      0,
	}
	for _, r := range rows {
		s[r.Status]++
	}
	return s
}
