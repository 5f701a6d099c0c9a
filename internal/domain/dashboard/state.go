package dashboard

import (
	"time"

	"github.com/clinic/backoffice/internal/domain/admin"
	"github.com/clinic/backoffice/internal/domain/financial"
	"github.com/clinic/backoffice/internal/domain/identity"
	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/domain/scheduling"
)

// State is one consistent read of everything the dashboard derives from:
// the month around Now for appointments and entries, the patients booked in
// that month and the company settings.
type State struct {
	Now          time.Time
	Company      admin.CompanyConfig
	Patients     []identity.Patient
	Appointments []scheduling.Appointment
	Entries      []financial.Entry
}

// Month is the calendar month containing Now.
func (s State) Month() period.Range {
	return period.Today(period.TypeMonth, s.Now)
}

// Overview is the dashboard landing view.
type Overview struct {
	Period   period.Response                `json:"period"`
	Metrics  Metrics                        `json:"metrics"`
	Board    []scheduling.PatientWithStatus `json:"board"`
	Summary  scheduling.BoardSummary        `json:"summary"`
	CashFlow financial.CashFlowStatement    `json:"cash_flow"`
}

// Overview derives the metrics, today's board and the month's cash flow
// from s. fallbackSlots replaces DefaultTotalSlots when positive.
func (s State) Overview(fallbackSlots int) Overview {
	board := scheduling.ProjectToday(s.Patients, s.Appointments, s.Now)
	return Overview{
		Period:   period.NewResponse(s.Month()),
		Metrics:  computeMetrics(s.Appointments, s.Entries, s.Company, s.Now, fallbackSlots),
		Board:    board,
		Summary:  scheduling.Summarize(board),
		CashFlow: financial.Classify(s.Entries, s.Company.OpeningBalance),
	}
}
