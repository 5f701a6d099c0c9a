package dashboard

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clinic/backoffice/internal/domain/admin"
	"github.com/clinic/backoffice/internal/domain/financial"
	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/domain/scheduling"
)

// DefaultTotalSlots is the daily capacity assumed when today's business
// hours are closed or unusable.
const DefaultTotalSlots = 20

// Metrics are the daily and monthly counters shown on the dashboard.
type Metrics struct {
	Date                   time.Time       `json:"date"`
	TodayPatients          int             `json:"today_patients"`
	ScheduledAppointments  int             `json:"scheduled_appointments"`
	WaitingPatients        int             `json:"waiting_patients"`
	InConsultationPatients int             `json:"in_consultation_patients"`
	CompletedToday         int             `json:"completed_today"`
	MonthlyRevenue         decimal.Decimal `json:"monthly_revenue"`
	TotalSlots             int             `json:"total_slots"`
	OccupancyRate          int             `json:"occupancy_rate"`
}

// ComputeMetrics aggregates appointments and entries as of now. Today is the
// calendar date of now in now's location. Appointments with an unknown
// status are not counted.
func ComputeMetrics(appointments []scheduling.Appointment, entries []financial.Entry, company admin.CompanyConfig, now time.Time) Metrics {
	return computeMetrics(appointments, entries, company, now, DefaultTotalSlots)
}

func computeMetrics(appointments []scheduling.Appointment, entries []financial.Entry, company admin.CompanyConfig, now time.Time, fallbackSlots int) Metrics {
	today := period.Date(now)
	m := Metrics{Date: today, MonthlyRevenue: decimal.Zero}

	for _, a := range appointments {
		if !period.SameDay(a.Date, today) || !a.Status.Valid() {
			continue
		}
		m.TodayPatients++
		switch a.Status {
		case scheduling.StatusScheduled:
			m.ScheduledAppointments++
		case scheduling.StatusConfirmed:
			m.WaitingPatients++
		case scheduling.StatusInProgress:
			m.InConsultationPatients++
		case scheduling.StatusCompleted:
			m.CompletedToday++
		}
	}

	month := period.Today(period.TypeMonth, today)
	for _, e := range entries {
		if e.Type == financial.EntryIncome && month.Contains(e.Date) {
			m.MonthlyRevenue = m.MonthlyRevenue.Add(e.Amount)
		}
	}

	m.TotalSlots = TotalSlots(company.BusinessHours.For(today.Weekday()), fallbackSlots)
	m.OccupancyRate = occupancy(m.TodayPatients, m.TotalSlots)
	return m
}

// TotalSlots returns the number of 30 minute slots in hours, or fallback
// when the day is closed or yields no slots. A non-positive fallback means
// DefaultTotalSlots.
func TotalSlots(hours admin.DayHours, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultTotalSlots
	}
	open, close, ok := hours.Hours()
	if !ok || close <= open {
		return fallback
	}
	return (close - open) * 2
}

func occupancy(patients, slots int) int {
	if slots <= 0 || patients <= 0 {
		return 0
	}
	rate := int(math.Round(float64(patients) / float64(slots) * 100))
	if rate > 100 {
		return 100
	}
	return rate
}
