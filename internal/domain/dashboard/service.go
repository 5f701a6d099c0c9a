package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/backoffice/internal/domain/admin"
	"github.com/clinic/backoffice/internal/domain/financial"
	"github.com/clinic/backoffice/internal/domain/identity"
	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/domain/scheduling"
)

type AppointmentSource interface {
	AppointmentsIn(ctx context.Context, r period.Range) ([]scheduling.Appointment, error)
	PatientsOf(ctx context.Context, appts []scheduling.Appointment) ([]identity.Patient, error)
}

type EntrySource interface {
	EntriesIn(ctx context.Context, r period.Range) ([]financial.Entry, error)
}

type CompanySource interface {
	Company(ctx context.Context) (*admin.CompanyConfig, error)
}

// TxFunc runs fn inside one database transaction.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func noTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type Service struct {
	appointments  AppointmentSource
	entries       EntrySource
	company       CompanySource
	inTx          TxFunc
	fallbackSlots int
	logger        zerolog.Logger
}

func NewService(appointments AppointmentSource, entries EntrySource, company CompanySource, logger zerolog.Logger) *Service {
	return &Service{
		appointments:  appointments,
		entries:       entries,
		company:       company,
		inTx:          noTx,
		fallbackSlots: DefaultTotalSlots,
		logger:        logger.With().Str("component", "dashboard").Logger(),
	}
}

// SetTxFunc makes Snapshot read inside one transaction.
func (s *Service) SetTxFunc(fn TxFunc) {
	if fn != nil {
		s.inTx = fn
	}
}

// SetDefaultSlots changes the capacity used on days without usable hours.
func (s *Service) SetDefaultSlots(n int) {
	if n > 0 {
		s.fallbackSlots = n
	}
}

// Snapshot loads the State for now.
func (s *Service) Snapshot(ctx context.Context, now time.Time) (State, error) {
	st := State{Now: now}
	month := st.Month()

	err := s.inTx(ctx, func(ctx context.Context) error {
		company, err := s.company.Company(ctx)
		if err != nil {
			return err
		}
		st.Company = *company

		if st.Appointments, err = s.appointments.AppointmentsIn(ctx, month); err != nil {
			return err
		}
		if st.Patients, err = s.appointments.PatientsOf(ctx, st.Appointments); err != nil {
			return err
		}
		if st.Entries, err = s.entries.EntriesIn(ctx, month); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("load dashboard snapshot: %w", err)
	}
	return st, nil
}

func (s *Service) Metrics(ctx context.Context, now time.Time) (Metrics, error) {
	st, err := s.Snapshot(ctx, now)
	if err != nil {
		return Metrics{}, err
	}
	return computeMetrics(st.Appointments, st.Entries, st.Company, st.Now, s.fallbackSlots), nil
}

func (s *Service) Overview(ctx context.Context, now time.Time) (Overview, error) {
	st, err := s.Snapshot(ctx, now)
	if err != nil {
		return Overview{}, err
	}
	ov := st.Overview(s.fallbackSlots)
	if n := ov.CashFlow.Unclassified.Entries; n > 0 {
		s.logger.Warn().Int("unclassified", n).Strs("categories", ov.CashFlow.UnclassifiedCategories).
			Msg("entries left out of the monthly cash flow")
	}
	return ov, nil
}
