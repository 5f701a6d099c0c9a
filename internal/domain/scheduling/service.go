package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/backoffice/internal/domain/identity"
	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/platform/db"
	"github.com/clinic/backoffice/internal/platform/live"
	"github.com/clinic/backoffice/internal/platform/rooms"
)

// PatientDirectory resolves the patients referenced by appointments.
type PatientDirectory interface {
	PatientsByID(ctx context.Context, ids []uuid.UUID) ([]identity.Patient, error)
}

type Service struct {
	appointments AppointmentRepository
	patients     PatientDirectory
	rooms        rooms.Allocator
	live         live.Publisher
	loc          *time.Location
	logger       zerolog.Logger
}

// NewService wires the appointment service. A nil allocator disables room
// allocation.
func NewService(appointments AppointmentRepository, patients PatientDirectory, allocator rooms.Allocator, logger zerolog.Logger) *Service {
	if allocator == nil {
		allocator = rooms.Noop{}
	}
	return &Service{
		appointments: appointments,
		patients:     patients,
		rooms:        allocator,
		live:         live.Noop{},
		loc:          time.UTC,
		logger:       logger.With().Str("component", "scheduling").Logger(),
	}
}

// SetLocation sets the clinic timezone used to turn appointment wall-clock
// times into instants for the room scheduler.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// SetPublisher sends appointment changes to p.
func (s *Service) SetPublisher(p live.Publisher) {
	if p != nil {
		s.live = p
	}
}

func (s *Service) validate(a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	a.Date = period.Date(a.Date)
	if _, _, err := ParseClock(a.Time); err != nil {
		return err
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = DefaultDuration
	}
	if a.DurationMinutes < 0 || a.DurationMinutes > 24*60 {
		return fmt.Errorf("invalid duration: %d minutes", a.DurationMinutes)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !a.Status.Valid() {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	if a.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if err := s.validate(a); err != nil {
		return err
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	if !a.Status.ReleasesRoom() {
		s.reserve(ctx, a)
	}
	s.notify(ctx, live.AppointmentCreated, a)
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateAppointment saves a, re-reserving the room when the slot or the
// professional changed and releasing it when a is no longer active.
func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	if err := s.validate(a); err != nil {
		return err
	}
	prev, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return err
	}

	switch {
	case a.Status.ReleasesRoom():
		if !prev.Status.ReleasesRoom() {
			s.release(ctx, a.ID)
		}
	case prev.Status.ReleasesRoom() || rescheduled(prev, a):
		s.reserve(ctx, a)
	}
	s.notify(ctx, live.AppointmentUpdated, a)
	return nil
}

func rescheduled(prev, next *Appointment) bool {
	if !prev.Date.Equal(next.Date) || prev.Time != next.Time || prev.DurationMinutes != next.DurationMinutes {
		return true
	}
	if (prev.ProfessionalID == nil) != (next.ProfessionalID == nil) {
		return true
	}
	return prev.ProfessionalID != nil && *prev.ProfessionalID != *next.ProfessionalID
}

// UpdateStatus moves an appointment to status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) (*Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid appointment status: %s", status)
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := a.Status
	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	a.Status = status

	switch {
	case status.ReleasesRoom() && !prev.ReleasesRoom():
		s.release(ctx, id)
	case !status.ReleasesRoom() && prev.ReleasesRoom():
		s.reserve(ctx, a)
	}
	s.notify(ctx, live.AppointmentStatus, a)
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.release(ctx, id)
	s.notify(ctx, live.AppointmentDeleted, &Appointment{ID: id})
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) SearchAppointments(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.Search(ctx, params, limit, offset)
}

// AppointmentsIn returns the appointments dated inside the resolved range.
func (s *Service) AppointmentsIn(ctx context.Context, r period.Range) ([]Appointment, error) {
	start, end := period.Resolve(r)
	appts, err := s.appointments.ListByRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// Board projects today's appointments onto per-patient statuses.
func (s *Service) Board(ctx context.Context, now time.Time) ([]PatientWithStatus, error) {
	appts, err := s.AppointmentsIn(ctx, period.Today(period.TypeDay, now))
	if err != nil {
		return nil, err
	}
	patients, err := s.PatientsOf(ctx, appts)
	if err != nil {
		return nil, err
	}
	return ProjectToday(patients, appts, now), nil
}

// PatientsOf loads the patients referenced by appts.
func (s *Service) PatientsOf(ctx context.Context, appts []Appointment) ([]identity.Patient, error) {
	if len(appts) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(appts))
	for i, a := range appts {
		ids[i] = a.PatientID
	}
	patients, err := s.patients.PatientsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	return patients, nil
}

// Room scheduling is best effort: failures are logged and never block the
// appointment change itself.

func (s *Service) reserve(ctx context.Context, a *Appointment) {
	start, end, err := a.Window(s.loc)
	if err != nil {
		s.logger.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("cannot compute appointment window")
		return
	}
	alloc, err := s.rooms.Allocate(ctx, rooms.Request{
		AppointmentID:  a.ID,
		ProfessionalID: a.ProfessionalID,
		Start:          start,
		End:            end,
	})
	switch {
	case errors.Is(err, rooms.ErrNoRoom):
		s.logger.Warn().Str("appointment_id", a.ID.String()).Time("start", start).Msg("appointment booked without a room")
	case err != nil:
		s.logger.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("room allocation failed")
	case alloc.RoomID != nil:
		s.logger.Debug().Str("appointment_id", a.ID.String()).Str("room_id", alloc.RoomID.String()).Msg("room reserved")
	}
}

func (s *Service) release(ctx context.Context, id uuid.UUID) {
	if err := s.rooms.Deallocate(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", id.String()).Msg("room release failed")
	}
}

func (s *Service) notify(ctx context.Context, kind string, a *Appointment) {
	ev := live.Event{
		Type:          kind,
		Clinic:        db.ClinicFromContext(ctx),
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		Status:        string(a.Status),
		Time:          a.Time,
	}
	if !a.Date.IsZero() {
		ev.Date = a.Date.Format(period.DateLayout)
	}
	s.live.Publish(ctx, ev)
}
