// Package rooms talks to the room scheduler that lives in the database as
// the stored functions allocate_room and deallocate_room. Conflict
// resolution happens there; this package only forwards requests.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinic/backoffice/internal/platform/db"
)

// ErrNoRoom is returned when the scheduler has no free room for the slot.
var ErrNoRoom = errors.New("no room available")

// Request asks for a room for one appointment.
type Request struct {
	AppointmentID  uuid.UUID
	ProfessionalID *uuid.UUID
	Start          time.Time
	End            time.Time
}

// Allocation is the scheduler's answer.
type Allocation struct {
	AppointmentID uuid.UUID
	RoomID        *uuid.UUID
}

// Allocator reserves and releases rooms.
type Allocator interface {
	Allocate(ctx context.Context, req Request) (Allocation, error)
	Deallocate(ctx context.Context, appointmentID uuid.UUID) error
}

type pgAllocator struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPGAllocator returns an Allocator backed by the stored functions of the
// clinic schema.
func NewPGAllocator(pool *pgxpool.Pool, logger zerolog.Logger) Allocator {
	return &pgAllocator{pool: pool, logger: logger.With().Str("component", "rooms").Logger()}
}

func (a *pgAllocator) Allocate(ctx context.Context, req Request) (Allocation, error) {
	if !req.End.After(req.Start) {
		return Allocation{}, fmt.Errorf("allocate room: end %s is not after start %s", req.End, req.Start)
	}
	var roomID *uuid.UUID
	err := db.Conn(ctx, a.pool).QueryRow(ctx,
		`SELECT allocate_room($1, $2, $3, $4)`,
		req.AppointmentID, req.ProfessionalID, req.Start, req.End,
	).Scan(&roomID)
	if err != nil {
		return Allocation{}, fmt.Errorf("allocate room: %w", err)
	}
	if roomID == nil {
		a.logger.Warn().Str("appointment_id", req.AppointmentID.String()).Time("start", req.Start).Msg("no room available")
		return Allocation{AppointmentID: req.AppointmentID}, ErrNoRoom
	}
	a.logger.Debug().Str("appointment_id", req.AppointmentID.String()).Str("room_id", roomID.String()).Msg("room allocated")
	return Allocation{AppointmentID: req.AppointmentID, RoomID: roomID}, nil
}

func (a *pgAllocator) Deallocate(ctx context.Context, appointmentID uuid.UUID) error {
	if _, err := db.Conn(ctx, a.pool).Exec(ctx, `SELECT deallocate_room($1)`, appointmentID); err != nil {
		return fmt.Errorf("deallocate room: %w", err)
	}
	return nil
}

// Noop accepts every request without reserving anything. It is used when
// room allocation is disabled.
type Noop struct{}

func (Noop) Allocate(_ context.Context, req Request) (Allocation, error) {
	return Allocation{AppointmentID: req.AppointmentID}, nil
}

func (Noop) Deallocate(context.Context, uuid.UUID) error { return nil }
