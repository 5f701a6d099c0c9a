package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrRoomNotFound = errors.New("room not found")

// CompanyRepository stores the clinic settings. Get returns DefaultCompany
// when nothing has been saved yet.
type CompanyRepository interface {
	Get(ctx context.Context) (*CompanyConfig, error)
	Save(ctx context.Context, c *CompanyConfig) error
	SetOpeningBalance(ctx context.Context, amount decimal.Decimal) error
}

type RoomRepository interface {
	Create(ctx context.Context, r *Room) error
	List(ctx context.Context) ([]Room, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
