package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	company CompanyRepository
	rooms   RoomRepository
}

func NewService(company CompanyRepository, rooms RoomRepository) *Service {
	return &Service{company: company, rooms: rooms}
}

// -- Company --

func (s *Service) Company(ctx context.Context) (*CompanyConfig, error) {
	c, err := s.company.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load company settings: %w", err)
	}
	return c, nil
}

// UpdateCompany replaces the company profile and business hours. The
// opening balance is kept; it changes only through SetOpeningBalance.
func (s *Service) UpdateCompany(ctx context.Context, c *CompanyConfig) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("company name is required")
	}
	if err := c.BusinessHours.Validate(); err != nil {
		return err
	}
	current, err := s.Company(ctx)
	if err != nil {
		return err
	}
	c.OpeningBalance = current.OpeningBalance
	return s.company.Save(ctx, c)
}

// OpeningBalance returns the cash balance the cash-flow statement starts from.
func (s *Service) OpeningBalance(ctx context.Context) (decimal.Decimal, error) {
	c, err := s.Company(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return c.OpeningBalance, nil
}

func (s *Service) SetOpeningBalance(ctx context.Context, amount decimal.Decimal) error {
	return s.company.SetOpeningBalance(ctx, amount)
}

// -- Rooms --

func (s *Service) CreateRoom(ctx context.Context, r *Room) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("room name is required")
	}
	r.Active = true
	return s.rooms.Create(ctx, r)
}

func (s *Service) ListRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []Room{}
	}
	return rooms, nil
}

func (s *Service) SetRoomActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.rooms.SetActive(ctx, id, active)
}
