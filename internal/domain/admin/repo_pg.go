package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/clinic/backoffice/internal/platform/db"
)

// =========== Company Repository ===========

type companyRepoPG struct{ pool *pgxpool.Pool }

func NewCompanyRepoPG(pool *pgxpool.Pool) CompanyRepository { return &companyRepoPG{pool: pool} }

func (r *companyRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *companyRepoPG) Get(ctx context.Context) (*CompanyConfig, error) {
	var c CompanyConfig
	var hours []byte
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT name, COALESCE(document, ''), COALESCE(phone, ''), business_hours,
			opening_balance, updated_at
		FROM company_config WHERE id = 1`).
		Scan(&c.Name, &c.Document, &c.Phone, &hours, &c.OpeningBalance, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		d := DefaultCompany()
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	c.BusinessHours = DefaultWeekSchedule()
	if len(hours) > 0 && string(hours) != "{}" {
		if err := json.Unmarshal(hours, &c.BusinessHours); err != nil {
			return nil, fmt.Errorf("decode business hours: %w", err)
		}
	}
	return &c, nil
}

func (r *companyRepoPG) Save(ctx context.Context, c *CompanyConfig) error {
	hours, err := json.Marshal(c.BusinessHours)
	if err != nil {
		return fmt.Errorf("encode business hours: %w", err)
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO company_config (id, name, document, phone, business_hours, opening_balance)
		VALUES (1, $1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, document = EXCLUDED.document,
			phone = EXCLUDED.phone, business_hours = EXCLUDED.business_hours,
			opening_balance = EXCLUDED.opening_balance, updated_at = NOW()
		RETURNING updated_at`,
		c.Name, c.Document, c.Phone, hours, c.OpeningBalance).Scan(&c.UpdatedAt)
}

func (r *companyRepoPG) SetOpeningBalance(ctx context.Context, amount decimal.Decimal) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO company_config (id, opening_balance) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET opening_balance = EXCLUDED.opening_balance, updated_at = NOW()`,
		amount)
	return err
}

// =========== Room Repository ===========

type roomRepoPG struct{ pool *pgxpool.Pool }

func NewRoomRepoPG(pool *pgxpool.Pool) RoomRepository { return &roomRepoPG{pool: pool} }

func (r *roomRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *roomRepoPG) Create(ctx context.Context, room *Room) error {
	room.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO room (id, name, active) VALUES ($1, $2, $3)`, room.ID, room.Name, room.Active)
	return err
}

func (r *roomRepoPG) List(ctx context.Context) ([]Room, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name, active FROM room ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Active); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *roomRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE room SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}
