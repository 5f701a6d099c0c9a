package financial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/backoffice/internal/platform/db"
)

// =========== Entry Repository ===========

type entryRepoPG struct{ pool *pgxpool.Pool }

func NewEntryRepoPG(pool *pgxpool.Pool) EntryRepository { return &entryRepoPG{pool: pool} }

func (r *entryRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const entryCols = `id, type, category, description, amount, entry_date,
	payment_method, appointment_id, created_at, updated_at`

func (r *entryRepoPG) scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Type, &e.Category, &e.Description, &e.Amount, &e.Date,
		&e.PaymentMethod, &e.AppointmentID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *entryRepoPG) collect(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *entryRepoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO financial_entry (id, type, category, description, amount, entry_date,
			payment_method, appointment_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		e.ID, e.Type, e.Category, e.Description, e.Amount, e.Date,
		e.PaymentMethod, e.AppointmentID).Scan(&e.CreatedAt, &e.UpdatedAt)
	return err
}

func (r *entryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return r.scanEntry(r.conn(ctx).QueryRow(ctx, `SELECT `+entryCols+` FROM financial_entry WHERE id = $1`, id))
}

func (r *entryRepoPG) Update(ctx context.Context, e *Entry) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE financial_entry SET type=$2, category=$3, description=$4, amount=$5,
			entry_date=$6, payment_method=$7, appointment_id=$8, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Type, e.Category, e.Description, e.Amount, e.Date, e.PaymentMethod, e.AppointmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *entryRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM financial_entry WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *entryRepoPG) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM financial_entry`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM financial_entry
		ORDER BY entry_date DESC, created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	entries, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Entry, len(entries))
	for i := range entries {
		out[i] = &entries[i]
	}
	return out, total, nil
}

func (r *entryRepoPG) ListByRange(ctx context.Context, start, end time.Time) ([]Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM financial_entry
		WHERE entry_date BETWEEN $1 AND $2 ORDER BY entry_date, created_at`, start, end)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *entryRepoPG) ListByCategory(ctx context.Context, t EntryType, category string) ([]Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM financial_entry
		WHERE type = $1 AND category = $2`, t, category)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *entryRepoPG) SetCategories(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`UPDATE financial_entry SET category=$2, updated_at=NOW() WHERE id = $1`, e.ID, e.Category)
	}
	br := r.conn(ctx).SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("update entry category: %w", err)
		}
	}
	return nil
}

// =========== Category Repository ===========

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository { return &categoryRepoPG{pool: pool} }

func (r *categoryRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *categoryRepoPG) Get(ctx context.Context) (Registry, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT type, name FROM category_registry ORDER BY type, position`)
	if err != nil {
		return Registry{}, err
	}
	defer rows.Close()

	var reg Registry
	for rows.Next() {
		var t EntryType
		var name string
		if err := rows.Scan(&t, &name); err != nil {
			return Registry{}, err
		}
		switch t {
		case EntryIncome:
			reg.Income = append(reg.Income, name)
		case EntryExpense:
			reg.Expense = append(reg.Expense, name)
		}
	}
	return reg, rows.Err()
}

// Save replaces the stored registry. Callers run it inside a transaction.
func (r *categoryRepoPG) Save(ctx context.Context, reg Registry) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM category_registry`); err != nil {
		return err
	}
	for _, t := range []EntryType{EntryIncome, EntryExpense} {
		for pos, name := range reg.Names(t) {
			if _, err := q.Exec(ctx,
				`INSERT INTO category_registry (type, name, position) VALUES ($1, $2, $3)`,
				t, name, pos); err != nil {
				return fmt.Errorf("save category %q: %w", name, err)
			}
		}
	}
	return nil
}
