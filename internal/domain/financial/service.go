package financial

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/clinic/backoffice/internal/domain/period"
)

// ErrCategoryRejected is returned when a registry operation leaves the
// registry unchanged: duplicate or blank names, unknown categories, or an
// attempt to touch the fallback category.
var ErrCategoryRejected = errors.New("category change rejected")

// OpeningBalanceSource provides the user-configured opening balance used by
// the cash-flow statement.
type OpeningBalanceSource interface {
	OpeningBalance(ctx context.Context) (decimal.Decimal, error)
}

// TxFunc runs fn inside one database transaction.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func noTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type Service struct {
	entries    EntryRepository
	categories CategoryRepository
	balance    OpeningBalanceSource
	inTx       TxFunc
	logger     zerolog.Logger
}

func NewService(entries EntryRepository, categories CategoryRepository, balance OpeningBalanceSource, logger zerolog.Logger) *Service {
	return &Service{
		entries:    entries,
		categories: categories,
		balance:    balance,
		inTx:       noTx,
		logger:     logger.With().Str("component", "financial").Logger(),
	}
}

// SetTxFunc makes registry changes run in a transaction.
func (s *Service) SetTxFunc(fn TxFunc) {
	if fn != nil {
		s.inTx = fn
	}
}

// -- Entries --

func (s *Service) validateEntry(e *Entry) error {
	if !e.Type.Valid() {
		return fmt.Errorf("invalid entry type: %q", e.Type)
	}
	e.Category = strings.TrimSpace(e.Category)
	if e.Category == "" {
		return fmt.Errorf("category is required")
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	e.Date = period.Date(e.Date)
	return nil
}

func (s *Service) CreateEntry(ctx context.Context, e *Entry) error {
	if err := s.validateEntry(e); err != nil {
		return err
	}
	return s.entries.Create(ctx, e)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.entries.GetByID(ctx, id)
}

func (s *Service) UpdateEntry(ctx context.Context, e *Entry) error {
	if err := s.validateEntry(e); err != nil {
		return err
	}
	return s.entries.Update(ctx, e)
}

func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.entries.Delete(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.entries.List(ctx, limit, offset)
}

// EntriesIn returns the entries dated inside the resolved range.
func (s *Service) EntriesIn(ctx context.Context, r period.Range) ([]Entry, error) {
	start, end := period.Resolve(r)
	entries, err := s.entries.ListByRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// -- Categories --

// Categories returns the stored registry, or the default one when the
// clinic has not saved any.
func (s *Service) Categories(ctx context.Context) (Registry, error) {
	reg, err := s.categories.Get(ctx)
	if err != nil {
		return Registry{}, fmt.Errorf("load categories: %w", err)
	}
	if len(reg.Income) == 0 && len(reg.Expense) == 0 {
		return DefaultRegistry(), nil
	}
	return reg.Normalize(), nil
}

func (s *Service) AddCategory(ctx context.Context, t EntryType, name string) (Registry, error) {
	var out Registry
	err := s.inTx(ctx, func(ctx context.Context) error {
		reg, err := s.Categories(ctx)
		if err != nil {
			return err
		}
		next, changed := reg.Add(t, name)
		if !changed {
			return fmt.Errorf("%w: cannot add %q", ErrCategoryRejected, name)
		}
		if err := s.categories.Save(ctx, next); err != nil {
			return fmt.Errorf("save categories: %w", err)
		}
		out = next
		return nil
	})
	return out, err
}

// RenameCategory renames a category and moves its entries to the new name.
// It returns the number of entries rewritten.
func (s *Service) RenameCategory(ctx context.Context, t EntryType, oldName, newName string) (Registry, int, error) {
	return s.rewriteCategory(ctx, t, oldName, func(reg Registry, entries []Entry) (Registry, []Entry, bool) {
		return reg.Rename(t, oldName, newName, entries)
	})
}

// RemoveCategory deletes a category and moves its entries to the fallback.
func (s *Service) RemoveCategory(ctx context.Context, t EntryType, name string) (Registry, int, error) {
	return s.rewriteCategory(ctx, t, name, func(reg Registry, entries []Entry) (Registry, []Entry, bool) {
		return reg.Remove(t, name, entries)
	})
}

func (s *Service) rewriteCategory(ctx context.Context, t EntryType, name string,
	op func(Registry, []Entry) (Registry, []Entry, bool)) (Registry, int, error) {
	var (
		out   Registry
		moved int
	)
	err := s.inTx(ctx, func(ctx context.Context) error {
		reg, err := s.Categories(ctx)
		if err != nil {
			return err
		}
		affected, err := s.entries.ListByCategory(ctx, t, name)
		if err != nil {
			return fmt.Errorf("list entries of %q: %w", name, err)
		}
		next, rewritten, changed := op(reg, affected)
		if !changed {
			return fmt.Errorf("%w: %q", ErrCategoryRejected, name)
		}
		if err := s.categories.Save(ctx, next); err != nil {
			return fmt.Errorf("save categories: %w", err)
		}
		if err := s.entries.SetCategories(ctx, rewritten); err != nil {
			return fmt.Errorf("move entries: %w", err)
		}
		out, moved = next, len(rewritten)
		return nil
	})
	if err != nil {
		return Registry{}, 0, err
	}
	s.logger.Info().Str("type", string(t)).Str("category", name).Int("entries", moved).Msg("category updated")
	return out, moved, nil
}

// -- Reports --

// CashFlow builds the cash-flow statement for the range, starting from the
// currently configured opening balance.
func (s *Service) CashFlow(ctx context.Context, r period.Range) (CashFlowStatement, error) {
	entries, err := s.EntriesIn(ctx, r)
	if err != nil {
		return CashFlowStatement{}, err
	}
	opening := decimal.Zero
	if s.balance != nil {
		opening, err = s.balance.OpeningBalance(ctx)
		if err != nil {
			return CashFlowStatement{}, fmt.Errorf("load opening balance: %w", err)
		}
	}
	st := Classify(entries, opening)
	if st.Unclassified.Entries > 0 || st.Skipped > 0 {
		s.logger.Warn().
			Int("unclassified", st.Unclassified.Entries).
			Strs("categories", st.UnclassifiedCategories).
			Int("skipped", st.Skipped).
			Msg("entries left out of the cash-flow statement")
	}
	return st, nil
}

func (s *Service) IncomeStatement(ctx context.Context, r period.Range) (IncomeStatement, error) {
	entries, err := s.EntriesIn(ctx, r)
	if err != nil {
		return IncomeStatement{}, err
	}
	return BuildIncomeStatement(entries), nil
}
