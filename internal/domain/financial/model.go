package financial

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinic/backoffice/internal/domain/period"
)

// EntryType separates money coming in from money going out.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// Valid reports whether t is income or expense.
func (t EntryType) Valid() bool {
	return t == EntryIncome || t == EntryExpense
}

// Entry maps to the financial_entry table.
type Entry struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Type          EntryType       `db:"type" json:"type"`
	Category      string          `db:"category" json:"category"`
	Description   *string         `db:"description" json:"description,omitempty"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Date          time.Time       `db:"entry_date" json:"date"`
	PaymentMethod *string         `db:"payment_method" json:"payment_method,omitempty"`
	AppointmentID *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// IsIncome reports whether the entry is an inflow.
func (e Entry) IsIncome() bool { return e.Type == EntryIncome }

// IsExpense reports whether the entry is an outflow.
func (e Entry) IsExpense() bool { return e.Type == EntryExpense }

type entryJSON Entry

// MarshalJSON writes Date as an ISO calendar date.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		entryJSON
		Date string `json:"date"`
	}{entryJSON: entryJSON(e), Date: e.Date.Format(period.DateLayout)})
}

// UnmarshalJSON accepts Date as "YYYY-MM-DD" or an RFC 3339 timestamp.
func (e *Entry) UnmarshalJSON(data []byte) error {
	aux := struct {
		*entryJSON
		Date string `json:"date"`
	}{entryJSON: (*entryJSON)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		e.Date = time.Time{}
		return nil
	}
	d, err := period.ParseDate(aux.Date)
	if err != nil {
		return err
	}
	e.Date = d
	return nil
}
