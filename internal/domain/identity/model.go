package identity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/backoffice/internal/domain/period"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Document  *string    `db:"document" json:"document,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Age returns the patient's age in whole years on the calendar date of at,
// or -1 when the birth date is unknown.
func (p *Patient) Age(at time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	b := period.Date(*p.BirthDate)
	d := period.Date(at)
	age := d.Year() - b.Year()
	if d.Month() < b.Month() || (d.Month() == b.Month() && d.Day() < b.Day()) {
		age--
	}
	return age
}

type patientJSON Patient

// MarshalJSON writes BirthDate as an ISO calendar date.
func (p Patient) MarshalJSON() ([]byte, error) {
	var birth *string
	if p.BirthDate != nil {
		s := p.BirthDate.Format(period.DateLayout)
		birth = &s
	}
	return json.Marshal(struct {
		patientJSON
		BirthDate *string `json:"birth_date,omitempty"`
	}{patientJSON: patientJSON(p), BirthDate: birth})
}

// UnmarshalJSON accepts BirthDate as "YYYY-MM-DD" or an RFC 3339 timestamp.
func (p *Patient) UnmarshalJSON(data []byte) error {
	aux := struct {
		*patientJSON
		BirthDate *string `json:"birth_date"`
	}{patientJSON: (*patientJSON)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.BirthDate = nil
	if aux.BirthDate != nil && *aux.BirthDate != "" {
		d, err := period.ParseDate(*aux.BirthDate)
		if err != nil {
			return err
		}
		p.BirthDate = &d
	}
	return nil
}
