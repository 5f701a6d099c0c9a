package identity

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPatient_Age(t *testing.T) {
	birth := time.Date(1990, 10, 20, 0, 0, 0, 0, time.UTC)
	p := &Patient{BirthDate: &birth}
	if got := p.Age(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)); got != 35 {
		t.Errorf("expected 35 the day before the birthday, got %d", got)
	}
	if got := p.Age(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)); got != 36 {
		t.Errorf("expected 36 on the birthday, got %d", got)
	}
	if got := (&Patient{}).Age(time.Now()); got != -1 {
		t.Errorf("expected -1 without birth date, got %d", got)
	}
}

func TestPatient_JSONBirthDate(t *testing.T) {
	var p Patient
	if err := json.Unmarshal([]byte(`{"name":"Ana","birth_date":"1990-04-12T10:00:00Z"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.BirthDate == nil || !p.BirthDate.Equal(time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected birth date %v", p.BirthDate)
	}

	if err := json.Unmarshal([]byte(`{"name":"Ana","birth_date":"12/04/1990"}`), &p); err == nil {
		t.Error("expected error for non-ISO date")
	}

	out, _ := json.Marshal(Patient{Name: "Bruno"})
	var m map[string]interface{}
	json.Unmarshal(out, &m)
	if _, ok := m["birth_date"]; ok {
		t.Error("expected birth_date omitted when unknown")
	}
}
