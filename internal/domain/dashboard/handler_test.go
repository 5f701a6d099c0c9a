package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/backoffice/internal/domain/scheduling"
)

func TestHandler_Metrics(t *testing.T) {
	f := newFixture()
	f.appts.appts = []scheduling.Appointment{appt("2026-10-19", scheduling.StatusCompleted)}
	h := NewHandler(f.svc, func() time.Time { return now })

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.Metrics(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["completed_today"] != float64(1) || got["total_slots"] != float64(20) {
		t.Errorf("unexpected metrics %v", got)
	}
}

func TestHandler_Overview(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc, func() time.Time { return now })

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.Overview(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Period struct {
			Label string `json:"label"`
		} `json:"period"`
		Board []json.RawMessage `json:"board"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Period.Label != "Outubro de 2026" {
		t.Errorf("unexpected label %q", got.Period.Label)
	}
	if got.Board == nil {
		t.Error("expected an empty board array, not null")
	}
}
