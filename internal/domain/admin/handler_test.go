package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newTestHandler() (*Handler, *mockCompanyRepo, *mockRoomRepo, *echo.Echo) {
	svc, company, rooms := newTestService()
	return NewHandler(svc), company, rooms, echo.New()
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandler_GetCompany(t *testing.T) {
	h, _, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.GetCompany(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got CompanyConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.BusinessHours.Monday.Open != "08:00" {
		t.Errorf("expected default hours, got %+v", got.BusinessHours.Monday)
	}
}

func TestHandler_UpdateCompany(t *testing.T) {
	h, company, _, e := newTestHandler()
	body := `{"name":"Clínica Vida","business_hours":{"monday":{"open":"07:00","close":"19:00","is_open":true}}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, body), rec)

	if err := h.UpdateCompany(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if company.cfg.BusinessHours.Monday.Open != "07:00" || company.cfg.BusinessHours.Tuesday.IsOpen {
		t.Errorf("unexpected stored hours %+v", company.cfg.BusinessHours)
	}
}

func TestHandler_UpdateCompany_Invalid(t *testing.T) {
	h, _, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPut, `{"name":""}`), httptest.NewRecorder())
	err := h.UpdateCompany(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_SetOpeningBalance(t *testing.T) {
	h, company, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPut, `{"amount":"1200.75"}`), httptest.NewRecorder())
	if err := h.SetOpeningBalance(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !company.cfg.OpeningBalance.Equal(decimal.RequireFromString("1200.75")) {
		t.Errorf("expected 1200.75, got %s", company.cfg.OpeningBalance)
	}

	c = e.NewContext(jsonRequest(http.MethodPut, `{}`), httptest.NewRecorder())
	err := h.SetOpeningBalance(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing amount, got %v", err)
	}
}

func TestHandler_Rooms(t *testing.T) {
	h, _, rooms, e := newTestHandler()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"name":"Sala 2"}`), rec)
	if err := h.CreateRoom(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var created Room
	json.Unmarshal(rec.Body.Bytes(), &created)

	c = e.NewContext(jsonRequest(http.MethodPatch, `{"active":false}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.UpdateRoom(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms.rooms[created.ID].Active {
		t.Error("expected room deactivated")
	}

	c = e.NewContext(jsonRequest(http.MethodPatch, `{"active":true}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	err := h.UpdateRoom(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
