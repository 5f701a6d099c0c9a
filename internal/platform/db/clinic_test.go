package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newClinicContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestExtractClinicID_FromHeader(t *testing.T) {
	c := newClinicContext("/")
	c.Request().Header.Set(ClinicHeader, "centro")
	if got := extractClinicID(c, "default"); got != "centro" {
		t.Errorf("expected centro, got %s", got)
	}
}

func TestExtractClinicID_FromQuery(t *testing.T) {
	c := newClinicContext("/?clinic_id=zona_sul")
	if got := extractClinicID(c, "default"); got != "zona_sul" {
		t.Errorf("expected zona_sul, got %s", got)
	}
}

func TestExtractClinicID_Priority(t *testing.T) {
	c := newClinicContext("/?clinic_id=query")
	c.Request().Header.Set(ClinicHeader, "header")
	c.Set("jwt_clinic_id", "token")
	if got := extractClinicID(c, "default"); got != "token" {
		t.Errorf("expected token claim to win, got %s", got)
	}

	c = newClinicContext("/?clinic_id=query")
	c.Request().Header.Set(ClinicHeader, "header")
	if got := extractClinicID(c, "default"); got != "header" {
		t.Errorf("expected header to win over query, got %s", got)
	}
}

func TestExtractClinicID_Default(t *testing.T) {
	c := newClinicContext("/")
	c.Set("jwt_clinic_id", "")
	if got := extractClinicID(c, "default"); got != "default" {
		t.Errorf("expected default, got %s", got)
	}
}

func TestClinicIDPattern(t *testing.T) {
	valid := []string{"default", "clinic_1", "ABC123"}
	invalid := []string{"", "a-b", "x;DROP", "a b", "../etc"}
	for _, id := range valid {
		if !clinicIDPattern.MatchString(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if clinicIDPattern.MatchString(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}

func TestSchemaName(t *testing.T) {
	if got := SchemaName("default"); got != "clinic_default" {
		t.Errorf("expected clinic_default, got %s", got)
	}
}

func TestCreateClinicSchema_InvalidID(t *testing.T) {
	if err := CreateClinicSchema(context.Background(), nil, "bad-id!", ""); err == nil {
		t.Error("expected error for invalid clinic id")
	}
}

func TestContextAccessors_WrongTypes(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBConnKey, "not-a-conn")
	if ConnFromContext(ctx) != nil {
		t.Error("expected nil conn for wrong type")
	}
	ctx = context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if TxFromContext(ctx) != nil {
		t.Error("expected nil tx for wrong type")
	}
	ctx = context.WithValue(context.Background(), ClinicIDKey, 42)
	if ClinicFromContext(ctx) != "" {
		t.Error("expected empty clinic id for wrong type")
	}
}

func TestWithTx_NoConnection(t *testing.T) {
	_, _, err := WithTx(context.Background())
	if err == nil || err.Error() != "no database connection in context" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTxRunner_NoConnection(t *testing.T) {
	called := false
	err := TxRunner(nil)(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("expected error without pool or connection")
	}
	if called {
		t.Error("fn must not run without a transaction")
	}
}

func TestAcquireClinic_InvalidID(t *testing.T) {
	if _, _, err := AcquireClinic(context.Background(), nil, "bad;id"); err == nil {
		t.Error("expected error for invalid clinic identifier")
	}
}
