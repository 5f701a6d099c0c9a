package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/backoffice/internal/platform/auth"
	"github.com/clinic/backoffice/internal/platform/db"
)

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := NewClient("c1")

	hub.Register(client)
	if hub.ClientCount("c1") != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount("c1"))
	}

	hub.Unregister(client)
	if hub.ClientCount("c1") != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount("c1"))
	}
	if _, ok := <-client.Send; ok {
		t.Error("expected Send to be closed")
	}

	// A second unregister must not panic on the closed channel.
	hub.Unregister(client)
}

func TestHub_PublishIsScopedToClinic(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	mine := NewClient("c1")
	other := NewClient("c2")
	hub.Register(mine)
	hub.Register(other)

	id := uuid.New()
	hub.Publish(context.Background(), Event{Type: AppointmentStatus, Clinic: "c1", AppointmentID: id, Status: "arrived"})

	select {
	case data := <-mine.Send:
		var got map[string]interface{}
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got["type"] != AppointmentStatus || got["appointment_id"] != id.String() || got["status"] != "arrived" {
			t.Errorf("unexpected payload %v", got)
		}
		if _, ok := got["Clinic"]; ok {
			t.Error("clinic must not be sent on the wire")
		}
		if got["timestamp"] == nil {
			t.Error("expected timestamp to be filled in")
		}
	default:
		t.Fatal("expected event for clinic c1")
	}

	select {
	case <-other.Send:
		t.Fatal("event leaked to another clinic")
	default:
	}
}

func TestHub_PublishSkipsFullBuffers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := &Client{ID: "slow", Clinic: "c1", Send: make(chan []byte, 1)}
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		hub.Publish(context.Background(), Event{Type: AppointmentCreated, Clinic: "c1"})
		hub.Publish(context.Background(), Event{Type: AppointmentUpdated, Clinic: "c1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full client buffer")
	}
	if len(client.Send) != 1 {
		t.Errorf("expected 1 buffered event, got %d", len(client.Send))
	}
}

func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient("c1")
			hub.Register(c)
			hub.Publish(context.Background(), Event{Type: AppointmentCreated, Clinic: "c1"})
			hub.Unregister(c)
		}()
	}
	wg.Wait()
	if hub.ClientCount("c1") != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount("c1"))
	}
}

func TestNoop_Publish(t *testing.T) {
	var p Publisher = Noop{}
	p.Publish(context.Background(), Event{Type: AppointmentDeleted})
}

func withClinic(clinic string, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), db.ClinicIDKey, clinic)
			ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func TestHandler_RequiresWebSocket(t *testing.T) {
	h := NewHandler(NewHub(zerolog.Nop()), nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments/live", nil)
	req = req.WithContext(context.WithValue(req.Context(), db.ClinicIDKey, "c1"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Connect(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code == http.StatusSwitchingProtocols {
		t.Fatal("expected upgrade to fail for a plain request")
	}
}

func TestHandler_RequiresClinic(t *testing.T) {
	h := NewHandler(NewHub(zerolog.Nop()), nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments/live", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Connect(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_RoleRequired(t *testing.T) {
	h := NewHandler(NewHub(zerolog.Nop()), nil)
	e := echo.New()
	g := e.Group("/api/v1", withClinic("c1", auth.RoleFinance))
	h.RegisterRoutes(g)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/live", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for finance role, got %d", rec.Code)
	}
}

func TestHandler_FullUpgradeReceivesClinicEvents(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	h := NewHandler(hub, nil)

	e := echo.New()
	g := e.Group("/api/v1", withClinic("c1", auth.RoleReception))
	h.RegisterRoutes(g)

	server := httptest.NewServer(e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/appointments/live"
	conn, resp, err := gorillawebsocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("c1") < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount("c1") != 1 {
		t.Fatal("expected the connection to be registered for c1")
	}

	id := uuid.New()
	hub.Publish(context.Background(), Event{Type: AppointmentStatus, Clinic: "c1", AppointmentID: id, Status: "in_service"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if got.Type != AppointmentStatus || got.AppointmentID != id || got.Status != "in_service" {
		t.Fatalf("unexpected event %+v", got)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.ClientCount("c1") > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount("c1") != 0 {
		t.Fatal("expected the client to be unregistered after close")
	}
}

func TestHandler_CheckOrigin(t *testing.T) {
	h := NewHandler(NewHub(zerolog.Nop()), []string{"https://clinic.example"})
	ok := httptest.NewRequest(http.MethodGet, "/", nil)
	ok.Header.Set("Origin", "https://clinic.example")
	if !h.upgrader.CheckOrigin(ok) {
		t.Error("expected configured origin to be accepted")
	}
	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Origin", "https://evil.example")
	if h.upgrader.CheckOrigin(bad) {
		t.Error("expected foreign origin to be rejected")
	}
}
