// Package live pushes appointment changes to the reception screens of a
// clinic over WebSockets, so the board refreshes without polling.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event types.
const (
	AppointmentCreated = "appointment.created"
	AppointmentUpdated = "appointment.updated"
	AppointmentStatus  = "appointment.status"
	AppointmentDeleted = "appointment.deleted"
)

// Event is one change notification. Clinic selects the receivers and is not
// sent on the wire.
type Event struct {
	Type          string    `json:"type"`
	Clinic        string    `json:"-"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id,omitempty"`
	Status        string    `json:"status,omitempty"`
	Date          string    `json:"date,omitempty"`
	Time          string    `json:"time,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher delivers events. Publishing never blocks on slow receivers.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}

// Client is one connected screen.
type Client struct {
	ID     string
	Clinic string
	Send   chan []byte
}

func NewClient(clinic string) *Client {
	return &Client{ID: uuid.New().String(), Clinic: clinic, Send: make(chan []byte, 64)}
}

// Hub tracks connected clients per clinic.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger.With().Str("component", "live").Logger(),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.Clinic] == nil {
		h.clients[client.Clinic] = make(map[*Client]struct{})
	}
	h.clients[client.Clinic][client] = struct{}{}
}

// Unregister removes client and closes its Send channel. Unknown clients are
// ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subscribers, ok := h.clients[client.Clinic]
	if !ok {
		return
	}
	if _, ok := subscribers[client]; !ok {
		return
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.clients, client.Clinic)
	}
	close(client.Send)
}

// Publish sends event to every client of event.Clinic. A client whose buffer
// is full misses the event.
func (h *Hub) Publish(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("marshal live event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	dropped := 0
	for client := range h.clients[event.Clinic] {
		select {
		case client.Send <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn().Str("clinic", event.Clinic).Int("dropped", dropped).Msg("slow live clients skipped")
	}
}

// ClientCount returns the number of clients connected for clinic.
func (h *Hub) ClientCount(clinic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clinic])
}
