package inspect

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/filament-go/filament/pkg/filament"
)

const (
	// sendBuffer is the per-connection queue depth. A consumer that
	// falls this far behind is dropped.
	sendBuffer = 64

	// writeTimeout bounds a single WebSocket write.
	writeTimeout = 5 * time.Second
)

// event is one engine event as streamed to /events subscribers.
type event struct {
	Type        string `json:"type"`
	Signal      string `json:"signal,omitempty"`
	Kind        string `json:"kind,omitempty"`
	ID          uint64 `json:"id,omitempty"`
	Subscribers int    `json:"subscribers,omitempty"`
	DurationUS  int64  `json:"duration_us,omitempty"`
	Pending     int    `json:"pending,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Error       string `json:"error,omitempty"`
}

type hubClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub is a filament.Observer that fans engine events out to WebSocket
// subscribers as JSON frames. Broadcasts never block the engine: each
// connection has a bounded queue and its own write pump, and a consumer
// whose queue overflows is dropped.
//
// Construct the Hub first, hand it to the runtime via
// filament.WithObserver (composing with instrument.Multi as needed),
// then hand it to New via WithHub.
type Hub struct {
	filament.NoOpObserver

	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*hubClient
	closed  bool
}

// NewHub creates a Hub. A nil logger falls back to slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger.With("component", "inspect"),
		clients: make(map[string]*hubClient),
	}
}

// attach registers a connection and starts its write pump. It returns
// the connection ID, or "" when the hub is already closed.
func (h *Hub) attach(conn *websocket.Conn) string {
	client := &hubClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return ""
	}
	h.clients[client.id] = client
	h.mu.Unlock()

	go h.writePump(client)
	return client.id
}

// detach removes a connection. Closing the send channel ends the write
// pump, which closes the socket. Safe to call more than once.
func (h *Hub) detach(id string) {
	h.mu.Lock()
	client, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(client.send)
	}
	h.mu.Unlock()
}

// ClientCount reports the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close drops every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
	}
	h.closed = true
	h.mu.Unlock()
}

func (h *Hub) writePump(c *hubClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("subscriber write failed", "conn_id", c.id, "error", err)
			h.detach(c.id)
			for range c.send {
				// Drain until detach closes the channel.
			}
			return
		}
	}
}

func (h *Hub) broadcast(ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	var stale []*hubClient
	h.mu.Lock()
	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			stale = append(stale, client)
		}
	}
	for _, client := range stale {
		h.logger.Debug("dropping slow subscriber", "conn_id", client.id)
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()
}

func (h *Hub) SignalCreated(info filament.SignalInfo) {
	h.broadcast(event{
		Type:        "signal_created",
		Signal:      info.Name,
		Kind:        string(info.Kind),
		ID:          info.ID,
		Subscribers: info.Subscribers,
	})
}

func (h *Hub) SignalWritten(info filament.SignalInfo, dur time.Duration) {
	h.broadcast(event{
		Type:        "signal_written",
		Signal:      info.Name,
		Kind:        string(info.Kind),
		ID:          info.ID,
		Subscribers: info.Subscribers,
		DurationUS:  dur.Microseconds(),
	})
}

func (h *Hub) SignalDisposed(info filament.SignalInfo) {
	h.broadcast(event{
		Type:   "signal_disposed",
		Signal: info.Name,
		Kind:   string(info.Kind),
		ID:     info.ID,
	})
}

func (h *Hub) EffectRan(id uint64, dur time.Duration) {
	h.broadcast(event{
		Type:       "effect_ran",
		ID:         id,
		DurationUS: dur.Microseconds(),
	})
}

func (h *Hub) BatchFlushed(pending int) {
	h.broadcast(event{
		Type:    "batch_flushed",
		Pending: pending,
	})
}

func (h *Hub) EngineError(kind string, err error) {
	h.broadcast(event{
		Type:      "engine_error",
		ErrorKind: kind,
		Error:     err.Error(),
	})
}

var _ filament.Observer = (*Hub)(nil)
