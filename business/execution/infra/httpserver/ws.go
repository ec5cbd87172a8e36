package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

// wsEvent is the exact event envelope pushed to every connected
// client (spec §6): {"type": "...", ...payload fields}.
type wsEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"-"`
}

func (e wsEvent) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": e.Type}
	if e.Payload != nil {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		var fields map[string]any
		if err := json.Unmarshal(b, &fields); err == nil {
			for k, v := range fields {
				out[k] = v
			}
		}
	}
	return json.Marshal(out)
}

// Hub accepts websocket clients on "/" and fans execution events out
// to all of them. Clients send {"type":"ping"} and receive
// {"type":"pong"}.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	log     logger.LoggerInterface
}

// NewHub builds an empty Hub.
func NewHub(log logger.LoggerInterface) *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{}), log: log}
}

// ServeHTTP upgrades the connection and serves it until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	h.write(r.Context(), conn, wsEvent{Type: "connected"})

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &msg) == nil && msg.Type == "ping" {
			h.write(r.Context(), conn, wsEvent{Type: "pong"})
		}
	}
}

// Broadcast pushes an event to every connected client.
func (h *Hub) Broadcast(eventType string, payload any) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		h.write(context.Background(), c, wsEvent{Type: eventType, Payload: payload})
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, evt wsEvent) {
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, b); err != nil {
		h.log.Warn(ctx, "ws broadcast write failed", "error", err.Error())
	}
}
