package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/pkg/logger"
)

const broadcastBuffer = 256

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn Conn
	role model.Role
}

type event struct {
	resource policy.Resource
	message  []byte
}

// Hub fans stock, order and payment events out to connected clients whose
// role may view the event's resource.
type Hub struct {
	clients    map[Conn]model.Role
	register   chan client
	unregister chan Conn
	broadcast  chan event
	done       chan struct{}
	mutex      sync.Mutex
	logg       *logger.Logger
}

func NewHub(logg *logger.Logger) *Hub {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Hub{
		clients:    make(map[Conn]model.Role),
		register:   make(chan client),
		unregister: make(chan Conn),
		broadcast:  make(chan event, broadcastBuffer),
		done:       make(chan struct{}),
		logg:       logg,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c.conn] = c.role
			count := len(h.clients)
			h.mutex.Unlock()
			h.logg.Debug(h.logg.WithFields(ctx, map[string]any{
				"clients": count,
				"role":    string(c.role),
			}), "websocket client connected")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case ev := <-h.broadcast:
			h.mutex.Lock()
			for conn, role := range h.clients {
				if !policy.Allowed(role, policy.ActionView, ev.resource) {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, ev.message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds conn for a client acting as role.
func (h *Hub) Register(conn Conn, role model.Role) {
	select {
	case h.register <- client{conn: conn, role: role}:
	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish encodes payload and queues it for clients allowed to view resource.
// It never blocks the caller: when the queue is full the event is dropped and logged.
func (h *Hub) Publish(resource policy.Resource, payload map[string]any) {
	if _, ok := payload["timestamp"]; !ok {
		payload["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}
	message, err := json.Marshal(payload)
	if err != nil {
		h.logg.Error(context.Background(), "failed to encode websocket event", err)
		return
	}
	select {
	case h.broadcast <- event{resource: resource, message: message}:
	default:
		h.logg.Warn(h.logg.WithField(context.Background(), "type", payload["type"]), "websocket queue full, event dropped")
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Handler upgrades the request and keeps the client registered until it disconnects.
// It must run behind middleware.RequireWebSocketAuth; connections without a
// principal are closed straight away.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		principal, _ := conn.Locals(middleware.PrincipalKey).(*model.Principal)
		if principal == nil {
			conn.Close()
			return
		}
		h.Register(conn, principal.Role)
		defer h.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
