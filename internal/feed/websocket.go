package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mmynk/triplan/internal/middleware"
	"github.com/mmynk/triplan/internal/models"
)

// WebSocket connection constants
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize int64 = 512

	sendBuffer = 64
)

// Message is the frame pushed to websocket clients.
type Message struct {
	Type      string    `json:"type"`
	Event     Event     `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// Authorizer reports whether user may watch projectID.
type Authorizer func(ctx context.Context, user models.UserRef, projectID string) error

// Handler upgrades GET /ws?project=<id> to a websocket streaming that
// project's change events. It expects the caller to be on the request
// context (see middleware.RequireAuthHTTP).
type Handler struct {
	hub       *Hub
	authorize Authorizer
	upgrader  websocket.Upgrader
}

// NewHandler creates the websocket endpoint.
func NewHandler(hub *Hub, authorize Authorizer) *Handler {
	return &Handler{
		hub:       hub,
		authorize: authorize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	projectID := r.URL.Query().Get("project")
	if projectID == "" {
		http.Error(w, "project is required", http.StatusBadRequest)
		return
	}
	if err := h.authorize(r.Context(), user, projectID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err, "user_id", user.ID)
		return
	}

	c := &client{
		conn: conn,
		user: user,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.unsubscribe = h.hub.Subscribe(AllResources, func(ev Event) {
		if ev.ProjectID != projectID {
			return
		}
		c.push(ev)
	})
	slog.Info("Websocket connected", "user_id", user.ID, "project_id", projectID)

	go c.writePump()
	c.readPump()
	slog.Info("Websocket disconnected", "user_id", user.ID, "project_id", projectID)
}

type client struct {
	conn        *websocket.Conn
	user        models.UserRef
	send        chan []byte
	done        chan struct{}
	unsubscribe func()
}

// push queues ev without blocking the publisher. A client that cannot keep
// up misses events; it refetches on the next one it does get.
func (c *client) push(ev Event) {
	data, err := json.Marshal(Message{Type: "change", Event: ev, Timestamp: time.Now()})
	if err != nil {
		slog.Error("Failed to encode feed event", "error", err)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		slog.Warn("Dropping feed event for slow client", "user_id", c.user.ID, "resource", ev.Resource)
	}
}

// readPump drains the connection so pongs and close frames are processed.
func (c *client) readPump() {
	defer func() {
		c.unsubscribe()
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Websocket read error", "user_id", c.user.ID, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
