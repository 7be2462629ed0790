package stream

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

const (
	EventSnapshot     = "snapshot"
	EventState        = "state"
	EventNotification = "notification"
)

// Event is one message pushed to dashboard clients.
type Event struct {
	Type         string               `json:"type"`
	Entries      []domain.Entry       `json:"entries,omitempty"`
	Entry        *domain.Entry        `json:"entry,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// sameOrigin allows requests without Origin and those whose Origin host matches Host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(strings.TrimSpace(r.Host))
	originHost := strings.ToLower(strings.TrimSpace(u.Host))
	return host == originHost
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub pushes registry changes and notifications to WebSocket clients.
// It is both a Notifier and a registry subscriber. Slow clients are dropped.
type Hub struct {
	snapshot func() []domain.Entry
	now      func() time.Time
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub accepts same-origin upgrades plus any origin listed in allowedOrigins
// (the dashboard's CORS origins).
func NewHub(snapshot func() []domain.Entry, allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	h := &Hub{
		snapshot: snapshot,
		now:      time.Now,
		clients:  make(map[*client]struct{}),
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		return sameOrigin(r) || allowed["*"] || allowed[strings.ToLower(r.Header.Get("Origin"))]
	}
	return h
}

func (h *Hub) Notify(kind domain.NotificationKind, message string) {
	h.broadcast(Event{
		Type:         EventNotification,
		Notification: &domain.Notification{Kind: kind, Message: message, At: h.now()},
	})
}

// Publish is meant to be passed to Registry.Subscribe.
func (h *Hub) Publish(e domain.Entry) {
	h.broadcast(Event{Type: EventState, Entry: &e})
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan Event, sendBuffer)}

	// register before the snapshot so no change slips between the two
	h.mu.Lock()
	c.send <- Event{Type: EventSnapshot, Entries: h.snapshot()}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.writeLoop(c, done)
	h.remove(c)
	conn.Close()
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("stream write failed: remote=%s err=%v", c.conn.RemoteAddr(), err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
