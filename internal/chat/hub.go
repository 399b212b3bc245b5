package chat

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 4096
	clientSendBuffer      = 256
)

// Settings tunes websocket connection behaviour for the hub.
type Settings struct {
	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int
}

func (s Settings) withDefaults() Settings {
	if s.WriteWait <= 0 {
		s.WriteWait = defaultWriteWait
	}
	if s.PongWait <= 0 {
		s.PongWait = defaultPongWait
	}
	if s.MaxMessageSize <= 0 {
		s.MaxMessageSize = defaultMaxMessageSize
	}
	return s
}

// Client is a single websocket connection subscribed to one thread room.
type Client struct {
	ThreadID string
	UserID   string
	Staff    bool

	conn *websocket.Conn
	send chan []byte
}

type broadcastMsg struct {
	room string
	data []byte
}

// Inbound carries a raw frame read from a connected client.
type Inbound struct {
	ThreadID string
	UserID   string
	Staff    bool
	Data     []byte
}

// InboundHandler processes frames read from clients. Implementations persist
// the message and call Broadcast to fan it back out.
type InboundHandler func(ctx context.Context, in Inbound)

// Hub routes messages between websocket clients grouped by thread room.
type Hub struct {
	settings Settings

	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex

	upgrader websocket.Upgrader
}

// NewHub constructs a hub. Run must be started before clients connect.
func NewHub(settings Settings) *Hub {
	settings = settings.withDefaults()
	hub := &Hub{
		settings:   settings,
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		done:       make(chan struct{}),
	}
	hub.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(settings.AllowedOrigins),
	}
	return hub
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	normalized := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(strings.ToLower(origin)), "/")
		if origin != "" {
			normalized[origin] = true
		}
	}
	return func(r *http.Request) bool {
		origin := strings.TrimRight(strings.TrimSpace(strings.ToLower(r.Header.Get("Origin"))), "/")
		if origin == "" {
			return true
		}
		return normalized[origin]
	}
}

// Run processes registration and broadcast events until ctx is cancelled or
// Stop is called.
func (h *Hub) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			h.Stop()
			return
		case <-h.done:
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.ThreadID] == nil {
				h.rooms[c.ThreadID] = make(map[*Client]bool)
			}
			h.rooms[c.ThreadID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.ThreadID]; conns != nil && conns[c] {
				delete(conns, c)
				close(c.send)
				if len(conns) == 0 {
					delete(h.rooms, c.ThreadID)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.room] {
				select {
				case c.send <- m.data:
				default:
					close(c.send)
					delete(h.rooms[m.room], c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, conns := range h.rooms {
		for c := range conns {
			close(c.send)
		}
		delete(h.rooms, room)
	}
}

// Broadcast fans data out to every client subscribed to the thread room.
func (h *Hub) Broadcast(threadID string, data []byte) {
	if h == nil || strings.TrimSpace(threadID) == "" || len(data) == 0 {
		return
	}
	select {
	case h.broadcast <- broadcastMsg{room: threadID, data: data}:
	case <-h.done:
	}
}

// Subscribers reports how many clients are connected to the thread room.
func (h *Hub) Subscribers(threadID string) int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[threadID])
}

// Serve upgrades the HTTP request to a websocket and pumps messages until the
// connection drops. Inbound frames are handed to the handler.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, threadID, userID string, staff bool, handler InboundHandler) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		ThreadID: strings.TrimSpace(threadID),
		UserID:   strings.TrimSpace(userID),
		Staff:    staff,
		conn:     conn,
		send:     make(chan []byte, clientSendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go h.writePump(client)
	go h.readPump(r.Context(), client, handler)
	return nil
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(h.settings.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.settings.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(ctx context.Context, c *Client, handler InboundHandler) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(h.settings.MaxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(h.settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(h.settings.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if handler == nil {
			continue
		}
		handler(ctx, Inbound{
			ThreadID: c.ThreadID,
			UserID:   c.UserID,
			Staff:    c.Staff,
			Data:     data,
		})
	}
}
