// Package ws serves a read-only spectator feed of running games over
// WebSocket. Each save slot is a channel; watchers of a slot receive the
// latest full board first and then every change as it happens.
package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Watchers never send data; anything bigger than a close frame is dropped.
	maxMessageSize = 512

	sendBuffer      = 256
	broadcastBuffer = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The feed is read-only and public.
		return true
	},
}

// Message is what watchers receive.
type Message struct {
	Slot  string `json:"slot"`
	Event any    `json:"event"`
}

type outbound struct {
	slot   string
	data   []byte
	retain bool
	forget bool // drop the retained message instead of sending
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	slot string
}

// Hub tracks watchers per slot and fans out published events.
type Hub struct {
	slots    map[string]map[*client]bool
	retained map[string][]byte

	broadcast  chan outbound
	register   chan *client
	unregister chan *client
	live       chan chan []string
	done       chan struct{}

	logger *log.Logger
}

// NewHub creates a hub. A nil logger discards output.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		slots:      make(map[string]map[*client]bool),
		retained:   make(map[string][]byte),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		live:       make(chan chan []string),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled,
// then disconnects every watcher.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, clients := range h.slots {
			for c := range clients {
				close(c.send)
			}
		}
		h.slots = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)

		case reply := <-h.live:
			slots := make([]string, 0, len(h.retained))
			for slot := range h.retained {
				slots = append(slots, slot)
			}
			sort.Strings(slots)
			reply <- slots
		}
	}
}

// Publish queues v for the watchers of slot. When retain is set the
// message also becomes the first thing new watchers receive. Publish never
// blocks; when the queue is full the message is dropped.
func (h *Hub) Publish(slot string, v any, retain bool) {
	data, err := json.Marshal(Message{Slot: slot, Event: v})
	if err != nil {
		h.logger.Error("cannot encode spectator message", "slot", slot, "error", err)
		return
	}

	select {
	case h.broadcast <- outbound{slot: slot, data: data, retain: retain}:
	case <-h.done:
	default:
		h.logger.Warn("spectator queue full, dropping message", "slot", slot)
	}
}

// Forget drops the retained message of slot once every event published
// before it has been delivered. Call it when the game on slot ends for
// good. Unlike Publish it waits for queue space.
func (h *Hub) Forget(slot string) {
	select {
	case h.broadcast <- outbound{slot: slot, forget: true}:
	case <-h.done:
	}
}

// Live returns the slots that have a board to show, sorted. It returns
// nil when ctx ends or the hub has stopped.
func (h *Hub) Live(ctx context.Context) []string {
	reply := make(chan []string, 1)
	select {
	case h.live <- reply:
	case <-ctx.Done():
		return nil
	case <-h.done:
		return nil
	}
	return <-reply
}

// Handler returns the HTTP handler serving GET /watch/{slot} and the
// JSON list of live slots at GET /watch.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /watch", func(w http.ResponseWriter, r *http.Request) {
		slots := h.Live(r.Context())
		if slots == nil {
			slots = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(slots); err != nil {
			h.logger.Debug("cannot write slot list", "error", err)
		}
	})
	mux.HandleFunc("GET /watch/{slot}", func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, r.PathValue("slot"))
	})
	return mux
}

// ServeWS upgrades the request and attaches the connection to slot.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, slot string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		slot: slot,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) registerClient(c *client) {
	if h.slots[c.slot] == nil {
		h.slots[c.slot] = make(map[*client]bool)
	}
	h.slots[c.slot][c] = true

	if data, ok := h.retained[c.slot]; ok {
		c.send <- data
	}
	h.logger.Debug("watcher joined", "slot", c.slot, "watchers", len(h.slots[c.slot]))
}

func (h *Hub) unregisterClient(c *client) {
	clients, ok := h.slots[c.slot]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(h.slots, c.slot)
	}
	h.logger.Debug("watcher left", "slot", c.slot, "watchers", len(clients))
}

func (h *Hub) broadcastMessage(msg outbound) {
	if msg.forget {
		delete(h.retained, msg.slot)
		return
	}
	if msg.retain {
		h.retained[msg.slot] = msg.data
	}

	for c := range h.slots[msg.slot] {
		select {
		case c.send <- msg.data:
		default:
			// A watcher that cannot keep up is disconnected.
			h.unregisterClient(c)
		}
	}
}

// readPump discards incoming frames and detects disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("watcher read error", "slot", c.slot, "error", err)
			}
			return
		}
	}
}

// writePump sends queued messages, one per frame, and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
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
