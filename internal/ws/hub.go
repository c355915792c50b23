// Package ws relays dispatcher events to interactive subscribers over
// websockets. Delivery is at-most-once: a subscriber that cannot keep up
// loses messages, never stalls the fleet head.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/temoto/alive/v2"

	"github.com/panelware/telehead/internal/head"
)

const (
	writeTimeout   = 10 * time.Second
	sendQueueDepth = 64
)

type Hub struct {
	alive    *alive.Alive
	log      hclog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

var _ head.Notifier = (*Hub)(nil)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log hclog.Logger) *Hub {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Hub{
		alive:   alive.NewAlive(),
		log:     log,
		clients: make(map[*client]struct{}, 8),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Publish fans one event out to every connected subscriber. Full send
// queues drop the event for that subscriber.
func (h *Hub) Publish(deviceID uint32, ev *head.Event) {
	js, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("event marshal", "device", deviceID, "err", err)
		return
	}
	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- js:
		default:
			h.log.Debug("slow subscriber, event dropped", "device", deviceID)
		}
	}
	h.mu.Unlock()
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.alive.Stop()
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	h.alive.Wait()
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueueDepth)}
	if !h.alive.Add(2) {
		_ = conn.Close()
		return
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("subscriber connected", "remote", r.RemoteAddr)
	go h.writer(c)
	go h.reader(c)
}

func (h *Hub) writer(c *client) {
	defer h.alive.Done()
	for js := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, js); err != nil {
			h.drop(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
	_ = c.conn.Close()
}

// reader discards inbound traffic, it exists to notice the peer going away.
func (h *Hub) reader(c *client) {
	defer h.alive.Done()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}
