package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"swapchain/internal/domain"
	"swapchain/internal/settlement"
)

const (
	// clientBuffer is the per-client outbound queue. Slow consumers are
	// disconnected rather than allowed to stall the fan-out.
	clientBuffer = 64

	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsPongTimeout  = 60 * time.Second
)

// Hub fans settlement events out to connected WebSocket clients.
// It implements settlement.EventSink; Publish never blocks.
type Hub struct {
	logger *log.Logger

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  bool

	// onClientChange reports the client count after each change; nil disables.
	onClientChange func(n int)
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. Callers typically register it as an engine sink
// and route GET /ws to ServeWS.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*hubClient]struct{}),
	}
}

// SetClientGauge installs a callback reporting the connected client
// count (e.g. a Prometheus gauge setter).
func (h *Hub) SetClientGauge(fn func(n int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientChange = fn
}

// Publish sends the event to every connected client. Clients whose
// queue is full are dropped.
func (h *Hub) Publish(e domain.SettlementEvent) {
	payload, err := json.Marshal(eventMessage(e))
	if err != nil {
		h.logger.Printf("marshal ws event for order %d: %v", e.OrderID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.dropLocked(c)
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is public and read-only.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades the request and streams settlement events until the
// client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade: %v", err)
		return
	}

	c := &hubClient{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	change := h.onClientChange
	h.mu.Unlock()
	if change != nil {
		change(n)
	}

	go h.writeLoop(c)
	h.readLoop(c)
}

// writeLoop pushes queued events and pings to one client.
func (h *Hub) writeLoop(c *hubClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(wsWriteTimeout))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readLoop consumes (and discards) client frames to service pongs and
// detect disconnects.
func (h *Hub) readLoop(c *hubClient) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes and closes a client. Caller must hold h.mu.
func (h *Hub) dropLocked(c *hubClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
	if h.onClientChange != nil {
		h.onClientChange(len(h.clients))
	}
}

// Verify interface compliance at compile time.
var _ settlement.EventSink = (*Hub)(nil)
