package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fleet-dispatch/module/core/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks connected websocket clients and fans live position
// snapshots out to all of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Register(r *gin.RouterGroup, snapshot func() []domain.TelemetryRecord) {
	r.GET("/ws/live_locations", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws upgrade error: %v", err)
			return
		}
		h.add(conn)
		go h.readPump(conn)

		// seed new clients with the latest snapshot so the map renders
		// before the next poll completes
		if err := writeRecords(conn, snapshot()); err != nil {
			h.remove(conn)
			conn.Close()
		}
	})
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) Broadcast(records []domain.TelemetryRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	h.mu.Lock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			c.Close()
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) readPump(c *websocket.Conn) {
	defer func() {
		h.remove(c)
		_ = c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func writeRecords(c *websocket.Conn, records []domain.TelemetryRecord) error {
	if records == nil {
		records = []domain.TelemetryRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}
