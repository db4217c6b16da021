package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/vlcbridge/vlcbridge/internal/domain"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Hub fans player snapshots out to connected WebSocket clients.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run consumes the driver's events channel and broadcasts each snapshot
// to all subscribers. It returns when the channel closes or the context
// is cancelled.
func (h *Hub) Run(ctx context.Context, events <-chan domain.Snapshot) {
	h.logger.Info("WebSocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket hub stopped")
			return
		case snap, ok := <-events:
			if !ok {
				h.logger.Info("Events channel closed, hub stopping")
				return
			}
			h.broadcast(snap)
		}
	}
}

// broadcast sends one snapshot to every connected client; failed writes
// drop the client
func (h *Hub) broadcast(snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("Snapshot marshal failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.logger.Debug("WebSocket write failed, dropping client", zap.Error(err))
			h.remove(c)
			c.Close(websocket.StatusGoingAway, "write failed")
		}
	}
}

// Handle upgrades the request and keeps the client subscribed until it
// disconnects. Incoming frames are read and discarded; the stream is
// one-way.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // local interface, any origin allowed
	})
	if err != nil {
		h.logger.Warn("WebSocket accept failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("WebSocket client connected", zap.Int("clients", count))

	defer func() {
		h.remove(conn)
		conn.Close(websocket.StatusNormalClosure, "done")
		h.logger.Info("WebSocket client disconnected")
	}()

	for {
		if _, _, err := conn.Read(c.Request.Context()); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
