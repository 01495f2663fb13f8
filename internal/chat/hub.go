package chat

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Options struct {
	SendBufferSize  int
	MaxMessageBytes int64
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
}

// Hub upgrades HTTP requests into chat sessions sharing one registry.
type Hub struct {
	store    MessageStore
	registry *Registry
	metrics  *Metrics
	upgrader websocket.Upgrader
	opts     Options
}

func NewHub(store MessageStore, registry *Registry, metrics *Metrics, opts Options) *Hub {
	if opts.SendBufferSize <= 0 {
		opts.SendBufferSize = 256
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Hub{
		store:    store,
		registry: registry,
		metrics:  metrics,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Serve upgrades the request and blocks until the session ends. The upgrader
// has already replied when an error is returned.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, identity string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("h.upgrader.Upgrade -> %w", err)
	}

	client := NewClient(conn, h.opts.SendBufferSize, h.opts.MaxMessageBytes)
	session := NewSession(client, identity, h.store, h.registry, h.metrics)
	if err = session.Accept(); err != nil {
		return fmt.Errorf("session.Accept -> %w", err)
	}

	zap.L().Debug("chat connection opened", zap.String("userID", identity), zap.Int("online", h.registry.Size()))

	go client.WritePump()
	session.Run(r.Context())

	zap.L().Debug("chat connection closed", zap.String("userID", identity), zap.Int("online", h.registry.Size()))

	return nil
}
