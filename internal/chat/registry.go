package chat

import (
	"sync"

	"go.uber.org/zap"
)

// Conn is a registered connection as seen by the broadcaster.
type Conn interface {
	// Send queues payload without blocking. It fails with ErrTransportClosed
	// once the connection is closed or its queue is full.
	Send(payload []byte) error
	IsOpen() bool
	Close() error
}

// Registry is the set of live chat connections.
type Registry struct {
	mu      sync.RWMutex
	conns   map[Conn]struct{}
	metrics *Metrics
}

func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{
		conns:   make(map[Conn]struct{}),
		metrics: metrics,
	}
}

func (r *Registry) Register(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c]; ok {
		return
	}
	r.conns[c] = struct{}{}
	r.metrics.connRegistered()
}

func (r *Registry) Deregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c]; !ok {
		return
	}
	delete(r.conns, c)
	r.metrics.connDeregistered()
}

// Broadcast queues payload on every open connection registered when the call
// started and returns how many accepted it. Connections that are closed or
// fail the send are deregistered at once and closed in the background.
func (r *Registry) Broadcast(payload []byte) int {
	targets := r.snapshot()
	r.metrics.broadcast()

	delivered := 0
	for _, c := range targets {
		if !c.IsOpen() {
			r.Deregister(c)
			continue
		}
		if err := c.Send(payload); err != nil {
			zap.L().Debug("chat delivery failed", zap.Error(err))
			r.metrics.deliveryDropped()
			r.Deregister(c)
			go func() { _ = c.Close() }()
			continue
		}
		delivered++
	}

	return delivered
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// CloseAll deregisters every connection and closes them concurrently,
// returning once all closes have finished.
func (r *Registry) CloseAll() {
	var wg sync.WaitGroup
	for _, c := range r.snapshot() {
		r.Deregister(c)
		wg.Add(1)
		go func(c Conn) {
			defer wg.Done()
			_ = c.Close()
		}(c)
	}
	wg.Wait()
}

func (r *Registry) snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}

	return conns
}
