package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/school-portal/internal/domain"
)

type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	}

	return fmt.Sprintf("State(%d)", int32(s))
}

// Transport is a connection the session can read events from.
type Transport interface {
	Conn
	ReadMessage() ([]byte, error)
}

type MessageStore interface {
	Append(ctx context.Context, authorID, content string) (domain.ChatMessage, error)
	FindAuthor(ctx context.Context, id string) (domain.User, error)
}

// Session runs the chat protocol for one connection. identity is the
// authenticated user id, or empty for an anonymous connection.
type Session struct {
	transport Transport
	identity  string
	store     MessageStore
	registry  *Registry
	metrics   *Metrics
	state     atomic.Int32
	closeOnce sync.Once
}

func NewSession(transport Transport, identity string, store MessageStore, registry *Registry, metrics *Metrics) *Session {
	return &Session{
		transport: transport,
		identity:  identity,
		store:     store,
		registry:  registry,
		metrics:   metrics,
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Accept registers the connection. A transport that is already gone moves the
// session straight to CLOSED.
func (s *Session) Accept() error {
	if !s.transport.IsOpen() {
		s.Close()
		return ErrTransportClosed
	}

	s.registry.Register(s.transport)
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen)) {
		s.registry.Deregister(s.transport)
		return ErrTransportClosed
	}

	return nil
}

// Run processes inbound events in arrival order until the transport fails or
// is closed, then closes the session.
func (s *Session) Run(ctx context.Context) {
	defer s.Close()

	for {
		raw, err := s.transport.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				zap.L().Info("chat connection lost", zap.String("userID", s.identity), zap.Error(err))
			}
			return
		}

		if err = s.HandleEvent(ctx, raw); err != nil {
			s.metrics.eventRejected(rejectReason(err))
			zap.L().Warn("chat event dropped", zap.String("userID", s.identity), zap.Error(err))
		}
	}
}

// HandleEvent validates, stores and broadcasts one inbound frame. A returned
// error means the event was dropped; the connection stays open either way.
func (s *Session) HandleEvent(ctx context.Context, raw []byte) error {
	if s.State() != StateOpen {
		return ErrTransportClosed
	}

	ev, err := decodeComposeEvent(raw)
	if err != nil {
		return err
	}

	authorID := *ev.UserID
	if s.identity != "" && authorID != s.identity {
		return fmt.Errorf("%w: userId does not match the connection identity", ErrInvalidEvent)
	}

	msg, err := s.store.Append(ctx, authorID, *ev.Content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.metrics.messageStored()

	enriched := domain.EnrichedMessage{ChatMessage: msg}
	author, err := s.store.FindAuthor(ctx, authorID)
	if err != nil {
		zap.L().Info("broadcasting without author",
			zap.Uint("messageID", msg.ID),
			zap.Error(fmt.Errorf("%w: %v", ErrUnknownAuthor, err)),
		)
	} else {
		enriched.User = author.Author()
	}

	payload, err := encodeNewMessage(enriched)
	if err != nil {
		return fmt.Errorf("encodeNewMessage -> %w", err)
	}
	s.registry.Broadcast(payload)

	return nil
}

// Close is safe to call any number of times; the connection is deregistered
// once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		s.registry.Deregister(s.transport)
		_ = s.transport.Close()
	})
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, ErrUnsupportedEvent):
		return "unsupported"
	case errors.Is(err, ErrInvalidEvent):
		return "invalid"
	case errors.Is(err, ErrStoreUnavailable):
		return "store"
	}

	return "other"
}
