package chat

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/vietanh2810/school-portal/internal/domain"
)

type fakeConn struct {
	mu       sync.Mutex
	open     bool
	failSend bool
	sent     [][]byte
	closes   int
	inbound  chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{open: true, inbound: make(chan []byte, 16)}
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || c.failSend {
		return ErrTransportClosed
	}
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		close(c.inbound)
	}
	c.open = false
	c.closes++
	return nil
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	raw, ok := <-c.inbound
	if !ok {
		return nil, io.EOF
	}
	return raw, nil
}

func (c *fakeConn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.sent...)
}

type fakeStore struct {
	mu        sync.Mutex
	messages  []domain.ChatMessage
	users     map[string]domain.User
	appendErr error
}

func newFakeStore(users ...domain.User) *fakeStore {
	s := &fakeStore{users: map[string]domain.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) Append(_ context.Context, authorID, content string) (domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return domain.ChatMessage{}, s.appendErr
	}
	msg := domain.ChatMessage{ID: uint(len(s.messages) + 1), UserID: authorID, Content: content}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *fakeStore) FindAuthor(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.User{}, errors.New("user not found")
	}
	return u, nil
}

func (s *fakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
