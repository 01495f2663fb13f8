package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/school-portal/internal/domain"
)

const testToken = "token-u1"

// fakePortal answers the handful of routes the client uses and echoes every
// chat_message back as a new_message.
type fakePortal struct {
	mu      sync.Mutex
	nextID  uint
	history []domain.EnrichedMessage
	conns   []*websocket.Conn
}

func (p *fakePortal) handler(t *testing.T) http.Handler {
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"Unauthorized","error":"wrong credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": testToken,
			"user":  domain.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace"},
		})
	})

	mux.HandleFunc("/api/v1/chat/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		_ = json.NewEncoder(w).Encode(p.history)
	})

	mux.HandleFunc("/api/v1/chat/online", func(w http.ResponseWriter, _ *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]int{"online": len(p.conns)})
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		p.mu.Lock()
		p.conns = append(p.conns, conn)
		p.mu.Unlock()

		for {
			var ev composeEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			p.mu.Lock()
			p.nextID++
			out := newMessageEvent{Type: "new_message", Message: domain.EnrichedMessage{
				ChatMessage: domain.ChatMessage{ID: p.nextID, UserID: ev.UserID, Content: ev.Content, CreatedAt: time.Now().UTC()},
				User:        &domain.Author{FirstName: "Ada", LastName: "Lovelace"},
			}}
			p.history = append(p.history, out.Message)
			p.mu.Unlock()
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
	})

	return mux
}

func (p *fakePortal) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.conns {
		_ = c.Close()
	}
}

func newTestClient(t *testing.T) (*Client, *fakePortal) {
	t.Helper()

	portal := &fakePortal{}
	srv := httptest.NewServer(portal.handler(t))
	t.Cleanup(srv.Close)
	t.Cleanup(portal.closeAll)

	c, err := New(srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, portal
}

func TestNew_RejectsBadScheme(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
}

func TestClient_Login(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "ada@example.com", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "wrong credentials")

	user, err := c.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, testToken, c.token)
	assert.Equal(t, "u1", c.userID)
}

func TestClient_SendBeforeConnect(t *testing.T) {
	c, _ := newTestClient(t)

	assert.ErrorIs(t, c.Send("hi"), ErrNotConnected)
	assert.ErrorIs(t, c.Send("   "), ErrEmptyMessage)
}

func TestClient_SendReceivesBroadcast(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	received := make(chan domain.EnrichedMessage, 1)
	c.OnMessage = func(m domain.EnrichedMessage) { received <- m }

	_, err := c.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, c.Connect(ctx))

	require.NoError(t, c.Send("hello class"))

	select {
	case m := <-received:
		assert.Equal(t, "hello class", m.Content)
		assert.Equal(t, "u1", m.UserID)
		require.NotNil(t, m.User)
		assert.Equal(t, "Ada", m.User.FirstName)
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
	}

	online, err := c.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, online)

	// history now holds the same message; seeding must not duplicate it
	require.NoError(t, c.FetchHistory(ctx))
	assert.Equal(t, 1, c.Timeline().Len())
}

func TestClient_ConnectWithoutTokenFails(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.Connect(context.Background())
	assert.Error(t, err)
}

func TestClient_ServerCloseEndsClient(t *testing.T) {
	c, portal := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, c.Connect(ctx))

	require.Eventually(t, func() bool {
		portal.mu.Lock()
		defer portal.mu.Unlock()
		return len(portal.conns) == 1
	}, 2*time.Second, 5*time.Millisecond)
	portal.closeAll()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the closed connection")
	}
	assert.ErrorIs(t, c.Send("still there?"), ErrClosed)
}
