package chat

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStalledClient returns a server-side Client whose peer never reads.
func newStalledClient(t *testing.T, bufferSize int) *Client {
	t.Helper()

	accepted := make(chan *Client, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(conn, bufferSize, 0)
		go c.WritePump()
		accepted <- c
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })

	select {
	case c := <-accepted:
		t.Cleanup(func() { _ = c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
		return nil
	}
}

func TestRegistry_SlowPeerDoesNotStallBroadcast(t *testing.T) {
	r := NewRegistry(nil)
	slow := newStalledClient(t, 8)
	fast := newFakeConn()
	r.Register(slow)
	r.Register(fast)

	payload := bytes.Repeat([]byte("x"), 1<<20)
	var worst time.Duration
	sent := 0
	for i := 0; i < 400 && r.Size() == 2; i++ {
		start := time.Now()
		r.Broadcast(payload)
		if d := time.Since(start); d > worst {
			worst = d
		}
		sent++
		time.Sleep(30 * time.Millisecond)
	}

	require.Equal(t, 1, r.Size(), "slow peer was never dropped")
	assert.Less(t, worst, 250*time.Millisecond)
	assert.Len(t, fast.Sent(), sent)
	require.Eventually(t, func() bool { return !slow.IsOpen() }, 3*time.Second, 10*time.Millisecond)
}

func TestClient_CloseIsBoundedWhilePumpIsStuck(t *testing.T) {
	c := newStalledClient(t, 64)

	payload := bytes.Repeat([]byte("x"), 1<<20)
	// Fill the socket buffers so WritePump blocks holding the write lock.
	for i := 0; i < 64; i++ {
		if err := c.Send(payload); err != nil {
			break
		}
	}
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	_ = c.Close()
	assert.Less(t, time.Since(start), closeWait+500*time.Millisecond)
	assert.False(t, c.IsOpen())
	assert.ErrorIs(t, c.Send([]byte("late")), ErrTransportClosed)
}
