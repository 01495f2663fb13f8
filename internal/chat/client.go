package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// closeWait bounds how long Close waits for a pump stuck on a slow peer
	// before dropping the connection without a close frame.
	closeWait = time.Second
)

// Client is one websocket connection. Writes go through a buffered queue
// drained by WritePump so a slow peer never blocks the broadcaster.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func NewClient(conn *websocket.Conn, bufferSize int, maxMessageBytes int64) *Client {
	if maxMessageBytes > 0 {
		conn.SetReadLimit(maxMessageBytes)
	}

	return &Client{
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrTransportClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrTransportClosed
	default:
		return fmt.Errorf("%w: send queue full", ErrTransportClosed)
	}
}

func (c *Client) IsOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// ReadMessage blocks for the next data frame.
func (c *Client) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// Close takes at most closeWait. Closing the underlying conn also unblocks a
// WritePump stuck on a peer that stopped reading.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWait),
		)
		c.closeErr = c.conn.Close()
	})

	return c.closeErr
}

// WritePump writes queued payloads in order until the client is closed or a
// write fails.
func (c *Client) WritePump() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}
