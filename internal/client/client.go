package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/school-portal/internal/domain"
)

const (
	apiPrefix = "/api/v1"
	writeWait = 10 * time.Second
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotConnected = errors.New("not connected")
	ErrClosed       = errors.New("connection closed")
)

type composeEvent struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type newMessageEvent struct {
	Type    string                 `json:"type"`
	Message domain.EnrichedMessage `json:"message"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client talks to the portal chat as one user. It never reconnects: once the
// server closes the socket, Done is closed and the client is finished.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	dialer     *websocket.Dialer
	timeline   *Timeline

	token  string
	userID string

	// OnMessage, when set, is called for every live message not seen before.
	OnMessage func(domain.EnrichedMessage)

	mu        sync.Mutex
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse -> %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		dialer:     websocket.DefaultDialer,
		timeline:   NewTimeline(),
		done:       make(chan struct{}),
	}, nil
}

// SetCredentials uses an existing token instead of Login.
func (c *Client) SetCredentials(token, userID string) {
	c.token = token
	c.userID = userID
}

func (c *Client) Timeline() *Timeline {
	return c.timeline
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.User{}, err
	}

	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err = c.do(ctx, http.MethodPost, "/auth/login", bytes.NewReader(body), &resp); err != nil {
		return domain.User{}, fmt.Errorf("c.do -> %w", err)
	}
	c.SetCredentials(resp.Token, resp.User.ID)

	return resp.User, nil
}

// Connect opens the websocket and starts delivering live messages to the
// timeline.
func (c *Client) Connect(ctx context.Context) error {
	wsURL := *c.baseURL
	wsURL.Scheme = "ws"
	if c.baseURL.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = c.baseURL.Path + "/ws"

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := c.dialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		return fmt.Errorf("c.dialer.DialContext -> %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.send = make(chan []byte, 16)
	c.mu.Unlock()

	go c.readLoop(conn)
	go c.writeLoop(conn)

	return nil
}

// FetchHistory seeds the timeline from the server. Call it after Connect so
// messages posted in between are not lost.
func (c *Client) FetchHistory(ctx context.Context) error {
	var history []domain.EnrichedMessage
	if err := c.do(ctx, http.MethodGet, "/chat/messages", nil, &history); err != nil {
		return fmt.Errorf("c.do -> %w", err)
	}
	c.timeline.Seed(history)

	return nil
}

func (c *Client) Online(ctx context.Context) (int, error) {
	var resp struct {
		Online int `json:"online"`
	}
	if err := c.do(ctx, http.MethodGet, "/chat/online", nil, &resp); err != nil {
		return 0, fmt.Errorf("c.do -> %w", err)
	}

	return resp.Online, nil
}

// Send posts content as the logged in user. Blank content is rejected locally.
func (c *Client) Send(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	send := c.send
	c.mu.Unlock()
	if send == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(composeEvent{Type: "chat_message", UserID: c.userID, Content: content})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case <-c.done:
		return ErrClosed
	case send <- payload:
		return nil
	}
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		err = conn.Close()
	})

	return err
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() { _ = c.Close() }()

	for {
		var ev newMessageEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Debug("chat connection ended", zap.Error(err))
			}
			return
		}
		if ev.Type != "new_message" {
			continue
		}
		if c.timeline.Append(ev.Message) && c.OnMessage != nil {
			c.OnMessage(ev.Message)
		}
	}
}

func (c *Client) writeLoop(conn *websocket.Conn) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader, out any) error {
	u := c.baseURL.JoinPath(apiPrefix, path)

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	}
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
