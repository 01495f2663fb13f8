package chat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/school-portal/internal/chat"
	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/repository"
	"github.com/vietanh2810/school-portal/internal/repository/dao"
	"github.com/vietanh2810/school-portal/internal/service"
)

type users map[string]domain.User

func (u users) FindByID(_ context.Context, id string) (domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (u users) FindByIDs(_ context.Context, ids []string) (map[string]domain.User, error) {
	found := map[string]domain.User{}
	for _, id := range ids {
		if user, ok := u[id]; ok {
			found[id] = user
		}
	}
	return found, nil
}

type harness struct {
	svc *service.ChatService
	hub *chat.Hub
	url string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	req := require.New(t)

	db, err := dao.OpenBadger(t.TempDir())
	req.NoError(err)
	chatDAO, err := dao.NewBadgerChatMessageDAO(db)
	req.NoError(err)
	t.Cleanup(func() {
		_ = chatDAO.Close()
		_ = db.Close()
	})

	known := users{"A": {ID: "A", FirstName: "Ada"}}
	svc := service.NewChatService(repository.NewChatRepository(chatDAO, known), known, 50)
	metrics := chat.NewMetrics(prometheus.NewRegistry())
	hub := chat.NewHub(svc, chat.NewRegistry(metrics), metrics, chat.Options{SendBufferSize: 16, MaxMessageBytes: 4096})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "")
	}))
	t.Cleanup(func() {
		hub.Registry().CloseAll()
		srv.Close()
	})

	return &harness{svc: svc, hub: hub, url: "ws" + strings.TrimPrefix(srv.URL, "http")}
}

func (h *harness) dial(t *testing.T, wantOnline int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(h.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return h.hub.Registry().Size() == wantOnline }, 2*time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) chat.NewMessageEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev chat.NewMessageEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func requireNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestHub_MessageReachesOtherClientOnce(t *testing.T) {
	h := newHarness(t)
	b := h.dial(t, 1)
	a := h.dial(t, 2)

	require.NoError(t, a.WriteJSON(map[string]string{"type": "chat_message", "userId": "A", "content": "hello"}))

	ev := readEvent(t, b)
	require.Equal(t, chat.EventNewMessage, ev.Type)
	require.Equal(t, "hello", ev.Message.Content)
	require.Equal(t, "A", ev.Message.UserID)
	require.Equal(t, "Ada", ev.Message.User.FirstName)
	require.NotZero(t, ev.Message.ID)
	requireNoEvent(t, b)

	require.Equal(t, "hello", readEvent(t, a).Message.Content)
}

func TestHub_BlankMessageIsNotBroadcast(t *testing.T) {
	h := newHarness(t)
	b := h.dial(t, 1)
	a := h.dial(t, 2)

	require.NoError(t, a.WriteJSON(map[string]string{"type": "chat_message", "userId": "A", "content": "   "}))
	require.NoError(t, a.WriteJSON(map[string]string{"type": "chat_message", "userId": "A", "content": "after"}))

	require.Equal(t, "after", readEvent(t, b).Message.Content)

	count, err := h.svc.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestHub_MalformedFrameKeepsConnectionOpen(t *testing.T) {
	h := newHarness(t)
	a := h.dial(t, 1)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, a.WriteJSON(map[string]string{"type": "chat_message", "userId": "ghost", "content": "still here"}))

	ev := readEvent(t, a)
	require.Equal(t, "still here", ev.Message.Content)
	require.Nil(t, ev.Message.User)
	require.Equal(t, 1, h.hub.Registry().Size())
}

func TestHub_ClientDisconnectDeregisters(t *testing.T) {
	h := newHarness(t)
	a := h.dial(t, 1)

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return h.hub.Registry().Size() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_RecentAfterFreshStart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	recent, err := h.svc.Recent(ctx, 50)
	require.NoError(t, err)
	require.Empty(t, recent)

	_, err = h.svc.Append(ctx, "A", "first")
	require.NoError(t, err)

	recent, err = h.svc.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestHub_RecentReturnsLastFiftyOldestFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 51; i++ {
		msg, err := h.svc.Append(ctx, "A", "message")
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	recent, err := h.svc.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, recent, 50)
	require.Equal(t, ids[1], recent[0].ID)
	require.Equal(t, ids[50], recent[49].ID)
}
