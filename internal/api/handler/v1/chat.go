package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/school-portal/internal/api/handler/v1/response"
	"github.com/vietanh2810/school-portal/internal/api/middleware"
	"github.com/vietanh2810/school-portal/internal/domain"
)

const maxHistoryLimit = 500

var errInvalidLimit = errors.New("limit must be an integer between 1 and 500")

type ChatService interface {
	Recent(ctx context.Context, limit int) ([]domain.EnrichedMessage, error)
	Count(ctx context.Context) (int64, error)
}

// ChatServer runs a websocket chat session for the request.
type ChatServer interface {
	Serve(w http.ResponseWriter, r *http.Request, identity string) error
}

type Presence interface {
	Size() int
}

type ChatHandler struct {
	svc      ChatService
	server   ChatServer
	presence Presence
}

func NewChatHandler(svc ChatService, server ChatServer, presence Presence) *ChatHandler {
	return &ChatHandler{
		svc:      svc,
		server:   server,
		presence: presence,
	}
}

// HandleWebSocket godoc
// @Summary Open the class chat
// @Description Upgrades to a websocket. Clients send {"type":"chat_message","userId","content"} and receive {"type":"new_message","message"} for every stored message.
// @Tags chat
// @Param token query string false "JWT, for clients that cannot set the Authorization header"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} response.Err
// @Failure 401 {object} response.Err
// @Router /chat/ws [get]
// @Security BearerAuth
func (h *ChatHandler) HandleWebSocket(ctx *gin.Context) {
	identity, _ := middleware.UserID(ctx)

	if err := h.server.Serve(ctx.Writer, ctx.Request, identity); err != nil {
		zap.L().Debug("chat upgrade failed", zap.String("userID", identity), zap.Error(err))
	}
}

// HandleGetMessages godoc
// @Summary Get recent chat messages
// @Description Returns the latest messages oldest first, each with its author when known.
// @Tags chat
// @Produce json
// @Param limit query int false "Number of messages (default 50)"
// @Success 200 {array} domain.EnrichedMessage
// @Failure 400 {object} response.Err
// @Failure 401 {object} response.Err
// @Failure 500 {object} response.Err
// @Router /chat/messages [get]
// @Security BearerAuth
func (h *ChatHandler) HandleGetMessages(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			response.RenderErr(ctx, response.ErrBadRequest(errInvalidLimit))
			return
		}
		limit = n
	}

	messages, err := h.svc.Recent(ctx.Request.Context(), limit)
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, messages)
}

// HandleGetCount godoc
// @Summary Count stored chat messages
// @Tags chat
// @Produce json
// @Success 200 {object} response.CountResponse
// @Failure 401 {object} response.Err
// @Failure 500 {object} response.Err
// @Router /chat/count [get]
// @Security BearerAuth
func (h *ChatHandler) HandleGetCount(ctx *gin.Context) {
	count, err := h.svc.Count(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.CountResponse{Count: count})
}

// HandleGetOnline godoc
// @Summary Count open chat connections
// @Tags chat
// @Produce json
// @Success 200 {object} response.OnlineResponse
// @Failure 401 {object} response.Err
// @Router /chat/online [get]
// @Security BearerAuth
func (h *ChatHandler) HandleGetOnline(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.OnlineResponse{Online: h.presence.Size()})
}
