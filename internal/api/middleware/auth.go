package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/school-portal/internal/api/handler/v1/response"
	"github.com/vietanh2810/school-portal/internal/pkg/jwthelper"
)

const ContextKeyUserID = "userID"

var errMissingToken = errors.New("missing bearer token")

type Authenticator struct {
	jwtKey []byte
}

func NewAuthenticator(jwtKey string) *Authenticator {
	return &Authenticator{
		jwtKey: []byte(jwtKey),
	}
}

// VerifyJWT rejects requests without a valid token and stores the user id in
// the gin context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr := tokenFromRequest(ctx)
		if tokenStr == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			ctx.Abort()
			return
		}

		claims, err := jwthelper.ParseToken(a.jwtKey, tokenStr)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			ctx.Abort()
			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Next()
	}
}

// IdentifyJWT stores the user id when a valid token is present and lets
// anonymous requests through.
func (a *Authenticator) IdentifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if tokenStr := tokenFromRequest(ctx); tokenStr != "" {
			if claims, err := jwthelper.ParseToken(a.jwtKey, tokenStr); err == nil {
				ctx.Set(ContextKeyUserID, claims.UserID)
			}
		}
		ctx.Next()
	}
}

// UserID returns the id set by VerifyJWT or IdentifyJWT.
func UserID(ctx *gin.Context) (string, bool) {
	id := ctx.GetString(ContextKeyUserID)
	return id, id != ""
}

// Browsers cannot set headers on a websocket upgrade, so the token may also
// come in the query string.
func tokenFromRequest(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ctx.Query("token")
}
