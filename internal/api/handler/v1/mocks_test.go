package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/vietanh2810/school-portal/internal/api/middleware"
	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/service"
)

func newTestEngine(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	if userID != "" {
		engine.Use(func(ctx *gin.Context) {
			ctx.Set(middleware.ContextKeyUserID, userID)
		})
	}
	return engine
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.User), args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (domain.User, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.User), args.Error(1)
}

type mockChatService struct {
	mock.Mock
}

func (m *mockChatService) Recent(ctx context.Context, limit int) ([]domain.EnrichedMessage, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.EnrichedMessage), args.Error(1)
}

func (m *mockChatService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type stubChatServer struct {
	identity string
}

func (s *stubChatServer) Serve(w http.ResponseWriter, _ *http.Request, identity string) error {
	s.identity = identity
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

type stubPresence int

func (p stubPresence) Size() int { return int(p) }

type mockAssignmentService struct {
	mock.Mock
}

func (m *mockAssignmentService) Submit(ctx context.Context, a domain.Assignment, upload *service.Upload) (domain.Assignment, error) {
	args := m.Called(ctx, a, upload)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *mockAssignmentService) ListByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *mockAssignmentService) Stats(ctx context.Context, userID string) (domain.AssignmentStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.AssignmentStats), args.Error(1)
}
