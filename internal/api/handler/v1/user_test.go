package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/service"
)

func newUserEngine(userID string, svc UserService) http.Handler {
	h := NewUserHandler(svc)
	engine := newTestEngine(userID)
	engine.GET("/auth/user", h.HandleGetCurrentUser)
	engine.PUT("/user/profile", h.HandleUpdateProfile)
	return engine
}

func TestUserHandler_GetCurrentUser(t *testing.T) {
	svc := &mockUserService{}
	svc.On("GetUser", mock.Anything, "u1").Return(domain.User{ID: "u1", FirstName: "Ada"}, nil)
	svc.On("GetUser", mock.Anything, "gone").Return(domain.User{}, service.ErrUserNotFound)

	w := httptest.NewRecorder()
	newUserEngine("u1", svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/user", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"firstName":"Ada"`)

	w = httptest.NewRecorder()
	newUserEngine("gone", svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/user", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	newUserEngine("", svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/user", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	svc := &mockUserService{}
	svc.On("UpdateProfile", mock.Anything, "u1", domain.ProfileUpdate{FirstName: "Ada", Username: "ada"}).
		Return(domain.User{ID: "u1", FirstName: "Ada", Username: "ada"}, nil)
	svc.On("UpdateProfile", mock.Anything, "u1", domain.ProfileUpdate{Username: "taken"}).
		Return(domain.User{}, service.ErrUsernameTaken)
	engine := newUserEngine("u1", svc)

	put := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/user/profile", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		return w
	}

	w := put(`{"firstName":"Ada","username":"ada"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"ada"`)

	assert.Equal(t, http.StatusBadRequest, put(`{"username":"taken"}`).Code)
	assert.Equal(t, http.StatusBadRequest, put(`{"username":"no spaces allowed"}`).Code)
}
