package v1

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/service"
)

func newAssignmentEngine(userID string, svc AssignmentService, maxSize int64) http.Handler {
	h := NewAssignmentHandler(svc, maxSize)
	engine := newTestEngine(userID)
	engine.POST("/assignments", h.HandleSubmit)
	engine.GET("/assignments", h.HandleList)
	engine.GET("/assignments/stats", h.HandleStats)
	return engine
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assignments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAssignmentHandler_SubmitWithFile(t *testing.T) {
	svc := &mockAssignmentService{}
	svc.On("Submit", mock.Anything, mock.MatchedBy(func(a domain.Assignment) bool {
		return a.UserID == "u1" && a.Title == "Essay" && a.Subject == "History" && a.DueDate != nil
	}), mock.MatchedBy(func(u *service.Upload) bool {
		if u == nil || u.Name != "essay.txt" {
			return false
		}
		content, err := io.ReadAll(u.Body)
		return err == nil && string(content) == "my essay"
	})).Return(domain.Assignment{ID: 1, Status: domain.AssignmentSubmitted}, nil)

	w := httptest.NewRecorder()
	req := multipartRequest(t, map[string]string{"title": "Essay", "subject": "History", "dueDate": "2024-09-30"}, "essay.txt", []byte("my essay"))
	newAssignmentEngine("u1", svc, 1024).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"submitted"`)
	svc.AssertExpectations(t)
}

func TestAssignmentHandler_SubmitWithoutFile(t *testing.T) {
	svc := &mockAssignmentService{}
	svc.On("Submit", mock.Anything, mock.Anything, (*service.Upload)(nil)).
		Return(domain.Assignment{ID: 2, Status: domain.AssignmentSubmitted}, nil)

	w := httptest.NewRecorder()
	newAssignmentEngine("u1", svc, 1024).ServeHTTP(w, multipartRequest(t, map[string]string{"title": "Essay", "subject": "History"}, "", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAssignmentHandler_SubmitRejects(t *testing.T) {
	svc := &mockAssignmentService{}
	engine := newAssignmentEngine("u1", svc, 4)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, multipartRequest(t, map[string]string{"subject": "History"}, "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, multipartRequest(t, map[string]string{"title": "Essay", "subject": "History"}, "big.txt", []byte("too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignmentHandler_ListAndStats(t *testing.T) {
	svc := &mockAssignmentService{}
	svc.On("ListByUser", mock.Anything, "u1").Return([]domain.Assignment{{ID: 2}, {ID: 1}}, nil)
	svc.On("Stats", mock.Anything, "u1").Return(domain.AssignmentStats{Pending: 1, Completed: 2, Graded: 3}, nil)
	engine := newAssignmentEngine("u1", svc, 1024)

	w := get(engine, "/assignments")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":2`)

	w = get(engine, "/assignments/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pending":1,"completed":2,"graded":3}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(newAssignmentEngine("", svc, 1024), "/assignments").Code)
}
