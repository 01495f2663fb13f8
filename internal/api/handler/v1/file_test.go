package v1

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/school-portal/internal/storage"
)

func TestFileHandler_Download(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir(), 1024)
	require.NoError(t, err)
	stored, err := store.Save("notes.txt", strings.NewReader("hello notes"))
	require.NoError(t, err)

	engine := newTestEngine("")
	engine.GET("/files/:filename", NewFileHandler(store).HandleDownload)

	w := get(engine, "/files/"+stored.Name)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello notes", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	assert.Equal(t, http.StatusNotFound, get(engine, "/files/missing.pdf").Code)
	assert.Equal(t, http.StatusBadRequest, get(engine, "/files/..%5Csecret.txt").Code)
}
