package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/school-portal/internal/api/handler/v1/response"
	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/storage"
)

type FileStore interface {
	Open(name string) (io.ReadSeekCloser, domain.StoredFile, error)
}

type FileHandler struct {
	store FileStore
}

func NewFileHandler(store FileStore) *FileHandler {
	return &FileHandler{
		store: store,
	}
}

// HandleDownload godoc
// @Summary      Download an uploaded file
// @Tags         files
// @Security     BearerAuth
// @Produce      octet-stream
// @Param        filename  path  string  true  "Stored file name"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /files/{filename} [get]
func (h *FileHandler) HandleDownload(ctx *gin.Context) {
	name := ctx.Param("filename")

	f, info, err := h.store.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileNotFound):
			response.RenderErr(ctx, response.ErrNotFound("file", "name", name))
		case errors.Is(err, storage.ErrInvalidFileName):
			response.RenderErr(ctx, response.ErrBadRequest(storage.ErrInvalidFileName))
		default:
			err = fmt.Errorf("v1.HandleDownload -> h.store.Open -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}
	defer f.Close()

	ctx.Header("Content-Type", info.ContentType)
	http.ServeContent(ctx.Writer, ctx.Request, info.Name, time.Time{}, f)
}
