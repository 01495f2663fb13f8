package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/school-portal/internal/api/handler/v1/request"
	"github.com/vietanh2810/school-portal/internal/api/handler/v1/response"
	"github.com/vietanh2810/school-portal/internal/api/middleware"
	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/service"
)

type AssignmentService interface {
	Submit(ctx context.Context, a domain.Assignment, upload *service.Upload) (domain.Assignment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Assignment, error)
	Stats(ctx context.Context, userID string) (domain.AssignmentStats, error)
}

type AssignmentHandler struct {
	svc         AssignmentService
	maxFileSize int64
}

func NewAssignmentHandler(svc AssignmentService, maxFileSize int64) *AssignmentHandler {
	return &AssignmentHandler{
		svc:         svc,
		maxFileSize: maxFileSize,
	}
}

// HandleSubmit godoc
// @Summary      Submit an assignment
// @Tags         assignments
// @Accept       mpfd
// @Produce      json
// @Param        title        formData  string  true   "Title"
// @Param        subject      formData  string  true   "Subject"
// @Param        description  formData  string  false  "Description"
// @Param        dueDate      formData  string  false  "Due date (YYYY-MM-DD)"
// @Param        file         formData  file    false  "Attachment (10 MiB max)"
// @Success      201  {object}  domain.Assignment
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      413  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /assignments [post]
// @Security BearerAuth
func (h *AssignmentHandler) HandleSubmit(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errNoIdentity))
		return
	}

	var req request.SubmitAssignmentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var upload *service.Upload
	fileHeader, err := ctx.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	case fileHeader.Size > h.maxFileSize:
		response.RenderErr(ctx, response.ErrRequestTooLarge(service.ErrFileTooLarge))
		return
	default:
		f, err := fileHeader.Open()
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		defer f.Close()
		upload = &service.Upload{Name: fileHeader.Filename, Body: f}
	}

	created, err := h.svc.Submit(ctx.Request.Context(), domain.Assignment{
		UserID:      userID,
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		DueDate:     req.ParsedDueDate(),
	}, upload)
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			response.RenderErr(ctx, response.ErrRequestTooLarge(service.ErrFileTooLarge))
			return
		}

		err = fmt.Errorf("v1.HandleSubmit -> h.svc.Submit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleList godoc
// @Summary      List the logged in user's assignments
// @Tags         assignments
// @Produce      json
// @Success      200  {array}   domain.Assignment
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /assignments [get]
// @Security BearerAuth
func (h *AssignmentHandler) HandleList(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errNoIdentity))
		return
	}

	assignments, err := h.svc.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleList -> h.svc.ListByUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, assignments)
}

// HandleStats godoc
// @Summary      Assignment counts by status
// @Tags         assignments
// @Produce      json
// @Success      200  {object}  domain.AssignmentStats
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /assignments/stats [get]
// @Security BearerAuth
func (h *AssignmentHandler) HandleStats(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errNoIdentity))
		return
	}

	stats, err := h.svc.Stats(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
