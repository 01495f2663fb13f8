package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/storage"
)

var (
	ErrFileTooLarge = storage.ErrFileTooLarge
)

type AssignmentRepository interface {
	Create(ctx context.Context, a domain.Assignment) (domain.Assignment, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Assignment, error)
	Stats(ctx context.Context, userID string) (domain.AssignmentStats, error)
}

type FileStore interface {
	Save(originalName string, r io.Reader) (domain.StoredFile, error)
	Remove(name string) error
}

// Upload is an optional file attached to a submission.
type Upload struct {
	Name string
	Body io.Reader
}

type AssignmentService struct {
	repo          AssignmentRepository
	files         FileStore
	fileURLPrefix string
	now           func() time.Time
}

func NewAssignmentService(repo AssignmentRepository, files FileStore, fileURLPrefix string) *AssignmentService {
	return &AssignmentService{
		repo:          repo,
		files:         files,
		fileURLPrefix: fileURLPrefix,
		now:           time.Now,
	}
}

// Submit stores the optional upload, then the assignment. The upload is removed
// again when the assignment cannot be created.
func (s *AssignmentService) Submit(ctx context.Context, a domain.Assignment, upload *Upload) (domain.Assignment, error) {
	var storedName string
	if upload != nil {
		stored, err := s.files.Save(upload.Name, upload.Body)
		if err != nil {
			return domain.Assignment{}, fmt.Errorf("s.files.Save -> %w", err)
		}
		storedName = stored.Name
		a.FileName = stored.OriginalName
		a.FileURL = s.fileURLPrefix + stored.Name
		a.FileType = stored.ContentType
	}

	submittedAt := s.now().UTC()
	a.Status = domain.AssignmentSubmitted
	a.SubmittedAt = &submittedAt

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		if storedName != "" {
			if rmErr := s.files.Remove(storedName); rmErr != nil {
				zap.L().Warn("failed to remove orphaned upload", zap.String("file", storedName), zap.Error(rmErr))
			}
		}
		return domain.Assignment{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AssignmentService) ListByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	assignments, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return assignments, nil
}

func (s *AssignmentService) Stats(ctx context.Context, userID string) (domain.AssignmentStats, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return domain.AssignmentStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return stats, nil
}
