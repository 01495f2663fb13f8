package repository

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/repository/dao"
)

type AssignmentDAO interface {
	Insert(ctx context.Context, assignment dao.Assignment) (dao.Assignment, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.Assignment, error)
	CountByStatus(ctx context.Context, userID string) ([]dao.StatusCount, error)
}

type AssignmentRepository struct {
	dao AssignmentDAO
}

func NewAssignmentRepository(dao AssignmentDAO) *AssignmentRepository {
	return &AssignmentRepository{
		dao: dao,
	}
}

func (r *AssignmentRepository) Create(ctx context.Context, a domain.Assignment) (domain.Assignment, error) {
	created, err := r.dao.Insert(ctx, dao.Assignment{
		UserID:      a.UserID,
		Title:       a.Title,
		Subject:     a.Subject,
		Description: a.Description,
		FileName:    a.FileName,
		FileURL:     a.FileURL,
		FileType:    a.FileType,
		Status:      string(a.Status),
		Grade:       a.Grade,
		DueDate:     a.DueDate,
		SubmittedAt: a.SubmittedAt,
	})
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *AssignmentRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Assignment, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return lo.Map(found, func(a dao.Assignment, _ int) domain.Assignment { return r.daoToDomain(a) }), nil
}

func (r *AssignmentRepository) Stats(ctx context.Context, userID string) (domain.AssignmentStats, error) {
	counts, err := r.dao.CountByStatus(ctx, userID)
	if err != nil {
		return domain.AssignmentStats{}, fmt.Errorf("r.dao.CountByStatus -> %w", err)
	}

	var stats domain.AssignmentStats
	for _, c := range counts {
		switch domain.AssignmentStatus(c.Status) {
		case domain.AssignmentPending:
			stats.Pending = c.Count
		case domain.AssignmentSubmitted:
			stats.Completed = c.Count
		case domain.AssignmentGraded:
			stats.Graded = c.Count
		}
	}

	return stats, nil
}

func (r *AssignmentRepository) daoToDomain(a dao.Assignment) domain.Assignment {
	return domain.Assignment{
		ID:          a.ID,
		UserID:      a.UserID,
		Title:       a.Title,
		Subject:     a.Subject,
		Description: a.Description,
		FileName:    a.FileName,
		FileURL:     a.FileURL,
		FileType:    a.FileType,
		Status:      domain.AssignmentStatus(a.Status),
		Grade:       a.Grade,
		DueDate:     a.DueDate,
		SubmittedAt: a.SubmittedAt,
		CreatedAt:   a.CreatedAt,
	}
}
