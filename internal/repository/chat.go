package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/vietanh2810/school-portal/internal/domain"
	"github.com/vietanh2810/school-portal/internal/repository/dao"
)

type ChatMessageDAO interface {
	Insert(ctx context.Context, message dao.ChatMessage) (dao.ChatMessage, error)
	FindLatest(ctx context.Context, limit int) ([]dao.ChatMessage, error)
	Count(ctx context.Context) (int64, error)
}

type AuthorFinder interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
}

type ChatRepository struct {
	dao   ChatMessageDAO
	users AuthorFinder
}

func NewChatRepository(dao ChatMessageDAO, users AuthorFinder) *ChatRepository {
	return &ChatRepository{
		dao:   dao,
		users: users,
	}
}

func (r *ChatRepository) Create(ctx context.Context, authorID, content string) (domain.ChatMessage, error) {
	created, err := r.dao.Insert(ctx, dao.ChatMessage{
		UserID:  authorID,
		Content: content,
	})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.chatMessageDAOToDomain(created), nil
}

// FindRecent returns the latest limit messages oldest-first, ordered by
// (CreatedAt, ID), each joined with its author when the author still exists.
func (r *ChatRepository) FindRecent(ctx context.Context, limit int) ([]domain.EnrichedMessage, error) {
	latest, err := r.dao.FindLatest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLatest -> %w", err)
	}

	authorIDs := lo.Map(latest, func(m dao.ChatMessage, _ int) string { return m.UserID })
	authors, err := r.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("r.users.FindByIDs -> %w", err)
	}

	messages := lo.Map(latest, func(m dao.ChatMessage, _ int) domain.EnrichedMessage {
		enriched := domain.EnrichedMessage{ChatMessage: r.chatMessageDAOToDomain(m)}
		if author, ok := authors[m.UserID]; ok {
			enriched.User = author.Author()
		}
		return enriched
	})

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Before(messages[j].ChatMessage)
	})

	return messages, nil
}

func (r *ChatRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return count, nil
}

func (r *ChatRepository) chatMessageDAOToDomain(m dao.ChatMessage) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        m.ID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
