package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vietanh2810/school-portal/internal/domain"
)

const DefaultHistoryLimit = 50

var ErrEmptyMessage = errors.New("message content is empty")

type ChatRepository interface {
	Create(ctx context.Context, authorID, content string) (domain.ChatMessage, error)
	FindRecent(ctx context.Context, limit int) ([]domain.EnrichedMessage, error)
	Count(ctx context.Context) (int64, error)
}

type AuthorRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// ChatService is the message store seen by the chat transport and the history
// endpoints.
type ChatService struct {
	repo         ChatRepository
	users        AuthorRepository
	historyLimit int
}

func NewChatService(repo ChatRepository, users AuthorRepository, historyLimit int) *ChatService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	return &ChatService{
		repo:         repo,
		users:        users,
		historyLimit: historyLimit,
	}
}

// Append persists content as written by authorID. The author is not checked.
func (s *ChatService) Append(ctx context.Context, authorID, content string) (domain.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}

	msg, err := s.repo.Create(ctx, authorID, content)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return msg, nil
}

// Recent returns at most limit of the latest messages, oldest first. A
// non-positive limit falls back to the configured history size.
func (s *ChatService) Recent(ctx context.Context, limit int) ([]domain.EnrichedMessage, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}

	messages, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindRecent -> %w", err)
	}

	return messages, nil
}

func (s *ChatService) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.repo.Count -> %w", err)
	}

	return count, nil
}

func (s *ChatService) FindAuthor(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	return user, nil
}
