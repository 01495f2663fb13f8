package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/vietanh2810/school-portal/internal/domain"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (domain.User, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.User), args.Error(1)
}

type mockChatRepository struct {
	mock.Mock
}

func (m *mockChatRepository) Create(ctx context.Context, authorID, content string) (domain.ChatMessage, error) {
	args := m.Called(ctx, authorID, content)
	return args.Get(0).(domain.ChatMessage), args.Error(1)
}

func (m *mockChatRepository) FindRecent(ctx context.Context, limit int) ([]domain.EnrichedMessage, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.EnrichedMessage), args.Error(1)
}

func (m *mockChatRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockAssignmentRepository struct {
	mock.Mock
}

func (m *mockAssignmentRepository) Create(ctx context.Context, a domain.Assignment) (domain.Assignment, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *mockAssignmentRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Assignment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *mockAssignmentRepository) Stats(ctx context.Context, userID string) (domain.AssignmentStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.AssignmentStats), args.Error(1)
}

type mockFileStore struct {
	mock.Mock
}

func (m *mockFileStore) Save(originalName string, r io.Reader) (domain.StoredFile, error) {
	args := m.Called(originalName, r)
	return args.Get(0).(domain.StoredFile), args.Error(1)
}

func (m *mockFileStore) Remove(name string) error {
	args := m.Called(name)
	return args.Error(0)
}
