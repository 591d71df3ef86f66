package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateSession(ctx context.Context, s Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStore) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockStore) UpdateAnswers(ctx context.Context, id uuid.UUID, answers []Answer, finalHTML string, pdfURL *string) error {
	args := m.Called(ctx, id, answers, finalHTML, pdfURL)
	return args.Error(0)
}

func (m *MockStore) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}
