package pdf

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRenderer is a mock implementation of Renderer using testify/mock.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
