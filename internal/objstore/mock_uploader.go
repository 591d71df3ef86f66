package objstore

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockUploader is a mock implementation of Uploader using testify/mock.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, name, data, contentType)
	return args.String(0), args.Error(1)
}
