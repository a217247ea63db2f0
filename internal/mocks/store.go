package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/attachments"
)

// StoreMock stands in for attachment storage.
type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

var _ attachments.Store = (*StoreMock)(nil)
