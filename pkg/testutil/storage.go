package testutil

import (
	"context"

	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/storage"
)

type MockStorage struct {
	UploadFunc   func(context.Context, *storage.UploadObject) (*storage.UploadResponse, error)
	DownloadFunc func(ctx context.Context, bucket, fileName string) ([]byte, error)
}

func (m *MockStorage) Upload(
	ctx context.Context, obj *storage.UploadObject,
) (*storage.UploadResponse, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, obj)
	}

	return nil, errorx.New(errorx.Internal, "Not implemented")
}

func (m *MockStorage) Download(ctx context.Context, bucket, fileName string) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, bucket, fileName)
	}

	return nil, errorx.New(errorx.Internal, "Not implemented")
}
