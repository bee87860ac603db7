package port

import "context"

type FileStorage interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
	UploadFileFromPath(ctx context.Context, key string, path string, contentType string) error
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	DownloadFileToPath(ctx context.Context, key string, targetPath string) error
}
