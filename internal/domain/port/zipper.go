package port

import "context"

type Zipper interface {
	ZipDirectory(ctx context.Context, sourceDir string, zipPath string) error
}
