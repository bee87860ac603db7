package port

import "context"

type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath string, outputDir string) error
}
