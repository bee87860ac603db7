package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

const framePattern = "frame-%04d.jpg"

type Extractor struct {
	binary string
	fps    int
	logger *zap.Logger
}

func NewExtractor(binary string, fps int, logger *zap.Logger) *Extractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	if fps <= 0 {
		fps = 1
	}
	return &Extractor{binary: binary, fps: fps, logger: logger.With(zap.String("component", "ffmpeg.extractor"))}
}

// ExtractFrames writes one JPEG per 1/fps seconds of video into outputDir.
func (e *Extractor) ExtractFrames(ctx context.Context, videoPath string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.binary,
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d", e.fps),
		"-y",
		filepath.Join(outputDir, framePattern),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	frames, err := filepath.Glob(filepath.Join(outputDir, "frame-*.jpg"))
	if err != nil {
		return fmt.Errorf("glob frames: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames extracted from video")
	}

	e.logger.Info("frames extracted", zap.String("video", videoPath), zap.Int("count", len(frames)))
	return nil
}
