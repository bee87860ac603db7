package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
	"github.com/fiapx/fiapx-video-events/internal/domain/port"
	"github.com/fiapx/fiapx-video-events/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	videoFileName   = "video.mp4"
	framesDirName   = "frames"
	archiveFileName = "frames.zip"
	archiveMIME     = "application/zip"
)

type ProcessVideoUseCase struct {
	storage   port.FileStorage
	extractor port.FrameExtractor
	zipper    port.Zipper
	publisher port.MessagePublisher
	logger    *zap.Logger
	tempDir   string
}

type ProcessVideoConfig struct {
	TempDir string
}

func NewProcessVideoUseCase(
	storage port.FileStorage,
	extractor port.FrameExtractor,
	zipper port.Zipper,
	publisher port.MessagePublisher,
	logger *zap.Logger,
	cfg ProcessVideoConfig,
) *ProcessVideoUseCase {
	return &ProcessVideoUseCase{
		storage:   storage,
		extractor: extractor,
		zipper:    zipper,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "usecase.process_video")),
		tempDir:   cfg.TempDir,
	}
}

// Workspace returns the scratch directory used for one video. Both ids must be a
// single path element so the directory always sits strictly below the temp dir.
func (uc *ProcessVideoUseCase) Workspace(userID, videoID string) (string, error) {
	for _, id := range []string{userID, videoID} {
		if !isPathElement(id) {
			return "", fmt.Errorf("%w: %q", ErrInvalidWorkspace, id)
		}
	}
	ws := filepath.Join(uc.tempDir, userID, videoID)
	rel, err := filepath.Rel(uc.tempDir, ws)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes %s", ErrInvalidWorkspace, ws, uc.tempDir)
	}
	return ws, nil
}

func isPathElement(id string) bool {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return false
	}
	return filepath.Clean(id) == id
}

// Execute downloads the video, extracts its frames, archives and uploads them, then
// reports the outcome as a video.processed event. A failed step is reported as FAILED
// and returned as a *PipelineStepError; nothing is retried here.
func (uc *ProcessVideoUseCase) Execute(ctx context.Context, payload entity.VideoUploadedPayload) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessVideoUseCase.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("video.id", payload.VideoID),
		attribute.String("video.user_id", payload.UserID),
	)

	metrics.ActivePipelines.Inc()
	defer metrics.ActivePipelines.Dec()

	start := time.Now()
	log := uc.logger.With(zap.String("video_id", payload.VideoID), zap.String("user_id", payload.UserID))

	var downloadKey string
	workDir, err := uc.Workspace(payload.UserID, payload.VideoID)
	if err != nil {
		wsErr := err
		err = uc.step(ctx, StepDownload, log, func(context.Context) error { return wsErr })
	} else {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				log.Warn("failed to remove workspace", zap.String("dir", workDir), zap.Error(err))
			}
		}()
		downloadKey, err = uc.runPipeline(ctx, payload, workDir, log)
	}
	if err != nil {
		span.RecordError(err)
		metrics.PipelineRunsTotal.WithLabelValues(string(entity.VideoStatusFailed)).Inc()

		failed := entity.NewVideoFailed(payload.VideoID, payload.UserID)
		if pubErr := uc.publisher.Publish(ctx, entity.EventVideoProcessed, failed); pubErr != nil {
			log.Error("failed to publish FAILED status", zap.Error(pubErr))
			return multierr.Append(err, fmt.Errorf("publish failed status: %w", pubErr))
		}
		return err
	}

	completed := entity.NewVideoCompleted(payload.VideoID, payload.UserID, downloadKey)
	if err := uc.publisher.Publish(ctx, entity.EventVideoProcessed, completed); err != nil {
		log.Error("failed to publish COMPLETED status", zap.String("download_key", downloadKey), zap.Error(err))
		return fmt.Errorf("publish completed status: %w", err)
	}

	metrics.PipelineRunsTotal.WithLabelValues(string(entity.VideoStatusCompleted)).Inc()
	log.Info("video processed successfully",
		zap.String("download_key", downloadKey),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (uc *ProcessVideoUseCase) runPipeline(ctx context.Context, payload entity.VideoUploadedPayload, workDir string, log *zap.Logger) (string, error) {
	videoPath := filepath.Join(workDir, videoFileName)
	framesDir := filepath.Join(workDir, framesDirName)
	zipPath := filepath.Join(workDir, archiveFileName)
	downloadKey := entity.FramesArchiveKey(payload.UserID, payload.VideoID)

	err := uc.step(ctx, StepDownload, log, func(ctx context.Context) error {
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		return uc.storage.DownloadFileToPath(ctx, payload.StorageKey, videoPath)
	})
	if err != nil {
		return "", err
	}

	err = uc.step(ctx, StepExtract, log, func(ctx context.Context) error {
		return uc.extractor.ExtractFrames(ctx, videoPath, framesDir)
	})
	if err != nil {
		return "", err
	}

	err = uc.step(ctx, StepZip, log, func(ctx context.Context) error {
		return uc.zipper.ZipDirectory(ctx, framesDir, zipPath)
	})
	if err != nil {
		return "", err
	}

	err = uc.step(ctx, StepUpload, log, func(ctx context.Context) error {
		return uc.storage.UploadFileFromPath(ctx, downloadKey, zipPath, archiveMIME)
	})
	if err != nil {
		return "", err
	}

	return downloadKey, nil
}

func (uc *ProcessVideoUseCase) step(ctx context.Context, name string, log *zap.Logger, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := otel.Tracer("usecase").Start(ctx, name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		log.Error("pipeline step failed", zap.String("step", name), zap.Error(err))
		return &PipelineStepError{Step: name, Err: err}
	}

	metrics.PipelineStepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	log.Debug("pipeline step done", zap.String("step", name))
	return nil
}
