package usecase

import (
	"context"
	"fmt"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
	"github.com/fiapx/fiapx-video-events/internal/domain/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultVideoMIME = "video/mp4"

type UploadVideoUseCase struct {
	repo      port.VideoRepository
	storage   port.FileStorage
	publisher port.MessagePublisher
	logger    *zap.Logger
	newID     func() string
}

func NewUploadVideoUseCase(
	repo port.VideoRepository,
	storage port.FileStorage,
	publisher port.MessagePublisher,
	logger *zap.Logger,
) *UploadVideoUseCase {
	return &UploadVideoUseCase{
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "usecase.upload_video")),
		newID:     uuid.NewString,
	}
}

type UploadVideoInput struct {
	UserID      string
	Filename    string
	ContentType string
	Data        []byte
}

// Download is the archive of extracted frames for a processed video.
type Download struct {
	Filename    string
	DownloadKey string
	Content     []byte
}

// Upload stores the file, records it as PENDING and announces it with video.uploaded.
// The event is best effort: once the record exists a publish failure is only logged.
func (uc *UploadVideoUseCase) Upload(ctx context.Context, in UploadVideoInput) (*entity.Video, error) {
	if in.UserID == "" || in.Filename == "" || len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: user id, filename and content are required", ErrInvalidUpload)
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = defaultVideoMIME
	}

	id := uc.newID()
	key := entity.VideoStorageKey(in.UserID, id, in.Filename)
	log := uc.logger.With(zap.String("video_id", id), zap.String("user_id", in.UserID))

	if err := uc.storage.UploadFile(ctx, key, in.Data, contentType); err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}

	video := entity.NewVideo(id, in.UserID, in.Filename, key)
	if err := uc.repo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}

	event := entity.VideoUploadedPayload{
		VideoID:    id,
		UserID:     in.UserID,
		Filename:   in.Filename,
		StorageKey: key,
	}
	if err := uc.publisher.Publish(ctx, entity.EventVideoUploaded, event); err != nil {
		log.Error("failed to publish video uploaded event", zap.Error(err))
	}

	log.Info("video uploaded", zap.String("filename", in.Filename), zap.String("storage_key", key))
	return video, nil
}

func (uc *UploadVideoUseCase) List(ctx context.Context, userID string) ([]*entity.Video, error) {
	videos, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// GetDownload returns the frames archive of a video owned by userID. Videos owned by
// someone else are reported as not found.
func (uc *UploadVideoUseCase) GetDownload(ctx context.Context, userID, videoID string) (*Download, error) {
	video, err := uc.repo.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.UserID != userID {
		return nil, fmt.Errorf("find video %s: %w", videoID, entity.ErrVideoNotFound)
	}
	if !video.Downloadable() {
		return nil, fmt.Errorf("%w: status %s", ErrDownloadNotReady, video.Status)
	}

	content, err := uc.storage.DownloadFile(ctx, video.DownloadKey)
	if err != nil {
		return nil, fmt.Errorf("download frames: %w", err)
	}

	return &Download{
		Filename:    video.Filename,
		DownloadKey: video.DownloadKey,
		Content:     content,
	}, nil
}
