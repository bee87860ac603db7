package handler

import (
	"context"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"go.uber.org/zap"
)

// VideoProcessor runs the frame extraction pipeline for one uploaded video.
type VideoProcessor interface {
	Execute(ctx context.Context, payload entity.VideoUploadedPayload) error
}

type VideoUploaded struct {
	processor VideoProcessor
	logger    *zap.Logger
}

func NewVideoUploaded(processor VideoProcessor, logger *zap.Logger) *VideoUploaded {
	return &VideoUploaded{processor: processor, logger: logger.With(zap.String("handler", entity.EventVideoUploaded))}
}

// Handle runs the pipeline synchronously; its error decides whether the message is acked.
func (h *VideoUploaded) Handle(ctx context.Context, payload entity.VideoUploadedPayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}

	log := h.logger.With(zap.String("video_id", payload.VideoID), zap.String("user_id", payload.UserID))
	log.Info("processing uploaded video", zap.String("storage_key", payload.StorageKey))

	if err := h.processor.Execute(ctx, payload); err != nil {
		return err
	}

	log.Info("uploaded video handled")
	return nil
}

func (h *VideoUploaded) Register(reg *messaging.Registry) {
	messaging.Handle(reg, entity.EventVideoUploaded, h.Handle)
}
