package handler

import (
	"context"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
	"github.com/fiapx/fiapx-video-events/internal/domain/port"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"go.uber.org/zap"
)

type VideoProcessed struct {
	repo   port.VideoRepository
	logger *zap.Logger
}

func NewVideoProcessed(repo port.VideoRepository, logger *zap.Logger) *VideoProcessed {
	return &VideoProcessed{repo: repo, logger: logger.With(zap.String("handler", entity.EventVideoProcessed))}
}

// Handle records the processing result. Replays overwrite with the same values.
func (h *VideoProcessed) Handle(ctx context.Context, payload entity.VideoProcessedPayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}

	update := payload.Update()
	if err := h.repo.UpdateStatus(ctx, payload.VideoID, update); err != nil {
		return err
	}

	h.logger.Info("video marked as processed",
		zap.String("video_id", payload.VideoID),
		zap.String("status", string(update.Status)),
		zap.String("download_key", update.DownloadKey),
	)
	return nil
}

func (h *VideoProcessed) Register(reg *messaging.Registry) {
	messaging.Handle(reg, entity.EventVideoProcessed, h.Handle)
}
