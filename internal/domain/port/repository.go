package port

import (
	"context"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
)

type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error
	FindByID(ctx context.Context, id string) (*entity.Video, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Video, error)
	UpdateStatus(ctx context.Context, id string, update entity.VideoUpdate) error
}
