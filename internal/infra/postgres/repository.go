package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

const videoColumns = `id, user_id, filename, storage_key, status, COALESCE(download_key, ''), created_at, updated_at`

func (r *VideoRepository) Create(ctx context.Context, video *entity.Video) error {
	query := `
		INSERT INTO videos (
			id, user_id, filename, storage_key, status, download_key, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8)`

	_, err := r.pool.Exec(ctx, query,
		video.ID, video.UserID, video.Filename, video.StorageKey, string(video.Status),
		video.DownloadKey, video.CreatedAt, video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func scanVideo(row pgx.Row) (*entity.Video, error) {
	v := &entity.Video{}
	var status string
	if err := row.Scan(
		&v.ID, &v.UserID, &v.Filename, &v.StorageKey, &status,
		&v.DownloadKey, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	v.Status = entity.VideoStatus(status)
	return v, nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*entity.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id=$1`

	v, err := scanVideo(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find video %s: %w", id, entity.ErrVideoNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := make([]*entity.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// UpdateStatus overwrites status and download key, so replaying the same event is harmless.
func (r *VideoRepository) UpdateStatus(ctx context.Context, id string, update entity.VideoUpdate) error {
	query := `
		UPDATE videos SET
			status=$2, download_key=NULLIF($3,''), updated_at=now()
		WHERE id=$1`

	tag, err := r.pool.Exec(ctx, query, id, string(update.Status), update.DownloadKey)
	if err != nil {
		return fmt.Errorf("update video status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update video %s: %w", id, entity.ErrVideoNotFound)
	}
	return nil
}
