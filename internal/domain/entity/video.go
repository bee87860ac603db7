package entity

import (
	"errors"
	"time"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoStatus string

const (
	VideoStatusPending   VideoStatus = "PENDING"
	VideoStatusCompleted VideoStatus = "COMPLETED"
	VideoStatusFailed    VideoStatus = "FAILED"
)

// Video is the persisted record owned by the upload side.
type Video struct {
	ID          string
	UserID      string
	Filename    string
	StorageKey  string
	Status      VideoStatus
	DownloadKey string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewVideo(id, userID, filename, storageKey string) *Video {
	now := time.Now().UTC()
	return &Video{
		ID:         id,
		UserID:     userID,
		Filename:   filename,
		StorageKey: storageKey,
		Status:     VideoStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// VideoUpdate is the status transition requested by the video.processed handler.
// DownloadKey is empty unless Status is COMPLETED.
type VideoUpdate struct {
	Status      VideoStatus
	DownloadKey string
}

func (v *Video) Apply(u VideoUpdate) {
	v.Status = u.Status
	v.DownloadKey = u.DownloadKey
	v.UpdatedAt = time.Now().UTC()
}

func (v *Video) Downloadable() bool {
	return v.Status == VideoStatusCompleted && v.DownloadKey != ""
}
