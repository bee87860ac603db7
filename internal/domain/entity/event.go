package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	EventVideoUploaded  = "video.uploaded"
	EventVideoProcessed = "video.processed"
)

var ErrInvalidPayload = errors.New("invalid payload")

// VideoUploadedPayload identifies one source file to process.
type VideoUploadedPayload struct {
	VideoID    string `json:"videoId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
	Filename   string `json:"filename" validate:"required"`
	StorageKey string `json:"storageKey" validate:"required"`
}

func (p VideoUploadedPayload) Validate() error {
	return validateStruct(p)
}

// VideoProcessedPayload reports the outcome of a pipeline run. The download key is
// only carried by the COMPLETED variant; build values with NewVideoCompleted or NewVideoFailed.
type VideoProcessedPayload struct {
	VideoID     string      `json:"videoId" validate:"required"`
	UserID      string      `json:"userId" validate:"required"`
	Status      VideoStatus `json:"status" validate:"required,oneof=COMPLETED FAILED"`
	DownloadKey string      `json:"downloadKey,omitempty"`
}

func NewVideoCompleted(videoID, userID, downloadKey string) VideoProcessedPayload {
	return VideoProcessedPayload{
		VideoID:     videoID,
		UserID:      userID,
		Status:      VideoStatusCompleted,
		DownloadKey: downloadKey,
	}
}

func NewVideoFailed(videoID, userID string) VideoProcessedPayload {
	return VideoProcessedPayload{
		VideoID: videoID,
		UserID:  userID,
		Status:  VideoStatusFailed,
	}
}

func (p VideoProcessedPayload) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	switch p.Status {
	case VideoStatusCompleted:
		if p.DownloadKey == "" {
			return fmt.Errorf("%w: downloadKey is required when status is %s", ErrInvalidPayload, p.Status)
		}
	case VideoStatusFailed:
		if p.DownloadKey != "" {
			return fmt.Errorf("%w: downloadKey is not allowed when status is %s", ErrInvalidPayload, p.Status)
		}
	}
	return nil
}

// Update converts the payload into the persistence transition.
func (p VideoProcessedPayload) Update() VideoUpdate {
	u := VideoUpdate{Status: p.Status}
	if p.Status == VideoStatusCompleted {
		u.DownloadKey = p.DownloadKey
	}
	return u
}

// UnmarshalJSON drops a download key sent alongside a FAILED status, so the
// key presence always follows the status.
func (p *VideoProcessedPayload) UnmarshalJSON(data []byte) error {
	type raw VideoProcessedPayload
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if r.Status == VideoStatusFailed {
		r.DownloadKey = ""
	}
	*p = VideoProcessedPayload(r)
	return nil
}
