package usecase

import (
	"errors"
	"fmt"
)

// Pipeline steps, in execution order.
const (
	StepDownload = "download"
	StepExtract  = "extract"
	StepZip      = "zip"
	StepUpload   = "upload"
)

var (
	ErrInvalidUpload    = errors.New("invalid upload")
	ErrDownloadNotReady = errors.New("video is not ready for download")
	ErrInvalidWorkspace = errors.New("invalid workspace id")
)

// PipelineStepError identifies which processing step failed.
type PipelineStepError struct {
	Step string
	Err  error
}

func (e *PipelineStepError) Error() string {
	return fmt.Sprintf("pipeline step %s: %v", e.Step, e.Err)
}

func (e *PipelineStepError) Unwrap() error { return e.Err }
