// package services defines the client interfaces for the Vibello backend
//
// Upload (multipart photo ingest) and Render (slideshow jobs)
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kgolebiewski95/Vibello/internal/models"
)

// Uploader defines the client surface for the backend upload endpoints.
type Uploader interface {
	// Upload sends the staged files in a single multipart request.
	// onProgress receives whole transmission percents, ending at exactly 100
	// once the body has been fully sent. A nil onProgress disables reporting.
	Upload(ctx context.Context, files []models.StagedFile, onProgress func(percent int)) (*models.UploadJob, error)

	// Job re-fetches a previously created upload job by ID.
	Job(ctx context.Context, jobID string) (*models.UploadJob, error)
}

// Renderer defines the client surface for the backend render endpoints.
type Renderer interface {
	// Start queues a slideshow render for an uploaded job.
	Start(ctx context.Context, jobID string, opts models.RenderOptions) (*models.RenderJob, error)

	// Status fetches the current state of a render.
	Status(ctx context.Context, renderID string) (*models.RenderJob, error)

	// Watch polls a render until it reaches a terminal status or ctx is
	// cancelled. onUpdate receives every successfully decoded snapshot.
	Watch(ctx context.Context, renderID string, onUpdate func(models.RenderJob)) (*models.RenderJob, error)

	// ResolveDownloadURL qualifies a status download URL against the
	// backend base URL.
	ResolveDownloadURL(raw string) string

	// Download streams a finished render to dest, returning bytes written.
	Download(ctx context.Context, downloadURL, dest string) (int64, error)
}

// decodeAPIError turns a non-2xx backend response into an error, preferring
// the FastAPI detail string when the body carries one.
func decodeAPIError(what string, status int, body []byte) error {
	var errResp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		return fmt.Errorf("%s (status %d): %s", what, status, errResp.Detail)
	}
	return fmt.Errorf("%s (status %d)", what, status)
}
