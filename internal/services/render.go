// Render client for the slideshow job endpoints
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

const defaultPollInterval = 500 * time.Millisecond

// RenderService implements [Renderer] against the /api/render endpoints.
type RenderService struct {
	api          *APIService
	pollInterval time.Duration
	logger       *log.Logger
}

// NewRenderService creates a render client on top of the raw API service.
// A pollInterval of zero or below falls back to 500ms.
func NewRenderService(api *APIService, pollInterval time.Duration, logger *log.Logger) *RenderService {
	if api == nil {
		api = NewAPIService("", nil)
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &RenderService{
		api:          api,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start queues a render for an uploaded job via POST /api/render. Zero-value
// options are omitted so the backend applies its own defaults and clamps.
func (r *RenderService) Start(ctx context.Context, jobID string, opts models.RenderOptions) (*models.RenderJob, error) {
	if jobID == "" {
		return nil, fmt.Errorf("missing job ID")
	}

	startReq := struct {
		JobID        string  `json:"job_id"`
		SlideSeconds float64 `json:"slide_seconds,omitempty"`
		XfadeSeconds float64 `json:"xfade_seconds,omitempty"`
		FPS          int     `json:"fps,omitempty"`
	}{
		JobID:        jobID,
		SlideSeconds: opts.SlideSeconds,
		XfadeSeconds: opts.XfadeSeconds,
		FPS:          opts.FPS,
	}

	data, err := json.Marshal(startReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode render request: %w", err)
	}

	resp, err := r.api.Post(ctx, "/api/render", data)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError("render start failed", resp.StatusCode, resp.Body)
	}

	var job models.RenderJob
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("failed to decode render response: %w", err)
	}

	return &job, nil
}

// Status fetches GET /api/render/{id}/status. Fields the backend has not
// populated yet decode to zero values, which read as non-terminal, so an
// unfamiliar payload never ends a poll loop early.
func (r *RenderService) Status(ctx context.Context, renderID string) (*models.RenderJob, error) {
	if renderID == "" {
		return nil, fmt.Errorf("missing render ID")
	}

	resp, err := r.api.Get(ctx, "/api/render/"+renderID+"/status")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError("render status failed", resp.StatusCode, resp.Body)
	}

	var job models.RenderJob
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("failed to decode render status: %w", err)
	}

	return &job, nil
}

// Watch polls the render on a fixed cadence until it reaches done or error,
// returning the final job. Transient failures (connectivity, non-2xx,
// malformed bodies) are logged at debug level and skipped, so one bad poll
// never kills the loop. Cancelling ctx returns its error.
func (r *RenderService) Watch(ctx context.Context, renderID string, onUpdate func(models.RenderJob)) (*models.RenderJob, error) {
	if renderID == "" {
		return nil, fmt.Errorf("missing render ID")
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		job, err := r.Status(ctx, renderID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Debug("render poll failed", "render_id", renderID, "error", err)
			continue
		}

		if onUpdate != nil {
			onUpdate(*job)
		}

		if job.Status.Terminal() {
			return job, nil
		}
	}
}

// ResolveDownloadURL qualifies a download URL from a status payload. The
// backend hands out server-relative paths like /storage/renders/{id}.mp4.
func (r *RenderService) ResolveDownloadURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http") {
		return raw
	}

	return r.api.baseURL + raw
}

// Download streams a finished render to dest, creating parent directories as
// needed. Returns the number of bytes written.
func (r *RenderService) Download(ctx context.Context, downloadURL, dest string) (int64, error) {
	resolved := r.ResolveDownloadURL(downloadURL)
	if resolved == "" {
		return 0, fmt.Errorf("missing download URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if r.api.headers != nil {
		r.api.headers.Apply(req.Header)
	}

	resp, err := r.api.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, decodeAPIError("download failed", resp.StatusCode, body)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create download directory: %w", err)
		}
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		f.Close()
		os.Remove(dest)
		return 0, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", dest, err)
	}

	return written, nil
}
