package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"golang.org/x/time/rate"
)

// BulkDownloadOpts contains configuration for bulk render downloads.
type BulkDownloadOpts struct {
	OutputDir  string  // Base output directory (default: vibello_renders_{epoch})
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Download starts per second (default: 2)
}

// RenderDownloadResult records the outcome for a single render.
type RenderDownloadResult struct {
	RenderID string `json:"render_id"`
	JobID    string `json:"job_id,omitempty"`
	Path     string `json:"path,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// BulkDownloadResult summarizes a bulk download run. A JSON manifest with
// the same shape is written next to the downloaded files.
type BulkDownloadResult struct {
	Total           int                    `json:"total"`
	Succeeded       int                    `json:"succeeded"`
	Failed          int                    `json:"failed"`
	OutputDirectory string                 `json:"output_directory"`
	Results         []RenderDownloadResult `json:"results"`
	ManifestPath    string                 `json:"manifest_path,omitempty"`
}

type renderDownloadJob struct {
	RenderID string
	JobID    string
	URL      string
}

// BulkDownload fetches multiple finished renders concurrently with rate
// limiting and progress tracking.
//
// This method implements a worker pool pattern over the render history. It
// respects backend rate limits, handles partial failures gracefully, and
// writes a manifest file summarizing the results.
func (e *SlideshowEngine) BulkDownload(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	renders []*models.Render,
	opts BulkDownloadOpts,
) (*BulkDownloadResult, error) {
	if e.renderer == nil {
		return nil, fmt.Errorf("%w: render service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("vibello_renders_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkDownloadResult{
		Total:           len(renders),
		OutputDirectory: opts.OutputDir,
		Results:         make([]RenderDownloadResult, 0, len(renders)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan renderDownloadJob, len(renders))
	results := make(chan RenderDownloadResult, len(renders))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.downloadWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, render := range renders {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if render.DownloadURL() == "" {
				results <- RenderDownloadResult{
					RenderID: render.RenderID(),
					JobID:    render.JobID(),
					Error:    "no download URL recorded",
				}
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			jobs <- renderDownloadJob{
				RenderID: render.RenderID(),
				JobID:    render.JobID(),
				URL:      render.DownloadURL(),
			}

			e.sendProgress(prog, bulkDownloadUpdate(i+1, len(renders), render.RenderID()))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Succeeded++
			e.sendProgress(prog, bulkCompletedUpdate(completed, len(renders), res.RenderID, res.Path))
		} else {
			result.Failed++
			e.sendProgress(prog, bulkFailedUpdate(completed, len(renders), res.RenderID, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "download_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("downloads completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("downloads completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	return result, nil
}

// downloadWorker is a worker goroutine that downloads renders from the jobs channel.
func (e *SlideshowEngine) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan renderDownloadJob,
	results chan<- RenderDownloadResult,
	opts BulkDownloadOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := RenderDownloadResult{RenderID: job.RenderID, JobID: job.JobID}

		dest := filepath.Join(opts.OutputDir, job.RenderID+".mp4")
		written, err := e.renderer.Download(ctx, job.URL, dest)
		if err != nil {
			res.Error = err.Error()
			results <- res
			continue
		}

		res.Path = dest
		res.Bytes = written
		res.Success = true
		results <- res
	}
}
