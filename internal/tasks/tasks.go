// package tasks implements the slideshow job pipeline against the Vibello backend.
//
// The core abstraction is SlideshowEngine, which owns the staged photo set and walks it through upload, render, and download.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/services"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/kgolebiewski95/Vibello/internal/staging"
)

// State is the client-visible lifecycle of a slideshow job.
type State int

const (
	StateIdle State = iota
	StateStaged
	StateUploading
	StateUploaded
	StateRenderQueued
	StateRenderProcessing
	StateRenderDone
	StateRenderError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaged:
		return "staged"
	case StateUploading:
		return "uploading"
	case StateUploaded:
		return "uploaded"
	case StateRenderQueued:
		return "render_queued"
	case StateRenderProcessing:
		return "render_processing"
	case StateRenderDone:
		return "render_done"
	case StateRenderError:
		return "render_error"
	default:
		return ""
	}
}

// Snapshot is a point-in-time copy of engine state for presentation layers.
type Snapshot struct {
	State       State
	Files       []models.StagedFile
	Limit       int
	Job         *models.UploadJob
	Render      *models.RenderJob
	DownloadURL string
	LastError   string
	Uploading   bool
}

// EngineOpts configures a SlideshowEngine.
type EngineOpts struct {
	Uploader   services.Uploader
	Renderer   services.Renderer
	Limit      int    // Staging cap, 0 means the backend limit of 25
	PreviewDir string // Preview handle directory, "" allocates a temp dir
}

// SlideshowEngine owns the client state machine for one slideshow job:
// staging, the upload job, the active render, and the preview handles. All
// state sits behind one mutex so the TUI and CLI can drive it concurrently.
//
// In-flight results carry the generation they were started under; any
// operation that invalidates them bumps the generation, and stale results
// are discarded on arrival instead of overwriting newer state.
type SlideshowEngine struct {
	uploader services.Uploader
	renderer services.Renderer

	mu             sync.Mutex
	gen            uint64
	state          State
	files          *staging.Set
	previews       *staging.Registry
	job            *models.UploadJob
	render         *models.RenderJob
	downloadURL    string
	lastError      string
	uploading      bool
	uploadCancel   context.CancelFunc
	activeRenderID string
	cancelWatch    context.CancelFunc
}

// NewSlideshowEngine creates an idle engine with an empty staging set.
func NewSlideshowEngine(opts EngineOpts) (*SlideshowEngine, error) {
	previews, err := staging.NewRegistry(opts.PreviewDir)
	if err != nil {
		return nil, err
	}

	return &SlideshowEngine{
		uploader: opts.Uploader,
		renderer: opts.Renderer,
		state:    StateIdle,
		files:    staging.NewSet(opts.Limit),
		previews: previews,
	}, nil
}

// Previews exposes the preview handle registry, read by the gallery server.
func (e *SlideshowEngine) Previews() *staging.Registry {
	return e.previews
}

// StagedFiles returns a copy of the staged files in staging order.
func (e *SlideshowEngine) StagedFiles() []models.StagedFile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.files.Files()
}

// PreviewPath returns the preview handle path for a staged file identity.
func (e *SlideshowEngine) PreviewPath(id string) (string, bool) {
	return e.previews.Get(id)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SlideshowEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// resetJobsLocked forgets job and render state and stops their loops. The
// generation bump orphans any in-flight upload or poll result, which is then
// discarded on arrival.
func (e *SlideshowEngine) resetJobsLocked() {
	e.gen++
	e.cancelActiveRenderLocked()
	if e.uploadCancel != nil {
		e.uploadCancel()
		e.uploadCancel = nil
	}
	e.job = nil
	e.render = nil
	e.downloadURL = ""
	e.lastError = ""
}

// cancelActiveRenderLocked stops the active poll loop and forgets its render
// ID, so late responses for that ID have nowhere to land.
func (e *SlideshowEngine) cancelActiveRenderLocked() {
	if e.cancelWatch != nil {
		e.cancelWatch()
		e.cancelWatch = nil
	}
	e.activeRenderID = ""
}

// syncStateLocked settles state to idle or staged after a staging mutation.
func (e *SlideshowEngine) syncStateLocked() {
	if e.files.Len() == 0 {
		e.state = StateIdle
	} else {
		e.state = StateStaged
	}
}

// Stage filters candidate paths through the image allowlist and adds the
// survivors to the staging set, creating a preview handle for each. Rejected
// candidates (wrong extension, duplicate identity, over the 25-file cap) are
// reported per file without failing the accepted ones.
//
// Accepting new files discards any previous upload job and render, since
// those described a different input set.
func (e *SlideshowEngine) Stage(paths []string, progress chan<- ProgressUpdate) ([]models.StagedFile, []staging.Rejection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.uploading {
		return nil, nil, shared.ErrUploadInFlight
	}

	candidates, rejected := staging.Pick(paths)

	accepted := make([]models.StagedFile, 0, len(candidates))
	for _, file := range candidates {
		if err := e.files.Add(file); err != nil {
			switch {
			case errors.Is(err, shared.ErrDuplicateFile):
				rejected = append(rejected, staging.Rejection{Name: file.Name, Reason: staging.ReasonDuplicate})
			case errors.Is(err, shared.ErrStagingLimit):
				rejected = append(rejected, staging.Rejection{Name: file.Name, Reason: staging.ReasonLimit})
			default:
				return accepted, rejected, err
			}
			continue
		}

		// Preview failure leaves the file staged without one.
		if preview, err := e.previews.Create(file.ID, file.Path); err == nil {
			e.files.SetPreview(file.ID, preview)
		}

		accepted = append(accepted, file)
	}

	if len(accepted) > 0 {
		e.resetJobsLocked()
		e.syncStateLocked()
	}

	e.sendProgress(progress, stagedFilesUpdate(len(accepted), len(rejected)))

	return accepted, rejected, nil
}

// Unstage removes one staged file and releases its preview handle, reporting
// whether the file was present. Refused while an upload is in flight. A
// removal discards any previous upload job and render.
func (e *SlideshowEngine) Unstage(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.uploading {
		return false
	}
	if !e.files.Remove(id) {
		return false
	}

	e.previews.Release(id)
	e.resetJobsLocked()
	e.syncStateLocked()

	return true
}

// Clear abandons everything and returns the engine to idle: the staging set
// empties, every preview handle is released, job and render state is
// forgotten, and in-flight loops are cancelled. Usable from every state.
func (e *SlideshowEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.files.Clear()
	e.previews.ReleaseAll()
	e.resetJobsLocked()
	e.state = StateIdle
}

// Upload sends the staged set to the backend as one multipart request.
// Guards: refused while another upload is in flight or when nothing is
// staged. A retry discards the previous job first. On failure the staging
// set is preserved and the engine drops back to staged so the user can try
// again.
func (e *SlideshowEngine) Upload(ctx context.Context, progress chan<- ProgressUpdate) (*models.UploadJob, error) {
	e.mu.Lock()
	if e.uploader == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: upload service not initialized", shared.ErrServiceUnavailable)
	}
	if e.uploading {
		e.mu.Unlock()
		return nil, shared.ErrUploadInFlight
	}

	files := e.files.Files()
	if len(files) == 0 {
		e.mu.Unlock()
		return nil, shared.ErrNothingStaged
	}

	e.resetJobsLocked()
	gen := e.gen

	upCtx, cancel := context.WithCancel(ctx)
	e.uploadCancel = cancel
	e.uploading = true
	e.state = StateUploading
	totalBytes := e.files.TotalSize()
	e.mu.Unlock()

	e.sendProgress(progress, uploadStartUpdate(len(files), totalBytes))

	job, err := e.uploader.Upload(upCtx, files, func(percent int) {
		e.sendProgress(progress, uploadProgressUpdate(percent))
	})
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.uploading = false
	e.uploadCancel = nil

	if e.gen != gen {
		// Cleared while the request was in flight; the result has no home.
		return nil, fmt.Errorf("%w: upload", shared.ErrSuperseded)
	}

	if err != nil {
		e.state = StateStaged
		e.lastError = err.Error()
		return nil, err
	}

	e.job = job
	e.state = StateUploaded
	e.lastError = ""
	e.sendProgress(progress, uploadCompletedUpdate(job))

	return job, nil
}

// Render starts a render for the current upload job and polls it to a
// terminal state, returning the final render job. Requires an upload job. A
// new render supersedes any active one: the old poll loop is cancelled first
// and late responses for its render ID are discarded on arrival.
func (e *SlideshowEngine) Render(ctx context.Context, opts models.RenderOptions, progress chan<- ProgressUpdate) (*models.RenderJob, error) {
	e.mu.Lock()
	if e.renderer == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: render service not initialized", shared.ErrServiceUnavailable)
	}
	if e.uploading {
		e.mu.Unlock()
		return nil, shared.ErrUploadInFlight
	}
	if e.job == nil {
		e.mu.Unlock()
		return nil, shared.ErrNoUploadJob
	}

	e.cancelActiveRenderLocked()
	e.gen++
	gen := e.gen
	jobID := e.job.JobID
	e.render = nil
	e.downloadURL = ""
	e.lastError = ""
	e.mu.Unlock()

	e.sendProgress(progress, renderStartUpdate(jobID))

	job, err := e.renderer.Start(ctx, jobID, opts)
	if err != nil {
		e.mu.Lock()
		if e.gen == gen {
			e.lastError = err.Error()
		}
		e.mu.Unlock()
		return nil, err
	}

	e.mu.Lock()
	if e.gen != gen {
		// Another render or a clear took over while the start request was in
		// flight; abandon this one without touching state.
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: render %s", shared.ErrSuperseded, job.RenderID)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	e.render = job
	e.activeRenderID = job.RenderID
	e.cancelWatch = cancel
	e.state = StateRenderQueued
	e.mu.Unlock()

	e.sendProgress(progress, renderQueuedUpdate(job))

	final, err := e.renderer.Watch(watchCtx, job.RenderID, func(update models.RenderJob) {
		e.applyRenderUpdate(job.RenderID, update, progress)
	})
	cancel()

	e.mu.Lock()
	if e.activeRenderID == job.RenderID {
		e.cancelWatch = nil
	}
	e.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: render %s", shared.ErrSuperseded, job.RenderID)
	}

	return final, nil
}

// applyRenderUpdate applies a poll snapshot if renderID is still the active
// render. Snapshots for superseded or cancelled renders are discarded, which
// keeps a late response from an old loop out of newer state.
func (e *SlideshowEngine) applyRenderUpdate(renderID string, update models.RenderJob, progress chan<- ProgressUpdate) {
	e.mu.Lock()

	if e.activeRenderID != renderID {
		e.mu.Unlock()
		return
	}

	e.render = &update
	switch update.Status {
	case models.RenderQueued:
		e.state = StateRenderQueued
	case models.RenderProcessing:
		e.state = StateRenderProcessing
	case models.RenderDone:
		e.state = StateRenderDone
		e.downloadURL = e.renderer.ResolveDownloadURL(update.DownloadURL)
	case models.RenderError:
		e.state = StateRenderError
		e.lastError = update.Error
	}
	downloadURL := e.downloadURL
	e.mu.Unlock()

	switch update.Status {
	case models.RenderDone:
		e.sendProgress(progress, renderDoneUpdate(update, downloadURL))
	case models.RenderError:
		e.sendProgress(progress, renderFailedUpdate(update))
	default:
		e.sendProgress(progress, renderPollUpdate(update))
	}
}

// Download saves the finished render to dest. Requires a render in the done
// state with a download URL.
func (e *SlideshowEngine) Download(ctx context.Context, dest string, progress chan<- ProgressUpdate) (int64, error) {
	e.mu.Lock()
	if e.renderer == nil {
		e.mu.Unlock()
		return 0, fmt.Errorf("%w: render service not initialized", shared.ErrServiceUnavailable)
	}
	downloadURL := e.downloadURL
	e.mu.Unlock()

	if downloadURL == "" {
		return 0, fmt.Errorf("%w: no finished render to download", shared.ErrRenderNotFound)
	}

	e.sendProgress(progress, downloadStartUpdate(downloadURL))

	written, err := e.renderer.Download(ctx, downloadURL, dest)
	if err != nil {
		return 0, err
	}

	e.sendProgress(progress, downloadCompletedUpdate(dest, written))

	return written, nil
}

// Run walks the whole pipeline in one call: stage the paths, upload, render,
// and return the final render job. Used by the one-shot CLI flow.
func (e *SlideshowEngine) Run(ctx context.Context, paths []string, opts models.RenderOptions, progress chan<- ProgressUpdate) (*models.RenderJob, error) {
	accepted, _, err := e.Stage(paths, progress)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return nil, shared.ErrNothingStaged
	}

	if _, err := e.Upload(ctx, progress); err != nil {
		return nil, err
	}

	return e.Render(ctx, opts, progress)
}

// Snapshot returns a copy of the engine state. Callers own the result;
// mutating it does not touch the engine.
func (e *SlideshowEngine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:       e.state,
		Files:       e.files.Files(),
		Limit:       e.files.Limit(),
		DownloadURL: e.downloadURL,
		LastError:   e.lastError,
		Uploading:   e.uploading,
	}
	if e.job != nil {
		job := *e.job
		snap.Job = &job
	}
	if e.render != nil {
		render := *e.render
		snap.Render = &render
	}

	return snap
}

// Close cancels in-flight work and releases every preview handle.
func (e *SlideshowEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetJobsLocked()
	e.files.Clear()
	e.state = StateIdle

	return e.previews.Destroy()
}
