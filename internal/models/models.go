// package models defines the data model for the Vibello slideshow client
package models

import (
	"fmt"
	"time"
)

// StagedFile is a photo selected for upload. The ID is derived from the file
// name, size, and modification time, so re-picking the same file yields the
// same identity.
type StagedFile struct {
	ID      string
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	Preview string
}

// SavedFile is one accepted entry in an upload response.
type SavedFile struct {
	Name    string `json:"name"`
	RelPath string `json:"relpath"`
}

// SkippedFile is one rejected entry in an upload response.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// UploadJob mirrors the backend's upload response and job lookup payloads.
type UploadJob struct {
	JobID        string        `json:"job_id"`
	SavedCount   int           `json:"saved_count"`
	SkippedCount int           `json:"skipped_count"`
	Saved        []SavedFile   `json:"saved,omitempty"`
	Skipped      []SkippedFile `json:"skipped,omitempty"`
	Files        []string      `json:"files,omitempty"`
}

// RenderOptions are the tunables accepted by the render endpoint. Zero values
// are omitted so the backend applies its own defaults and clamps.
type RenderOptions struct {
	SlideSeconds float64 `json:"slide_seconds,omitempty"`
	XfadeSeconds float64 `json:"xfade_seconds,omitempty"`
	FPS          int     `json:"fps,omitempty"`
}

// RenderStatus enumerates the backend's render lifecycle states.
type RenderStatus string

const (
	RenderQueued     RenderStatus = "queued"
	RenderProcessing RenderStatus = "processing"
	RenderDone       RenderStatus = "done"
	RenderError      RenderStatus = "error"
)

// Terminal reports whether the status ends a render's lifecycle.
// Unknown statuses are non-terminal so polling continues through them.
func (s RenderStatus) Terminal() bool {
	return s == RenderDone || s == RenderError
}

// RenderJob mirrors the backend's render creation and status payloads.
type RenderJob struct {
	RenderID    string       `json:"render_id"`
	Status      RenderStatus `json:"status"`
	Progress    int          `json:"progress"`
	DownloadURL string       `json:"download_url,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Model defines the base interface for all persistent models in the Vibello client.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Render records one render submitted through this client, backing the
// history listings and bulk downloads.
type Render struct {
	id           string
	sequence     int
	jobID        string
	renderID     string
	status       RenderStatus
	fileCount    int
	slideSeconds float64
	xfadeSeconds float64
	fps          int
	downloadURL  string
	localPath    string
	errorText    string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewRender creates a Render history entry from a render job and the options
// it was started with.
func NewRender(sequence int, jobID string, job RenderJob, opts RenderOptions, fileCount int) *Render {
	now := time.Now()
	return &Render{
		sequence:     sequence,
		jobID:        jobID,
		renderID:     job.RenderID,
		status:       job.Status,
		fileCount:    fileCount,
		slideSeconds: opts.SlideSeconds,
		xfadeSeconds: opts.XfadeSeconds,
		fps:          opts.FPS,
		downloadURL:  job.DownloadURL,
		errorText:    job.Error,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (r *Render) ID() string            { return r.id }
func (r *Render) Sequence() int         { return r.sequence }
func (r *Render) JobID() string         { return r.jobID }
func (r *Render) RenderID() string      { return r.renderID }
func (r *Render) Status() RenderStatus  { return r.status }
func (r *Render) FileCount() int        { return r.fileCount }
func (r *Render) SlideSeconds() float64 { return r.slideSeconds }
func (r *Render) XfadeSeconds() float64 { return r.xfadeSeconds }
func (r *Render) FPS() int              { return r.fps }
func (r *Render) DownloadURL() string   { return r.downloadURL }
func (r *Render) LocalPath() string     { return r.localPath }
func (r *Render) ErrorText() string     { return r.errorText }
func (r *Render) CreatedAt() time.Time  { return r.createdAt }
func (r *Render) UpdatedAt() time.Time  { return r.updatedAt }
func (r *Render) DeletedAt() *time.Time { return r.deletedAt }

func (r *Render) SetID(id string)             { r.id = id }
func (r *Render) SetSequence(seq int)         { r.sequence = seq }
func (r *Render) SetStatus(s RenderStatus)    { r.status = s }
func (r *Render) SetDownloadURL(url string)   { r.downloadURL = url }
func (r *Render) SetLocalPath(path string)    { r.localPath = path }
func (r *Render) SetErrorText(text string)    { r.errorText = text }
func (r *Render) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *Render) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *Render) SetDeletedAt(t *time.Time)   { r.deletedAt = t }
func (r *Render) SetFileCount(n int)          { r.fileCount = n }
func (r *Render) SetOptions(o RenderOptions)  { r.slideSeconds, r.xfadeSeconds, r.fps = o.SlideSeconds, o.XfadeSeconds, o.FPS }
func (r *Render) Options() RenderOptions {
	return RenderOptions{SlideSeconds: r.slideSeconds, XfadeSeconds: r.xfadeSeconds, FPS: r.fps}
}

// Validate checks the entity before persistence.
func (r *Render) Validate() error {
	if r.renderID == "" {
		return fmt.Errorf("render_id is required")
	}
	if r.jobID == "" {
		return fmt.Errorf("job_id is required")
	}
	switch r.status {
	case RenderQueued, RenderProcessing, RenderDone, RenderError:
	default:
		return fmt.Errorf("unknown status: %q", r.status)
	}
	return nil
}
