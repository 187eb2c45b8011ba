package tasks

import (
	"fmt"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	StageFiles Phase = iota
	UploadFiles
	StartRender
	PollRender
	DownloadResult
	BulkDownload
)

func (p Phase) String() string {
	switch p {
	case StageFiles:
		return "stage_files"
	case UploadFiles:
		return "upload_files"
	case StartRender:
		return "start_render"
	case PollRender:
		return "poll_render"
	case DownloadResult:
		return "download_result"
	case BulkDownload:
		return "bulk_download"
	default:
		return ""
	}
}

func stagedFilesUpdate(accepted, rejected int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StageFiles,
		Step:    accepted,
		Total:   accepted + rejected,
		Message: fmt.Sprintf("Staged %d photos (%d rejected)", accepted, rejected),
	}
}

func uploadStartUpdate(count int, totalBytes int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    0,
		Total:   100,
		Message: fmt.Sprintf("Uploading %d photos (%s)...", count, shared.FormatBytes(totalBytes)),
	}
}

func uploadProgressUpdate(percent int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    percent,
		Total:   100,
		Message: fmt.Sprintf("Uploading... %d%%", percent),
	}
}

func uploadCompletedUpdate(job *models.UploadJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    100,
		Total:   100,
		Message: fmt.Sprintf("✓ Uploaded %d photos (job %s)", job.SavedCount, job.JobID),
		Data:    job,
	}
}

func renderStartUpdate(jobID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartRender,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Requesting render for job %s...", jobID),
	}
}

func renderQueuedUpdate(job *models.RenderJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartRender,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Render queued (ID: %s)", job.RenderID),
		Data:    job,
	}
}

func renderPollUpdate(job models.RenderJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollRender,
		Step:    job.Progress,
		Total:   100,
		Message: fmt.Sprintf("Rendering... %d%%", job.Progress),
	}
}

func renderDoneUpdate(job models.RenderJob, downloadURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollRender,
		Step:    100,
		Total:   100,
		Message: fmt.Sprintf("✓ Render complete: %s", downloadURL),
		Data:    job,
	}
}

func renderFailedUpdate(job models.RenderJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollRender,
		Step:    job.Progress,
		Total:   100,
		Message: fmt.Sprintf("✗ Render failed: %s", job.Error),
	}
}

func downloadStartUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadResult,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Downloading %s...", url),
	}
}

func downloadCompletedUpdate(path string, bytes int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadResult,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ Saved %s (%s)", path, shared.FormatBytes(bytes)),
	}
}

func bulkDownloadUpdate(step, total int, renderID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkDownload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading: %s...", step, total, renderID),
	}
}

func bulkCompletedUpdate(step, total int, renderID, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkDownload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, renderID, path),
	}
}

func bulkFailedUpdate(step, total int, renderID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkDownload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, renderID, err),
	}
}
