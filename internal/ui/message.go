package ui

import (
	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/staging"
	"github.com/kgolebiewski95/Vibello/internal/tasks"
)

// stagedMsg reports the initial staging pass over the paths the TUI was
// started with.
type stagedMsg struct {
	accepted []models.StagedFile
	rejects  []staging.Rejection
	err      error
}

// progressMsg carries one engine progress update into the tea loop.
type progressMsg tasks.ProgressUpdate

// pipelineDoneMsg reports the upload+render outcome once the progress channel
// has drained.
type pipelineDoneMsg struct {
	render *models.RenderJob
	err    error
}

// downloadDoneMsg reports a completed download of the finished render.
type downloadDoneMsg struct {
	path  string
	bytes int64
	err   error
}

// pipelineOutcome hands the goroutine's result to the tea loop through a
// channel, so no model fields are written outside Update.
type pipelineOutcome struct {
	render *models.RenderJob
	err    error
}
