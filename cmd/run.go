package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/kgolebiewski95/Vibello/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run walks the whole pipeline in one call: stage, upload, render, download.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one photo path is required", shared.ErrMissingArgument)
	}

	engine, err := r.slideshowEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := renderOptions(cmd)

	r.logger.Info("running pipeline", "paths", len(paths))
	r.writePlain("Building a slideshow from %d paths...\n\n", len(paths))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progressCh, done)

	final, err := engine.Run(ctx, paths, opts, progressCh)

	var localPath string
	var written int64
	var downloadErr error
	if err == nil && final.Status == models.RenderDone {
		dest := cmd.String("output")
		if dest == "" {
			dest = filepath.Join(r.config.Storage.DownloadDir, final.RenderID+".mp4")
		}
		if written, downloadErr = engine.Download(ctx, dest, progressCh); downloadErr == nil {
			localPath = dest
		}
	}

	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	snap := engine.Snapshot()
	var jobID string
	var fileCount int
	if snap.Job != nil {
		jobID = snap.Job.JobID
		fileCount = snap.Job.SavedCount
	}
	r.recordRender(jobID, *final, opts, fileCount, localPath)

	if final.Status == models.RenderError {
		return fmt.Errorf("%w: %s", shared.ErrRenderFailed, final.Error)
	}
	if downloadErr != nil {
		return fmt.Errorf("render finished but download failed: %w", downloadErr)
	}

	r.writePlainHeader("Slideshow Ready!")
	r.writePlain("Render: %s\n", final.RenderID)
	r.writePlain("Photos: %d\n", fileCount)
	r.writePlain("Saved: %s (%s)\n", localPath, shared.FormatBytes(written))

	return nil
}

// runCommand drives the full pipeline in one shot.
func runCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Save the finished mp4 to this path instead of the download directory",
		},
	}
	flags = append(flags, renderFlags(r)...)

	return &cli.Command{
		Name:      "run",
		Usage:     "Stage, upload, render, and download in one go",
		ArgsUsage: "PATH...",
		Flags:     flags,
		Action:    r.Run,
	}
}
