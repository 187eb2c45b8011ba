package main

import (
	"context"
	"fmt"

	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/kgolebiewski95/Vibello/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload stages the given photo paths and sends them as one multipart batch.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one photo path is required", shared.ErrMissingArgument)
	}

	engine, err := r.slideshowEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	r.logger.Info("starting upload", "paths", len(paths))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progressCh, done)

	_, rejects, err := engine.Stage(paths, progressCh)
	if err != nil {
		close(progressCh)
		<-done
		return err
	}

	job, err := engine.Upload(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(job, true)
	}

	r.writePlainHeader("Upload Complete!")
	r.writePlain("Job: %s\n", job.JobID)
	r.writePlain("Saved: %d\n", job.SavedCount)
	if job.SkippedCount > 0 {
		r.writePlain("Skipped by backend: %d\n", job.SkippedCount)
		for _, skip := range job.Skipped {
			r.writePlain("  - %s (%s)\n", skip.Name, skip.Reason)
		}
	}
	if len(rejects) > 0 {
		r.writePlain("Rejected locally: %d\n", len(rejects))
		for _, reject := range rejects {
			r.writePlain("  - %s (%s)\n", reject.Name, reject.Reason)
		}
	}
	r.writePlain("\nNext: vibello render --job %s\n", job.JobID)

	return nil
}

// uploadCommand stages photos and sends them to the backend.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Stage photos and upload them as one batch",
		ArgsUsage: "PATH...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the upload job as JSON",
			},
		},
		Action: r.Upload,
	}
}
