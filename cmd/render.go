package main

import (
	"context"
	"fmt"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/urfave/cli/v3"
)

// Render queues a slideshow render for an uploaded job and, unless told not
// to, polls it to a terminal status.
func (r *Runner) Render(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.String("job")
	if jobID == "" {
		return fmt.Errorf("%w: --job flag is required", shared.ErrMissingArgument)
	}

	opts := renderOptions(cmd)

	// The job lookup both validates the ID and gives the history row its
	// file count.
	job, err := r.uploader.Job(ctx, jobID)
	if err != nil {
		return err
	}

	r.logger.Info("starting render", "job_id", jobID, "files", len(job.Files))

	render, err := r.renderer.Start(ctx, jobID, opts)
	if err != nil {
		return err
	}

	r.writePlain("🎬 Render queued: %s\n", render.RenderID)

	if cmd.Bool("no-wait") {
		r.recordRender(jobID, *render, opts, len(job.Files), "")
		r.writePlain("Check progress with: vibello render status %s\n", render.RenderID)
		return nil
	}

	final, err := r.watchRender(ctx, render.RenderID)
	if err != nil {
		return err
	}

	var localPath string
	if final.Status == models.RenderDone && cmd.String("output") != "" {
		dest := cmd.String("output")
		written, err := r.renderer.Download(ctx, final.DownloadURL, dest)
		if err != nil {
			r.recordRender(jobID, *final, opts, len(job.Files), "")
			return err
		}
		localPath = dest
		r.writePlain("💾 Saved %s (%s)\n", dest, shared.FormatBytes(written))
	}

	r.recordRender(jobID, *final, opts, len(job.Files), localPath)

	if final.Status == models.RenderError {
		return fmt.Errorf("%w: %s", shared.ErrRenderFailed, final.Error)
	}

	r.writePlainHeader("Render Complete!")
	r.writePlain("Render: %s\n", final.RenderID)
	r.writePlain("Download: %s\n", r.renderer.ResolveDownloadURL(final.DownloadURL))

	return nil
}

// watchRender polls a render to a terminal status, printing changes only.
func (r *Runner) watchRender(ctx context.Context, renderID string) (*models.RenderJob, error) {
	lastProgress := -1
	var lastStatus models.RenderStatus

	return r.renderer.Watch(ctx, renderID, func(update models.RenderJob) {
		if update.Status == lastStatus && update.Progress == lastProgress {
			return
		}
		lastStatus = update.Status
		lastProgress = update.Progress
		r.writePlain("🎞 Rendering [%s] %d%%\n", update.Status, update.Progress)
	})
}

// RenderStatus fetches a one-shot status for a render.
func (r *Runner) RenderStatus(ctx context.Context, cmd *cli.Command) error {
	renderID := cmd.StringArg("id")
	if renderID == "" {
		return fmt.Errorf("%w: RENDER_ID argument is required", shared.ErrMissingArgument)
	}

	render, err := r.renderer.Status(ctx, renderID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(render, true)
	}

	r.writePlain("Render: %s\n", render.RenderID)
	r.writePlain("Status: %s\n", render.Status)
	r.writePlain("Progress: %d%%\n", render.Progress)
	if render.DownloadURL != "" {
		r.writePlain("Download: %s\n", r.renderer.ResolveDownloadURL(render.DownloadURL))
	}
	if render.Error != "" {
		r.writePlain("Error: %s\n", render.Error)
	}

	return nil
}

// renderOptions reads the slideshow tunables from flags. Flag defaults come
// from config, so what lands on the wire is flag over config over backend
// clamp.
func renderOptions(cmd *cli.Command) models.RenderOptions {
	return models.RenderOptions{
		SlideSeconds: cmd.Float("slide"),
		XfadeSeconds: cmd.Float("xfade"),
		FPS:          cmd.Int("fps"),
	}
}

// renderFlags are shared by the render and run commands.
func renderFlags(r *Runner) []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:  "slide",
			Usage: "Seconds each photo is shown (backend clamps to 1-12)",
			Value: r.config.Render.SlideSeconds,
		},
		&cli.FloatFlag{
			Name:  "xfade",
			Usage: "Crossfade seconds between photos (backend clamps to 0.2-slide)",
			Value: r.config.Render.XfadeSeconds,
		},
		&cli.IntFlag{
			Name:  "fps",
			Usage: "Frames per second (backend clamps to 12-60)",
			Value: r.config.Render.FPS,
		},
	}
}

// renderCommand handles render start and status operations.
func renderCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "job",
			Usage: "Upload job ID to render",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Download the finished mp4 to this path",
		},
		&cli.BoolFlag{
			Name:  "no-wait",
			Usage: "Queue the render and exit without polling",
		},
	}
	flags = append(flags, renderFlags(r)...)

	return &cli.Command{
		Name:   "render",
		Usage:  "Render an uploaded job into a slideshow",
		Flags:  flags,
		Action: r.Render,
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "One-shot status for a render",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RenderStatus,
			},
		},
	}
}
