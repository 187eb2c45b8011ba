package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/repositories"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/kgolebiewski95/Vibello/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Download fetches finished renders recorded in history: the most recent one
// by default, one by render ID, or every finished render with --all.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	renderID := cmd.String("id")
	all := cmd.Bool("all")

	if renderID != "" && all {
		return fmt.Errorf("%w: cannot combine --id with --all", shared.ErrInvalidArgument)
	}

	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRenderRepository(db)

	if all {
		return r.downloadAll(ctx, cmd, repo)
	}

	if renderID == "" {
		latest, err := repo.Latest()
		if err != nil {
			return fmt.Errorf("%w: no renders in history", shared.ErrRenderNotFound)
		}
		renderID = latest.RenderID()
	}

	return r.downloadOne(ctx, cmd, repo, renderID)
}

func (r *Runner) downloadOne(ctx context.Context, cmd *cli.Command, repo *repositories.RenderRepository, renderID string) error {
	render, err := repo.GetByRenderID(renderID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRenderNotFound, err)
	}
	if render.Status() != models.RenderDone || render.DownloadURL() == "" {
		return fmt.Errorf("%w: render %s is %s, nothing to download", shared.ErrRenderNotFound, renderID, render.Status())
	}

	dest := filepath.Join(cmd.String("dir"), renderID+".mp4")

	r.logger.Info("downloading render", "render_id", renderID, "dest", dest)

	written, err := r.renderer.Download(ctx, render.DownloadURL(), dest)
	if err != nil {
		return err
	}

	render.SetLocalPath(dest)
	if err := repo.Update(render); err != nil {
		r.logger.Warn("failed to record local path", "error", err)
	}

	return r.writePlain("✓ Saved %s (%s)\n", dest, shared.FormatBytes(written))
}

func (r *Runner) downloadAll(ctx context.Context, cmd *cli.Command, repo *repositories.RenderRepository) error {
	renders, err := repo.List(map[string]any{"status": string(models.RenderDone)})
	if err != nil {
		return err
	}
	if len(renders) == 0 {
		return r.writePlain("No finished renders in history.\n")
	}

	engine, err := r.slideshowEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	r.writePlain("Downloading %d renders...\n\n", len(renders))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progressCh, done)

	result, err := engine.BulkDownload(ctx, progressCh, renders, tasks.BulkDownloadOpts{
		OutputDir: cmd.String("dir"),
	})

	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	for _, res := range result.Results {
		if !res.Success {
			continue
		}
		render, err := repo.GetByRenderID(res.RenderID)
		if err != nil {
			continue
		}
		render.SetLocalPath(res.Path)
		if err := repo.Update(render); err != nil {
			r.logger.Warn("failed to record local path", "render_id", res.RenderID, "error", err)
		}
	}

	r.writePlainHeader("Bulk Download Complete!")
	r.writePlain("Downloaded: %d/%d\n", result.Succeeded, result.Total)
	if result.Failed > 0 {
		r.writePlain("Failed: %d\n", result.Failed)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.RenderID, res.Error)
			}
		}
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	return nil
}

// downloadCommand fetches finished renders from history.
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download finished renders from history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Render ID to download (default: most recent)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Download every finished render",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory to save mp4 files into",
				Value: r.config.Storage.DownloadDir,
			},
		},
		Action: r.Download,
	}
}
