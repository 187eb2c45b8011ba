package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/kgolebiewski95/Vibello/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive slideshow builder over the given paths.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one photo or directory path", shared.ErrMissingArgument)
	}

	engine, err := r.slideshowEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/vibello-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := models.RenderOptions{
		SlideSeconds: r.config.Render.SlideSeconds,
		XfadeSeconds: r.config.Render.XfadeSeconds,
		FPS:          r.config.Render.FPS,
	}

	model := ui.NewModel(ctx, engine, paths, opts, r.config.Storage.DownloadDir, fileLogger)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	// The TUI records nothing while running; persist the session's final
	// render once the program exits.
	snap := engine.Snapshot()
	if snap.Render != nil && snap.Render.Status.Terminal() && snap.Job != nil {
		localPath := ""
		dest := filepath.Join(r.config.Storage.DownloadDir, snap.Render.RenderID+".mp4")
		if _, err := os.Stat(dest); err == nil {
			localPath = dest
		}
		r.recordRender(snap.Job.JobID, *snap.Render, opts, snap.Job.SavedCount, localPath)
	}

	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive"},
		Usage:     "Build a slideshow interactively",
		ArgsUsage: "PATH...",
		Action:    r.TUI,
	}
}
