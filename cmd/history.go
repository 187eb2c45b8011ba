package main

import (
	"context"
	"fmt"

	"github.com/kgolebiewski95/Vibello/internal/formatter"
	"github.com/kgolebiewski95/Vibello/internal/repositories"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recorded renders from the local history database,
// oldest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRenderRepository(db)
	renders, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to read render history: %w", err)
	}

	if limit := cmd.Int("limit"); limit > 0 && len(renders) > limit {
		renders = renders[len(renders)-limit:]
	}

	if cmd.Bool("json") {
		rows := make([]formatter.RenderRow, 0, len(renders))
		for _, render := range renders {
			rows = append(rows, formatter.NewRenderRow(render))
		}
		return r.writeJSON(rows, true)
	}

	if len(renders) == 0 {
		r.writePlain("No renders recorded yet. Run 'vibello run PATH...' to create one.\n")
		return nil
	}

	summary := formatter.Summarize(renders)
	r.writePlainHeader("Render History")
	r.writePlain("Renders: %d  Finished: %d  Failed: %d  Downloaded: %d\n\n",
		summary.Renders, summary.Done, summary.Failed, summary.Downloaded)

	for _, render := range renders {
		line := fmt.Sprintf("%d. %s [%s] job %s, %d files",
			render.Sequence(), render.RenderID(), render.Status(), render.JobID(), render.FileCount())
		if render.LocalPath() != "" {
			line += fmt.Sprintf(" (saved to %s)", render.LocalPath())
		}
		if render.ErrorText() != "" {
			line += fmt.Sprintf(" error: %s", render.ErrorText())
		}
		r.writePlain("%s  %s\n", line, render.CreatedAt().Format("2006-01-02 15:04"))
	}

	return nil
}

// HistoryExport writes the render history to disk in the requested format.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRenderRepository(db)
	renders, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to read render history: %w", err)
	}

	if len(renders) == 0 {
		r.writePlain("Nothing to export.\n")
		return nil
	}

	output := cmd.String("output")
	switch format := cmd.String("format"); format {
	case "csv":
		res, err := formatter.WriteCSVExport(renders, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s and %s\n", res.RendersFile, res.SummaryFile)
	case "markdown", "md":
		res, err := formatter.WriteMarkdownExport(renders, output, "")
		if err != nil {
			return err
		}
		for _, file := range res.Files {
			r.writePlain("✓ Wrote %s\n", file)
		}
	case "text", "txt":
		path, err := formatter.WriteTextExport(renders, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", path)
	case "json":
		path, err := formatter.WriteJSONExport(renders, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format %q (csv, markdown, text, json)", shared.ErrInvalidFlag, format)
	}

	return nil
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect and export past renders",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recorded renders, oldest first",
				Action: r.HistoryList,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Show only the most recent N renders",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Export render history to files",
				Action: r.HistoryExport,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, text, or json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (base path for csv, directory for markdown)",
					},
				},
			},
		},
	}
}
