package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kgolebiewski95/Vibello/internal/server"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/urfave/cli/v3"
)

// Preview stages the given paths and serves them as a local browser gallery
// until interrupted. Nothing is uploaded.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one photo or directory path", shared.ErrMissingArgument)
	}

	engine, err := r.slideshowEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	staged, rejects, err := engine.Stage(paths, nil)
	if err != nil {
		return err
	}
	for _, reject := range rejects {
		r.writePlain("Skipping %s (%s)\n", reject.Name, reject.Reason)
	}
	if len(staged) == 0 {
		return fmt.Errorf("%w: no stageable photos in the given paths", shared.ErrNothingStaged)
	}

	addr := cmd.String("addr")
	handler := server.NewGalleryHandler(engine, r.config.Upload.Limit(), r.logger)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger), server.NoStore())
	router.Handler(handler)

	srv := &http.Server{Addr: addr, Handler: router}
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("preview gallery listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Give the listener a moment before pointing a browser at it.
	time.Sleep(100 * time.Millisecond)

	url := "http://" + addr
	r.writePlain("Previewing %d staged photos at %s\n", len(staged), url)
	r.writePlain("Press Ctrl+C to stop.\n")

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
			r.writePlain("Open %s manually.\n", url)
		}
	}

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("gallery server failed: %w", err)
	case <-stop.Done():
	}

	r.logger.Info("shutting down preview gallery")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Serve staged photos as a local browser gallery",
		ArgsUsage: "PATH...",
		Action:    r.Preview,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Address to serve the gallery on",
				Value: r.config.Preview.ListenAddr,
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the gallery in the default browser",
			},
		},
	}
}
