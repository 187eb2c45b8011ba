package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/repositories"
	"github.com/kgolebiewski95/Vibello/internal/services"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/kgolebiewski95/Vibello/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	uploader   services.Uploader
	renderer   services.Renderer
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.SlideshowEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	Uploader   services.Uploader
	Renderer   services.Renderer
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration. Missing
// services are built from the config, so a zero RunnerOpts yields a working
// runner against the default backend.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Backend.Timeout()}
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Backend.BaseURL, opts.HTTPClient)
	}

	if path := opts.Config.Backend.HeadersPath; path != "" {
		if headers, err := shared.ParseCurlFile(path); err != nil {
			opts.Logger.Warn("ignoring headers file", "path", path, "error", err)
		} else {
			opts.API.SetHeaders(headers)
		}
	}

	if opts.Uploader == nil {
		opts.Uploader = services.NewUploadService(opts.API)
	}
	if opts.Renderer == nil {
		opts.Renderer = services.NewRenderService(opts.API, opts.Config.Render.PollInterval(), opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		uploader:   opts.Uploader,
		renderer:   opts.Renderer,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, apiCommand, uploadCommand, renderCommand, runCommand, downloadCommand, historyCommand, previewCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// slideshowEngine returns the staged-slideshow engine, building it on first
// use so commands that never stage anything skip the preview directory.
func (r *Runner) slideshowEngine() (*tasks.SlideshowEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	engine, err := tasks.NewSlideshowEngine(tasks.EngineOpts{
		Uploader: r.uploader,
		Renderer: r.renderer,
		Limit:    r.config.Upload.Limit(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize slideshow engine: %w", err)
	}

	r.engine = engine
	return engine, nil
}

// openHistory opens the render history database and applies pending
// migrations, so history commands work without a prior setup run.
func (r *Runner) openHistory() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Storage.MaxOpenConns, r.config.Storage.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return db, nil
}

// recordRender appends a render outcome to the local history database.
// History failures are logged, not returned: the render itself already ran.
func (r *Runner) recordRender(jobID string, job models.RenderJob, opts models.RenderOptions, fileCount int, localPath string) {
	db, err := r.openHistory()
	if err != nil {
		r.logger.Warn("skipping history record", "error", err)
		return
	}
	defer db.Close()

	render := models.NewRender(0, jobID, job, opts, fileCount)
	if localPath != "" {
		render.SetLocalPath(localPath)
	}

	repo := repositories.NewRenderRepository(db)
	if err := repo.Create(render); err != nil {
		r.logger.Warn("failed to record render history", "error", err)
		return
	}

	r.logger.Debug("render recorded", "render_id", job.RenderID, "seq", render.Sequence())
}

// printProgress renders engine progress updates as console lines. High-volume
// percent phases only print on multiples of ten, so a full upload produces a
// handful of lines instead of one per percent.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)

	lastTen := -1
	for update := range progress {
		var icon string
		switch update.Phase {
		case tasks.StageFiles:
			icon = "📷"
		case tasks.UploadFiles:
			icon = "📤"
		case tasks.StartRender:
			icon = "🎬"
		case tasks.PollRender:
			icon = "🎞"
		case tasks.DownloadResult:
			icon = "💾"
		case tasks.BulkDownload:
			icon = "📦"
		}

		if update.Phase == tasks.UploadFiles || update.Phase == tasks.PollRender {
			if update.Step < update.Total && update.Step/10 == lastTen {
				continue
			}
			lastTen = update.Step / 10
		}

		r.writePlain("%s %s\n", icon, update.Message)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
