package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	"github.com/kgolebiewski95/Vibello/internal/staging"
	"github.com/kgolebiewski95/Vibello/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StagingView ViewState = iota
	ConfirmView
	UploadView
	RenderView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	engine      *tasks.SlideshowEngine
	paths       []string
	opts        models.RenderOptions
	downloadDir string
	logger      *log.Logger
	limit       int

	width  int
	height int

	fileList  list.Model
	listReady bool
	staged    []models.StagedFile
	rejects   []staging.Rejection

	spin      spinner.Model
	uploadBar progress.Model
	renderBar progress.Model

	progressChan chan tasks.ProgressUpdate
	outcomeChan  chan pipelineOutcome
	progress     tasks.ProgressUpdate

	render *models.RenderJob
	runErr error
	err    error

	saving     bool
	saved      string
	savedBytes int64
	saveErr    error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies. paths are
// staged through the engine on Init; opts and downloadDir come from config.
func NewModel(ctx context.Context, engine *tasks.SlideshowEngine, paths []string, opts models.RenderOptions, downloadDir string, logger *log.Logger) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = NewStyle("#7D56F4")

	return &Model{
		ctx:         ctx,
		view:        StagingView,
		engine:      engine,
		paths:       paths,
		opts:        opts,
		downloadDir: downloadDir,
		logger:      logger,
		limit:       engine.Snapshot().Limit,
		spin:        spin,
		uploadBar:   progress.New(progress.WithDefaultGradient()),
		renderBar:   progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init stages the provided paths through the engine.
func (m *Model) Init() tea.Cmd {
	return m.stageFiles()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.fileList.SetSize(msg.Width-4, msg.Height-8)
		}
		barWidth := msg.Width - 8
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth > 0 {
			m.uploadBar.Width = barWidth
			m.renderBar.Width = barWidth
		}
		return m, nil

	case spinner.TickMsg:
		if m.view == UploadView || m.view == RenderView {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case StagingView:
			return m.handleStagingKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case UploadView, RenderView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case stagedMsg:
		return m.handleStaged(msg)

	case progressMsg:
		update := tasks.ProgressUpdate(msg)
		m.progress = update
		switch update.Phase {
		case tasks.UploadFiles:
			m.view = UploadView
		case tasks.StartRender, tasks.PollRender:
			m.view = RenderView
		}
		return m, m.waitForProgress()

	case pipelineDoneMsg:
		m.render = msg.render
		m.runErr = msg.err
		m.progressChan = nil
		m.outcomeChan = nil
		m.view = ResultView
		if msg.err != nil {
			m.logger.Error("pipeline failed", "error", msg.err)
		}
		return m, nil

	case downloadDoneMsg:
		m.saving = false
		if msg.err != nil {
			m.saveErr = msg.err
			m.logger.Error("download failed", "error", msg.err)
			return m, nil
		}
		m.saved = msg.path
		m.savedBytes = msg.bytes
		m.saveErr = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case StagingView:
		return m.renderStaging()
	case ConfirmView:
		return m.renderConfirm()
	case UploadView:
		return m.renderUpload()
	case RenderView:
		return m.renderRender()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleStagingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if !m.listReady {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if len(m.staged) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	case "d":
		return m.removeSelected()
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = StagingView
		return m, nil
	case "y":
		m.view = UploadView
		m.progress = tasks.ProgressUpdate{Phase: tasks.UploadFiles, Total: 100, Message: "Starting upload..."}
		return m, m.startPipeline()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		if m.render != nil && m.render.Status == models.RenderDone && !m.saving && m.saved == "" {
			m.saving = true
			return m, m.startDownload()
		}
		return m, nil
	case "r":
		m.view = StagingView
		m.render = nil
		m.runErr = nil
		m.saved = ""
		m.savedBytes = 0
		m.saveErr = nil
		m.progress = tasks.ProgressUpdate{}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleStaged(msg stagedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	m.staged = msg.accepted
	m.rejects = msg.rejects
	if len(msg.accepted) == 0 {
		m.err = fmt.Errorf("%w: no stageable photos in the given paths", shared.ErrNothingStaged)
		return m, nil
	}

	items := make([]list.Item, len(msg.accepted))
	for i, file := range msg.accepted {
		items[i] = stagedItem{file: file}
	}
	m.fileList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.fileList.Title = fmt.Sprintf("Staged Photos (%d/%d)", len(msg.accepted), m.limit)
	if m.width > 0 {
		m.fileList.SetSize(m.width-4, m.height-8)
	}
	m.listReady = true
	return m, nil
}

func (m *Model) removeSelected() (tea.Model, tea.Cmd) {
	selected := m.fileList.SelectedItem()
	item, ok := selected.(stagedItem)
	if !ok {
		return m, nil
	}

	if !m.engine.Unstage(item.file.ID) {
		return m, nil
	}

	m.staged = m.engine.StagedFiles()
	items := make([]list.Item, len(m.staged))
	for i, file := range m.staged {
		items[i] = stagedItem{file: file}
	}
	cmd := m.fileList.SetItems(items)
	m.fileList.Title = fmt.Sprintf("Staged Photos (%d/%d)", len(m.staged), m.limit)
	return m, cmd
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view == StagingView && m.listReady {
		var cmd tea.Cmd
		m.fileList, cmd = m.fileList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) stageFiles() tea.Cmd {
	engine := m.engine
	paths := m.paths
	return func() tea.Msg {
		accepted, rejects, err := engine.Stage(paths, nil)
		return stagedMsg{accepted: accepted, rejects: rejects, err: err}
	}
}

// startPipeline uploads the staged set and renders it in one goroutine. The
// outcome travels through outcomeChan once the progress channel is drained,
// so the goroutine never writes model fields.
func (m *Model) startPipeline() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.outcomeChan = make(chan pipelineOutcome, 1)

	ctx := m.ctx
	engine := m.engine
	opts := m.opts
	progressChan := m.progressChan
	outcomeChan := m.outcomeChan

	go func() {
		render, err := runPipeline(ctx, engine, opts, progressChan)
		outcomeChan <- pipelineOutcome{render: render, err: err}
		close(progressChan)
	}()

	return tea.Batch(m.waitForProgress(), m.spin.Tick)
}

func runPipeline(ctx context.Context, engine *tasks.SlideshowEngine, opts models.RenderOptions, progress chan<- tasks.ProgressUpdate) (*models.RenderJob, error) {
	if _, err := engine.Upload(ctx, progress); err != nil {
		return nil, err
	}
	return engine.Render(ctx, opts, progress)
}

// waitForProgress returns a command reading the next progress update. The
// channels are captured here because the command runs outside the tea loop.
func (m *Model) waitForProgress() tea.Cmd {
	progressChan := m.progressChan
	outcomeChan := m.outcomeChan
	if progressChan == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-progressChan
		if !ok {
			outcome := <-outcomeChan
			return pipelineDoneMsg{render: outcome.render, err: outcome.err}
		}
		return progressMsg(update)
	}
}

func (m *Model) startDownload() tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	dest := filepath.Join(m.downloadDir, m.render.RenderID+".mp4")

	return func() tea.Msg {
		bytes, err := engine.Download(ctx, dest, nil)
		return downloadDoneMsg{path: dest, bytes: bytes, err: err}
	}
}

func (m *Model) renderStaging() string {
	if !m.listReady {
		return styles.help.Render("Staging photos...")
	}

	var rejected string
	if len(m.rejects) > 0 {
		names := make([]string, 0, len(m.rejects))
		for _, reject := range m.rejects {
			names = append(names, fmt.Sprintf("%s (%s)", reject.Name, reject.Reason))
		}
		rejected = "\n" + styles.warn.Render(fmt.Sprintf("Rejected %d: %s", len(m.rejects), strings.Join(names, ", ")))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.remove, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.fileList.View(), rejected, helpView)
}

func (m *Model) renderConfirm() string {
	var total int64
	for _, file := range m.staged {
		total += file.Size
	}

	title := styles.title.Render(fmt.Sprintf("Upload %d photos and render a slideshow?", len(m.staged)))
	info := fmt.Sprintf("\nPhotos: %d (%s)\nSlide: %.1fs  Crossfade: %.1fs  FPS: %d\n",
		len(m.staged), shared.FormatBytes(total), m.opts.SlideSeconds, m.opts.XfadeSeconds, m.opts.FPS)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n%s", title, info, helpView)
}

func (m *Model) renderUpload() string {
	title := styles.title.Render("Uploading Photos")
	bar := m.uploadBar.ViewAs(progressPercent(m.progress))
	return fmt.Sprintf("%s\n\n%s %s\n%s\n", title, m.spin.View(), m.progress.Message, bar)
}

func (m *Model) renderRender() string {
	title := styles.title.Render("Rendering Slideshow")

	if m.progress.Phase == tasks.StartRender {
		return fmt.Sprintf("%s\n\n%s %s\n", title, m.spin.View(), m.progress.Message)
	}

	bar := m.renderBar.ViewAs(progressPercent(m.progress))
	return fmt.Sprintf("%s\n\n%s %s\n%s\n", title, m.spin.View(), m.progress.Message, bar)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}

	if m.runErr != nil {
		body := styles.err.Render(fmt.Sprintf("✗ Pipeline failed: %v", m.runErr))
		return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(helpKeys))
	}

	if m.render == nil {
		body := styles.err.Render("No result available")
		return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(helpKeys))
	}

	var title, info string
	if m.render.Status == models.RenderDone {
		title = styles.ok.Render("✓ Render Complete!")
		info = fmt.Sprintf("\nRender: %s\nPhotos: %d\nDownload: %s\n",
			m.render.RenderID, len(m.staged), m.engine.Snapshot().DownloadURL)
		helpKeys = []key.Binding{m.keys.download, m.keys.restart, m.keys.quit}
	} else {
		title = styles.err.Render("✗ Render Failed")
		info = fmt.Sprintf("\nRender: %s\n%s\n", m.render.RenderID, m.render.Error)
	}

	var saved string
	if m.saving {
		saved = "\n" + styles.help.Render("Saving...")
	} else if m.saveErr != nil {
		saved = "\n" + styles.err.Render(fmt.Sprintf("Save failed: %v", m.saveErr))
	} else if m.saved != "" {
		saved = "\n" + styles.ok.Render(fmt.Sprintf("Saved %s (%s)", m.saved, shared.FormatBytes(m.savedBytes)))
	}

	return fmt.Sprintf("%s%s%s\n\n%s", title, info, saved, m.help.ShortHelpView(helpKeys))
}

func progressPercent(update tasks.ProgressUpdate) float64 {
	if update.Total <= 0 {
		return 0
	}
	percent := float64(update.Step) / float64(update.Total)
	if percent > 1 {
		percent = 1
	}
	return percent
}
