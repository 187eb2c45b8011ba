// package formatter provides functions to export render history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

// Backend defaults assumed when a render was submitted without explicit
// options. They mirror the server's clamp defaults.
const (
	defaultSlideSeconds = 3.0
	defaultXfadeSeconds = 0.8
)

// EstimatedDuration approximates a finished slideshow's length in
// milliseconds: each photo holds for the slide duration and consecutive
// slides overlap by the crossfade.
func EstimatedDuration(render *models.Render) int {
	n := render.FileCount()
	if n == 0 {
		return 0
	}

	slide := render.SlideSeconds()
	if slide == 0 {
		slide = defaultSlideSeconds
	}
	xfade := render.XfadeSeconds()
	if xfade == 0 {
		xfade = defaultXfadeSeconds
	}

	total := float64(n)*slide - float64(n-1)*xfade
	if total < 0 {
		total = 0
	}
	return int(total*1000 + 0.5)
}

// HistorySummary captures aggregate counts over exported render history.
type HistorySummary struct {
	Renders    int    `json:"renders"`
	Done       int    `json:"done"`
	Failed     int    `json:"failed"`
	Downloaded int    `json:"downloaded"`
	ExportedAt string `json:"exported_at"`
}

// Summarize aggregates status counts for a set of render history entries.
func Summarize(renders []*models.Render) HistorySummary {
	summary := HistorySummary{
		Renders:    len(renders),
		ExportedAt: time.Now().Format(time.RFC3339),
	}

	for _, render := range renders {
		switch render.Status() {
		case models.RenderDone:
			summary.Done++
		case models.RenderError:
			summary.Failed++
		}
		if render.LocalPath() != "" {
			summary.Downloaded++
		}
	}

	return summary
}

// ExportToCSV converts render history to CSV format with columns: Seq, RenderID, JobID, Status, Files, SlideSeconds, XfadeSeconds, FPS, DownloadURL, LocalPath, Error, CreatedAt
func ExportToCSV(renders []*models.Render) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Seq", "RenderID", "JobID", "Status", "Files", "SlideSeconds", "XfadeSeconds", "FPS", "DownloadURL", "LocalPath", "Error", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, render := range renders {
		record := []string{
			strconv.Itoa(render.Sequence()),
			render.RenderID(),
			render.JobID(),
			string(render.Status()),
			strconv.Itoa(render.FileCount()),
			strconv.FormatFloat(render.SlideSeconds(), 'f', -1, 64),
			strconv.FormatFloat(render.XfadeSeconds(), 'f', -1, 64),
			strconv.Itoa(render.FPS()),
			render.DownloadURL(),
			render.LocalPath(),
			render.ErrorText(),
			render.CreatedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts render history to Markdown format with an optional title
func ExportToMarkdown(renders []*models.Render, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Render History"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	summary := Summarize(renders)
	buf.WriteString(fmt.Sprintf("**Renders**: %d\n", summary.Renders))
	buf.WriteString(fmt.Sprintf("**Finished**: %d\n", summary.Done))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", summary.Failed))

	buf.WriteString("## Renders\n\n")
	for i, render := range renders {
		duration := shared.FormatDuration(EstimatedDuration(render))
		localPart := ""
		if render.LocalPath() != "" {
			localPart = fmt.Sprintf(" (saved to %s)", render.LocalPath())
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s, %d files%s [%s]\n", i+1, render.RenderID(), render.Status(), render.FileCount(), localPart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts render history to plain text format
func ExportToText(renders []*models.Render) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Renders: %d\n\n", len(renders)))

	for i, render := range renders {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] %d files\n", i+1, render.RenderID(), render.Status(), render.FileCount()))
	}

	return buf.Bytes(), nil
}

// ToSummaryJSON generates a JSON representation of aggregate history counts (without per-render rows)
func ToSummaryJSON(renders []*models.Render) ([]byte, error) {
	return shared.MarshalJSON(Summarize(renders), true)
}

// RenderRow is the serializable view of one history entry. Render keeps its
// fields unexported, so exports go through this flattened form.
type RenderRow struct {
	Seq          int     `json:"seq"`
	RenderID     string  `json:"render_id"`
	JobID        string  `json:"job_id"`
	Status       string  `json:"status"`
	Files        int     `json:"files"`
	SlideSeconds float64 `json:"slide_seconds,omitempty"`
	XfadeSeconds float64 `json:"xfade_seconds,omitempty"`
	FPS          int     `json:"fps,omitempty"`
	DownloadURL  string  `json:"download_url,omitempty"`
	LocalPath    string  `json:"local_path,omitempty"`
	Error        string  `json:"error,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// NewRenderRow flattens a render history entry for serialization.
func NewRenderRow(render *models.Render) RenderRow {
	return RenderRow{
		Seq:          render.Sequence(),
		RenderID:     render.RenderID(),
		JobID:        render.JobID(),
		Status:       string(render.Status()),
		Files:        render.FileCount(),
		SlideSeconds: render.SlideSeconds(),
		XfadeSeconds: render.XfadeSeconds(),
		FPS:          render.FPS(),
		DownloadURL:  render.DownloadURL(),
		LocalPath:    render.LocalPath(),
		Error:        render.ErrorText(),
		CreatedAt:    render.CreatedAt().Format(time.RFC3339),
	}
}

// ExportToJSON converts render history to pretty-printed JSON
func ExportToJSON(renders []*models.Render) ([]byte, error) {
	rows := make([]RenderRow, 0, len(renders))
	for _, render := range renders {
		rows = append(rows, NewRenderRow(render))
	}
	return shared.MarshalJSON(rows, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	RendersFile string
	SummaryFile string
}

// WriteCSVExport exports render history to CSV format with an accompanying summary JSON file.
//
// Defaults to "render_history" as the base filename & creates {base}_renders.csv and {base}_summary.json
func WriteCSVExport(renders []*models.Render, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "render_history"
	}

	csvData, err := ExportToCSV(renders)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	rendersFile := baseFilepath + "_renders.csv"
	if err := os.WriteFile(rendersFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	summaryJSON, err := ToSummaryJSON(renders)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary JSON: %w", err)
	}

	summaryFile := baseFilepath + "_summary.json"
	if err := os.WriteFile(summaryFile, summaryJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	return &CSVExportResult{
		RendersFile: rendersFile,
		SummaryFile: summaryFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports render history to Markdown format in a dedicated directory.
//
// Directory name defaults to "render_history".
// Creates a directory structure: {dir}/README.md
func WriteMarkdownExport(renders []*models.Render, outputDir string, title string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "render_history"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	mdData, err := ExportToMarkdown(renders, title)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports render history to plain text format.
//
// Defaults to render_history.txt as the filename.
func WriteTextExport(renders []*models.Render, filepath string) (string, error) {
	if filepath == "" {
		filepath = "render_history.txt"
	}

	textData, err := ExportToText(renders)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport exports render history to a JSON file.
//
// Defaults to render_history.json as the filename.
func WriteJSONExport(renders []*models.Render, filepath string) (string, error) {
	if filepath == "" {
		filepath = "render_history.json"
	}

	jsonData, err := ExportToJSON(renders)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
