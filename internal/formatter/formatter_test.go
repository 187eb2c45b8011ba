package formatter

import (
	"strings"
	"testing"

	"github.com/kgolebiewski95/Vibello/internal/models"
	th "github.com/kgolebiewski95/Vibello/internal/testing"
)

func sampleRenders() []*models.Render {
	render1 := models.NewRender(1, "job1", models.RenderJob{
		RenderID:    "render1",
		Status:      models.RenderDone,
		Progress:    100,
		DownloadURL: "http://127.0.0.1:8000/storage/renders/render1.mp4",
	}, models.RenderOptions{SlideSeconds: 3, XfadeSeconds: 0.8, FPS: 30}, 5)
	render1.SetLocalPath("/tmp/render1.mp4")

	render2 := models.NewRender(2, "job2", models.RenderJob{
		RenderID: "render2",
		Status:   models.RenderError,
		Error:    "ffmpeg exited with code 1",
	}, models.RenderOptions{}, 3)

	return []*models.Render{render1, render2}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleRenders())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Seq,RenderID,JobID,Status,Files,SlideSeconds,XfadeSeconds,FPS,DownloadURL,LocalPath,Error,CreatedAt") {
			t.Errorf("CSV missing headers, got: %s", output)
		}

		if !strings.Contains(output, "render1") {
			t.Errorf("CSV missing render1 ID")
		}
		if !strings.Contains(output, "job1") {
			t.Errorf("CSV missing render1 job ID")
		}
		if !strings.Contains(output, "done") {
			t.Errorf("CSV missing render1 status")
		}
		if !strings.Contains(output, "/tmp/render1.mp4") {
			t.Errorf("CSV missing render1 local path")
		}
		if !strings.Contains(output, "ffmpeg exited with code 1") {
			t.Errorf("CSV missing render2 error")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		renders := sampleRenders()

		t.Run("with default title", func(t *testing.T) {
			data, err := ExportToMarkdown(renders, "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, "# Render History") {
				t.Errorf("Markdown missing title")
			}

			if !strings.Contains(output, "**Renders**: 2") {
				t.Errorf("Markdown missing render count")
			}
			if !strings.Contains(output, "**Finished**: 1") {
				t.Errorf("Markdown missing finished count")
			}
			if !strings.Contains(output, "**Failed**: 1") {
				t.Errorf("Markdown missing failed count")
			}

			if !strings.Contains(output, "## Renders") {
				t.Errorf("Markdown missing renders section")
			}
			if !strings.Contains(output, "1. render1 - done, 5 files (saved to /tmp/render1.mp4) [0:11]") {
				t.Errorf("Markdown missing render1, got: %s", output)
			}
			if !strings.Contains(output, "2. render2 - error, 3 files [0:07]") {
				t.Errorf("Markdown missing render2 (no local path)")
			}
		})

		t.Run("with custom title", func(t *testing.T) {
			data, err := ExportToMarkdown(renders, "Vacation Slideshows")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			if !strings.Contains(string(data), "# Vacation Slideshows") {
				t.Errorf("Markdown missing custom title")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleRenders())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Renders: 2") {
			t.Errorf("Text missing render count")
		}

		if !strings.Contains(output, "1. render1 [done] 5 files") {
			t.Errorf("Text missing render1")
		}
		if !strings.Contains(output, "2. render2 [error] 3 files") {
			t.Errorf("Text missing render2")
		}
	})

	t.Run("ToSummaryJSON", func(t *testing.T) {
		data, err := ToSummaryJSON(sampleRenders())
		if err != nil {
			t.Fatalf("ToSummaryJSON failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, `"renders":2`) && !strings.Contains(output, `"renders": 2`) {
			t.Errorf("JSON missing renders field")
		}
		if !strings.Contains(output, `"done":1`) && !strings.Contains(output, `"done": 1`) {
			t.Errorf("JSON missing done field")
		}
		if !strings.Contains(output, `"failed":1`) && !strings.Contains(output, `"failed": 1`) {
			t.Errorf("JSON missing failed field")
		}
		if !strings.Contains(output, `"downloaded":1`) && !strings.Contains(output, `"downloaded": 1`) {
			t.Errorf("JSON missing downloaded field")
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleRenders())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, `"render1"`) {
			t.Errorf("JSON missing render1 ID")
		}
		if !strings.Contains(output, `"job1"`) {
			t.Errorf("JSON missing render1 job ID")
		}
		if !strings.Contains(output, `"ffmpeg exited with code 1"`) {
			t.Errorf("JSON missing render2 error")
		}
		if strings.Contains(output, `"local_path"`) && !strings.Contains(output, `"/tmp/render1.mp4"`) {
			t.Errorf("JSON missing render1 local path")
		}
	})
}

func TestEstimatedDuration(t *testing.T) {
	tests := []struct {
		name   string
		render *models.Render
		want   int
	}{
		{
			name: "explicit options",
			render: models.NewRender(1, "job1", models.RenderJob{RenderID: "render1"},
				models.RenderOptions{SlideSeconds: 3, XfadeSeconds: 0.8}, 5),
			want: 11800,
		},
		{
			name: "backend defaults assumed",
			render: models.NewRender(2, "job2", models.RenderJob{RenderID: "render2"},
				models.RenderOptions{}, 3),
			want: 7400,
		},
		{
			name: "single photo has no crossfade",
			render: models.NewRender(3, "job3", models.RenderJob{RenderID: "render3"},
				models.RenderOptions{SlideSeconds: 4, XfadeSeconds: 1}, 1),
			want: 4000,
		},
		{
			name: "no files",
			render: models.NewRender(4, "job4", models.RenderJob{RenderID: "render4"},
				models.RenderOptions{SlideSeconds: 3}, 0),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimatedDuration(tt.render); got != tt.want {
				t.Errorf("EstimatedDuration() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		renders := sampleRenders()

		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(renders, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.RendersFile != "render_history_renders.csv" {
				t.Errorf("Expected renders file 'render_history_renders.csv', got '%s'", result.RendersFile)
			}
			if result.SummaryFile != "render_history_summary.json" {
				t.Errorf("Expected summary file 'render_history_summary.json', got '%s'", result.SummaryFile)
			}

			th.AssertFileExists(t, result.RendersFile)
			th.AssertFileExists(t, result.SummaryFile)

			csvContent := th.MustReadFile(t, result.RendersFile)
			if !strings.Contains(csvContent, "Seq,RenderID,JobID,Status") {
				t.Errorf("CSV missing headers")
			}
			if !strings.Contains(csvContent, "render1") || !strings.Contains(csvContent, "job1") {
				t.Errorf("CSV missing render data")
			}

			summaryContent := th.MustReadFile(t, result.SummaryFile)
			if !strings.Contains(summaryContent, `"renders"`) || !strings.Contains(summaryContent, `"done"`) {
				t.Errorf("Summary JSON missing expected fields")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(renders, "vacation")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.RendersFile != "vacation_renders.csv" {
				t.Errorf("Expected 'vacation_renders.csv', got '%s'", result.RendersFile)
			}
			if result.SummaryFile != "vacation_summary.json" {
				t.Errorf("Expected 'vacation_summary.json', got '%s'", result.SummaryFile)
			}

			th.AssertFileExists(t, result.RendersFile)
			th.AssertFileExists(t, result.SummaryFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		renders := sampleRenders()

		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(renders, "", "")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "render_history" {
				t.Errorf("Expected directory 'render_history', got '%s'", result.Directory)
			}
			th.AssertDirExists(t, result.Directory)

			readmePath := result.Directory + "/README.md"
			th.AssertFileExists(t, readmePath)

			content := th.MustReadFile(t, readmePath)
			if !strings.Contains(content, "# Render History") {
				t.Errorf("Markdown missing title")
			}
			if !strings.Contains(content, "1. render1 - done, 5 files") {
				t.Errorf("Markdown missing render listing")
			}
		})

		t.Run("WithCustomDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(renders, "my_renders", "My Renders")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "my_renders" {
				t.Errorf("Expected directory 'my_renders', got '%s'", result.Directory)
			}
			th.AssertDirExists(t, result.Directory)
			th.AssertFileExists(t, result.Directory+"/README.md")

			content := th.MustReadFile(t, result.Directory+"/README.md")
			if !strings.Contains(content, "# My Renders") {
				t.Errorf("Markdown missing custom title")
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		renders := sampleRenders()

		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			filepath, err := WriteTextExport(renders, "")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}

			if filepath != "render_history.txt" {
				t.Errorf("Expected 'render_history.txt', got '%s'", filepath)
			}

			th.AssertFileExists(t, filepath)

			content := th.MustReadFile(t, filepath)
			if !strings.Contains(content, "Renders: 2") {
				t.Errorf("Text missing render count")
			}
			if !strings.Contains(content, "1. render1 [done] 5 files") {
				t.Errorf("Text missing render listing")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			filepath, err := WriteTextExport(renders, "my_history.txt")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}

			if filepath != "my_history.txt" {
				t.Errorf("Expected 'my_history.txt', got '%s'", filepath)
			}

			th.AssertFileExists(t, filepath)
		})
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		renders := sampleRenders()

		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			filepath, err := WriteJSONExport(renders, "")
			if err != nil {
				t.Fatalf("WriteJSONExport failed: %v", err)
			}

			if filepath != "render_history.json" {
				t.Errorf("Expected 'render_history.json', got '%s'", filepath)
			}

			th.AssertFileExists(t, filepath)

			content := th.MustReadFile(t, filepath)
			if !strings.Contains(content, `"render1"`) {
				t.Errorf("JSON missing render ID")
			}
			if !strings.Contains(content, `"job1"`) {
				t.Errorf("JSON missing job ID")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			filepath, err := WriteJSONExport(renders, "my_history.json")
			if err != nil {
				t.Fatalf("WriteJSONExport failed: %v", err)
			}

			if filepath != "my_history.json" {
				t.Errorf("Expected 'my_history.json', got '%s'", filepath)
			}

			th.AssertFileExists(t, filepath)
		})
	})
}
