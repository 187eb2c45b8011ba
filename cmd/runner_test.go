package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kgolebiewski95/Vibello/internal/services"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	tu "github.com/kgolebiewski95/Vibello/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			uploader := &tu.MockUploader{}
			renderer := &tu.MockRenderer{}
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
				Uploader:   uploader,
				Renderer:   renderer,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.uploader != services.Uploader(uploader) {
				t.Error("expected uploader to be set")
			}
			if runner.renderer != services.Renderer(renderer) {
				t.Error("expected renderer to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses the configured timeout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient == nil {
				t.Fatal("expected a default httpClient")
			}
			if runner.httpClient.Timeout != 30*time.Second {
				t.Errorf("expected 30s timeout from default config, got %v", runner.httpClient.Timeout)
			}
		})

		t.Run("with nil API builds one from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				API: nil,
			})

			if runner.api == nil {
				t.Fatal("expected an API service to be built")
			}
			if runner.api.BaseURL() != "http://127.0.0.1:8000" {
				t.Errorf("expected default base URL, got %s", runner.api.BaseURL())
			}
		})

		t.Run("with nil services builds them", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.uploader == nil {
				t.Error("expected an uploader to be built")
			}
			if runner.renderer == nil {
				t.Error("expected a renderer to be built")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with empty configPath", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "",
			})

			if runner.configPath != "" {
				t.Errorf("expected empty configPath, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
				continue
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "api", "upload", "render", "run", "download", "history", "preview", "tui"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("openHistory", func(t *testing.T) {
		t.Run("creates and migrates the database", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.DatabasePath = filepath.Join(t.TempDir(), "vibello.db")
			runner := NewRunner(RunnerOpts{Config: config})

			db, err := runner.openHistory()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer db.Close()

			var name string
			err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='renders'").Scan(&name)
			if err != nil {
				t.Fatalf("expected renders table to exist: %v", err)
			}
			if name != "renders" {
				t.Errorf("expected renders table, got %s", name)
			}
		})

		t.Run("is idempotent", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.DatabasePath = filepath.Join(t.TempDir(), "vibello.db")
			runner := NewRunner(RunnerOpts{Config: config})

			db, err := runner.openHistory()
			if err != nil {
				t.Fatalf("first open failed: %v", err)
			}
			db.Close()

			db, err = runner.openHistory()
			if err != nil {
				t.Fatalf("second open failed: %v", err)
			}
			db.Close()
		})

		t.Run("fails when the directory is missing", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.DatabasePath = filepath.Join(t.TempDir(), "missing", "sub", "vibello.db")
			runner := NewRunner(RunnerOpts{Config: config})

			if _, err := runner.openHistory(); err == nil {
				t.Fatal("expected error for unreachable database path")
			}
		})
	})

	t.Run("slideshowEngine", func(t *testing.T) {
		t.Run("builds once and caches", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Uploader: &tu.MockUploader{},
				Renderer: &tu.MockRenderer{},
			})

			engine, err := runner.slideshowEngine()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer engine.Close()

			again, err := runner.slideshowEngine()
			if err != nil {
				t.Fatalf("expected no error on second call, got %v", err)
			}
			if engine != again {
				t.Error("expected the cached engine on repeat calls")
			}
		})
	})
}
