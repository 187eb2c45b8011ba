// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/kgolebiewski95/Vibello/internal/models"
)

// MockUploader is a test double for [services.Uploader].
//
// Unset function fields fall back to benign empty results.
type MockUploader struct {
	UploadFunc func(ctx context.Context, files []models.StagedFile, onProgress func(int)) (*models.UploadJob, error)
	JobFunc    func(ctx context.Context, jobID string) (*models.UploadJob, error)
}

func (m *MockUploader) Upload(ctx context.Context, files []models.StagedFile, onProgress func(int)) (*models.UploadJob, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, files, onProgress)
	}
	return &models.UploadJob{JobID: "mock-job", SavedCount: len(files)}, nil
}

func (m *MockUploader) Job(ctx context.Context, jobID string) (*models.UploadJob, error) {
	if m.JobFunc != nil {
		return m.JobFunc(ctx, jobID)
	}
	return &models.UploadJob{JobID: jobID}, nil
}

// MockRenderer is a test double for [services.Renderer].
type MockRenderer struct {
	StartFunc    func(ctx context.Context, jobID string, opts models.RenderOptions) (*models.RenderJob, error)
	StatusFunc   func(ctx context.Context, renderID string) (*models.RenderJob, error)
	WatchFunc    func(ctx context.Context, renderID string, onUpdate func(models.RenderJob)) (*models.RenderJob, error)
	ResolveFunc  func(raw string) string
	DownloadFunc func(ctx context.Context, downloadURL, dest string) (int64, error)
}

func (m *MockRenderer) Start(ctx context.Context, jobID string, opts models.RenderOptions) (*models.RenderJob, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, jobID, opts)
	}
	return &models.RenderJob{RenderID: "mock-render", Status: models.RenderQueued}, nil
}

func (m *MockRenderer) Status(ctx context.Context, renderID string) (*models.RenderJob, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, renderID)
	}
	return &models.RenderJob{RenderID: renderID, Status: models.RenderDone, Progress: 100}, nil
}

func (m *MockRenderer) Watch(ctx context.Context, renderID string, onUpdate func(models.RenderJob)) (*models.RenderJob, error) {
	if m.WatchFunc != nil {
		return m.WatchFunc(ctx, renderID, onUpdate)
	}
	final := models.RenderJob{RenderID: renderID, Status: models.RenderDone, Progress: 100}
	if onUpdate != nil {
		onUpdate(final)
	}
	return &final, nil
}

func (m *MockRenderer) ResolveDownloadURL(raw string) string {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(raw)
	}
	return raw
}

func (m *MockRenderer) Download(ctx context.Context, downloadURL, dest string) (int64, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, downloadURL, dest)
	}
	return 0, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// WriteImageFixture writes size bytes of repeating content to dir/name and
// returns the full path. The staging layer only inspects names and sizes, so
// the payload does not need to decode as a real image.
func WriteImageFixture(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, size), 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
	return path
}
