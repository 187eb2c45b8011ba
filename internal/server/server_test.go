package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

type fakeGallery struct {
	files    []models.StagedFile
	previews map[string]string
}

func (g *fakeGallery) StagedFiles() []models.StagedFile { return g.files }

func (g *fakeGallery) PreviewPath(id string) (string, bool) {
	path, ok := g.previews[id]
	return path, ok
}

func newGalleryServer(t *testing.T, gallery Gallery) *httptest.Server {
	t.Helper()

	handler := NewGalleryHandler(gallery, 25, shared.NewLogger(io.Discard))
	router := NewBasicRouter()
	router.Use(NoStore())
	router.Handler(handler)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func mustGet(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, string(body)
}

func TestGalleryHandler(t *testing.T) {
	t.Run("renders the staged grid", func(t *testing.T) {
		gallery := &fakeGallery{
			files: []models.StagedFile{
				{ID: "a", Name: "beach.jpg", Size: 2048},
				{ID: "b", Name: "sunset.png", Size: 4096},
			},
		}
		srv := newGalleryServer(t, gallery)

		resp, body := mustGet(t, srv.URL+"/")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected HTML content type, got %q", ct)
		}
		if resp.Header.Get("Cache-Control") != "no-store" {
			t.Errorf("expected no-store cache control, got %q", resp.Header.Get("Cache-Control"))
		}

		if !strings.Contains(body, "2 of 25 photos staged") {
			t.Errorf("page missing staged count, got: %s", body)
		}
		if !strings.Contains(body, "beach.jpg") || !strings.Contains(body, "sunset.png") {
			t.Errorf("page missing staged file names")
		}
		if !strings.Contains(body, `/previews/a`) || !strings.Contains(body, `/previews/b`) {
			t.Errorf("page missing preview image links")
		}
	})

	t.Run("escapes file names", func(t *testing.T) {
		gallery := &fakeGallery{
			files: []models.StagedFile{
				{ID: "x", Name: "<script>alert(1)</script>.jpg", Size: 128},
			},
		}
		srv := newGalleryServer(t, gallery)

		_, body := mustGet(t, srv.URL+"/")
		if strings.Contains(body, "<script>alert(1)</script>") {
			t.Error("page contains unescaped file name")
		}
		if !strings.Contains(body, "&lt;script&gt;") {
			t.Error("page missing escaped file name")
		}
	})

	t.Run("shows an empty state", func(t *testing.T) {
		srv := newGalleryServer(t, &fakeGallery{})

		resp, body := mustGet(t, srv.URL+"/")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "Nothing staged yet") {
			t.Errorf("page missing empty state, got: %s", body)
		}
	})

	t.Run("serves preview bytes", func(t *testing.T) {
		dir := t.TempDir()
		previewPath := filepath.Join(dir, "preview.jpg")
		if err := os.WriteFile(previewPath, []byte("jpeg bytes"), 0644); err != nil {
			t.Fatalf("failed to write preview fixture: %v", err)
		}

		gallery := &fakeGallery{
			files:    []models.StagedFile{{ID: "photo1", Name: "beach.jpg", Size: 10}},
			previews: map[string]string{"photo1": previewPath},
		}
		srv := newGalleryServer(t, gallery)

		resp, body := mustGet(t, srv.URL+"/previews/photo1")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if body != "jpeg bytes" {
			t.Errorf("expected preview bytes, got %q", body)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/jpeg") {
			t.Errorf("expected image/jpeg content type, got %q", ct)
		}
	})

	t.Run("unknown preview returns 404", func(t *testing.T) {
		srv := newGalleryServer(t, &fakeGallery{})

		resp, _ := mustGet(t, srv.URL+"/previews/nope")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown path returns 404", func(t *testing.T) {
		srv := newGalleryServer(t, &fakeGallery{})

		resp, _ := mustGet(t, srv.URL+"/wat")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("reports health", func(t *testing.T) {
		srv := newGalleryServer(t, &fakeGallery{})

		resp, body := mustGet(t, srv.URL+"/health")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, `"status": "ok"`) {
			t.Errorf("expected health payload, got %q", body)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("filters methods", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET", "/only", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		srv := httptest.NewServer(router)
		t.Cleanup(srv.Close)

		resp, err := http.Post(srv.URL+"/only", "text/plain", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405 for POST, got %d", resp.StatusCode)
		}

		getResp, _ := mustGet(t, srv.URL+"/only")
		if getResp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200 for GET, got %d", getResp.StatusCode)
		}
	})

	t.Run("applies middleware in registration order", func(t *testing.T) {
		var order []string
		record := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(RequestLogger(shared.NewLogger(io.Discard)))
		router.Use(record("first"), record("second"))
		router.Handle("GET", "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		srv := httptest.NewServer(router)
		t.Cleanup(srv.Close)

		resp, _ := mustGet(t, srv.URL+"/")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}

		want := []string{"first", "second", "handler"}
		if len(order) != len(want) {
			t.Fatalf("expected %d middleware calls, got %d", len(want), len(order))
		}
		for i := range want {
			if order[i] != want[i] {
				t.Errorf("middleware order[%d] = %s, want %s", i, order[i], want[i])
			}
		}
	})
}
