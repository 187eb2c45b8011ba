package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

// Gallery is the view of the staging area the gallery serves. The slideshow
// engine satisfies it.
type Gallery interface {
	StagedFiles() []models.StagedFile
	PreviewPath(id string) (string, bool)
}

// GalleryHandler serves the staged photo grid and the preview images backing
// it. Implements the Handler interface for registration with a Router.
type GalleryHandler struct {
	gallery Gallery
	limit   int
	logger  *log.Logger
}

// NewGalleryHandler creates a gallery handler over the given staging view.
// limit is the staging cap shown on the page.
func NewGalleryHandler(gallery Gallery, limit int, logger *log.Logger) *GalleryHandler {
	return &GalleryHandler{
		gallery: gallery,
		limit:   limit,
		logger:  logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *GalleryHandler) Routes() []string {
	return []string{"/", "/previews/", "/health"}
}

// ServeHTTP dispatches gallery requests by path.
//
// The "/" pattern also catches unregistered paths, so unknown ones 404 here.
func (h *GalleryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/health":
		h.serveHealth(w)
	case strings.HasPrefix(r.URL.Path, "/previews/"):
		h.servePreview(w, r)
	case r.URL.Path == "/":
		h.serveIndex(w)
	default:
		http.NotFound(w, r)
	}
}

func (h *GalleryHandler) serveHealth(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status": "ok"}`)
}

func (h *GalleryHandler) servePreview(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/previews/")
	path, ok := h.gallery.PreviewPath(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, path)
}

func (h *GalleryHandler) serveIndex(w http.ResponseWriter) {
	staged := h.gallery.StagedFiles()

	data := galleryData{
		Limit: h.limit,
		Files: make([]galleryFile, 0, len(staged)),
	}
	for _, file := range staged {
		data.Files = append(data.Files, galleryFile{
			ID:   file.ID,
			Name: file.Name,
			Size: shared.FormatBytes(file.Size),
		})
	}

	var buf bytes.Buffer
	if err := galleryTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render gallery page", "error", err)
		http.Error(w, "Failed to render gallery", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type galleryFile struct {
	ID   string
	Name string
	Size string
}

type galleryData struct {
	Files []galleryFile
	Limit int
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Vibello Staged Photos</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               margin: 0; padding: 2rem; background: #f5f5f5; }
        h1 { margin: 0 0 0.25rem 0; }
        p { color: #666; margin: 0 0 1.5rem 0; }
        .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(180px, 1fr)); gap: 1rem; }
        figure { margin: 0; background: white; padding: 0.5rem; border-radius: 8px;
                 box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        img { width: 100%; height: 140px; object-fit: cover; border-radius: 4px; }
        figcaption { color: #666; font-size: 0.8rem; margin-top: 0.5rem;
                     overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
        .empty { color: #999; }
    </style>
</head>
<body>
    <h1>Vibello</h1>
    <p>{{len .Files}} of {{.Limit}} photos staged</p>
    {{if .Files}}
    <div class="grid">
        {{range .Files}}
        <figure>
            <img src="/previews/{{.ID}}" alt="{{.Name}}">
            <figcaption>{{.Name}} ({{.Size}})</figcaption>
        </figure>
        {{end}}
    </div>
    {{else}}
    <p class="empty">Nothing staged yet. Add photos with the stage command or the TUI.</p>
    {{end}}
</body>
</html>
`))
