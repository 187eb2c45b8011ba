package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/kgolebiewski95/Vibello/internal/shared"
)

// Registry allocates local preview handles for staged photos and guarantees
// their release. A handle is a copy of the source image under a
// registry-owned directory; the preview gallery serves straight from it, so
// previews stay valid even when the source file moves.
//
// Every Create is balanced by exactly one effective Release: releasing an
// unknown or already-released identity is a no-op, and ReleaseAll leaves the
// registry owning no files.
type Registry struct {
	mu      sync.Mutex
	dir     string
	owned   bool
	handles map[string]string
}

// NewRegistry creates a Registry rooted at dir. An empty dir allocates a
// temporary directory that Destroy removes again.
func NewRegistry(dir string) (*Registry, error) {
	owned := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "vibello-previews-")
		if err != nil {
			return nil, fmt.Errorf("failed to create preview directory: %w", err)
		}
		dir = tmp
		owned = true
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}

	return &Registry{
		dir:     dir,
		owned:   owned,
		handles: make(map[string]string),
	}, nil
}

// Dir returns the directory holding the preview files.
func (r *Registry) Dir() string { return r.dir }

// Create allocates a preview handle for the staged file identity, copying the
// source image into the registry directory. Creating over an existing handle
// releases the old one first.
func (r *Registry) Create(id, sourcePath string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	name := shared.GenerateID() + filepath.Ext(sourcePath)
	path := filepath.Join(r.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create preview: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to copy preview: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close preview: %w", err)
	}

	r.mu.Lock()
	if old, exists := r.handles[id]; exists {
		os.Remove(old)
	}
	r.handles[id] = path
	r.mu.Unlock()

	return path, nil
}

// Get returns the preview path for a staged file identity.
func (r *Registry) Get(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, ok := r.handles[id]
	return path, ok
}

// Release frees the preview handle for the identity. Unknown identities are
// a no-op, so double release is safe.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	path, ok := r.handles[id]
	if ok {
		delete(r.handles, id)
	}
	r.mu.Unlock()

	if ok {
		os.Remove(path)
	}
}

// ReleaseAll frees every outstanding handle.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	paths := make([]string, 0, len(r.handles))
	for _, path := range r.handles {
		paths = append(paths, path)
	}
	r.handles = make(map[string]string)
	r.mu.Unlock()

	for _, path := range paths {
		os.Remove(path)
	}
}

// Len returns the number of outstanding handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Destroy releases all handles and removes the registry directory when the
// registry allocated it.
func (r *Registry) Destroy() error {
	r.ReleaseAll()
	if r.owned {
		if err := os.RemoveAll(r.dir); err != nil {
			return fmt.Errorf("failed to remove preview directory: %w", err)
		}
	}
	return nil
}
