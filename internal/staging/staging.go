package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

// DefaultLimit matches the backend's per-upload file cap.
const DefaultLimit = 25

// Rejection reasons reuse the backend's vocabulary where one exists.
const (
	ReasonNotAnImage = "not-an-image"
	ReasonDuplicate  = "duplicate"
	ReasonLimit      = "limit"
)

// Rejection describes a candidate file that was not staged.
type Rejection struct {
	Name   string
	Reason string
}

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
}

// IsImage reports whether the file name carries an allowed image extension.
func IsImage(name string) bool {
	return allowedExts[strings.ToLower(filepath.Ext(name))]
}

// FileID derives the stable identity for a staged file. The same name, size,
// and modification time always produce the same identity, so re-picking a
// file dedupes instead of staging twice.
func FileID(name string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s-%d-%d", name, size, modTime.UnixMilli())
}

// NewFile stats path and builds a [models.StagedFile] with derived identity.
func NewFile(path string) (models.StagedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return models.StagedFile{}, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidInput, path)
	}

	name := filepath.Base(path)
	return models.StagedFile{
		ID:      FileID(name, info.Size(), info.ModTime()),
		Name:    name,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Pick stats each path and splits the candidates into stageable files and
// rejections. Non-image extensions are rejected with the backend's
// "not-an-image" reason; unreadable paths are rejected with the error text.
// The staging cap is not enforced here, [Set.Add] owns that.
func Pick(paths []string) ([]models.StagedFile, []Rejection) {
	var files []models.StagedFile
	var rejected []Rejection

	for _, path := range paths {
		name := filepath.Base(path)
		if !IsImage(name) {
			rejected = append(rejected, Rejection{Name: name, Reason: ReasonNotAnImage})
			continue
		}

		file, err := NewFile(path)
		if err != nil {
			rejected = append(rejected, Rejection{Name: name, Reason: err.Error()})
			continue
		}

		files = append(files, file)
	}

	return files, rejected
}

// Set holds the files staged for the next upload, capped at a fixed limit.
type Set struct {
	mu    sync.Mutex
	limit int
	order []string
	files map[string]models.StagedFile
}

// NewSet creates an empty Set. A non-positive limit falls back to [DefaultLimit].
func NewSet(limit int) *Set {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Set{
		limit: limit,
		files: make(map[string]models.StagedFile),
	}
}

// Limit returns the staging cap.
func (s *Set) Limit() int { return s.limit }

// Add stages a file. Duplicates (same derived identity) and additions past
// the cap are refused with [shared.ErrDuplicateFile] and [shared.ErrStagingLimit].
func (s *Set) Add(file models.StagedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.files[file.ID]; exists {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateFile, file.Name)
	}
	if len(s.order) >= s.limit {
		return fmt.Errorf("%w: limit %d files", shared.ErrStagingLimit, s.limit)
	}

	s.files[file.ID] = file
	s.order = append(s.order, file.ID)
	return nil
}

// Remove unstages a file by identity, reporting whether it was present.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.files[id]; !exists {
		return false
	}

	delete(s.files, id)
	for i, fid := range s.order {
		if fid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the set and returns the files that were staged.
func (s *Set) Clear() []models.StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]models.StagedFile, 0, len(s.order))
	for _, id := range s.order {
		removed = append(removed, s.files[id])
	}

	s.order = nil
	s.files = make(map[string]models.StagedFile)
	return removed
}

// Get returns a staged file by identity.
func (s *Set) Get(id string) (models.StagedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	return file, ok
}

// Files returns the staged files in insertion order.
func (s *Set) Files() []models.StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]models.StagedFile, 0, len(s.order))
	for _, id := range s.order {
		files = append(files, s.files[id])
	}
	return files
}

// Len returns the number of staged files.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Remaining returns how many more files fit under the cap.
func (s *Set) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit - len(s.order)
}

// TotalSize returns the combined byte size of all staged files.
func (s *Set) TotalSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, id := range s.order {
		total += s.files[id].Size
	}
	return total
}

// SetPreview records the preview handle path on a staged file.
func (s *Set) SetPreview(id, preview string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return false
	}
	file.Preview = preview
	s.files[id] = file
	return true
}
