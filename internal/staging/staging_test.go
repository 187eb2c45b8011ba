package staging

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
	tu "github.com/kgolebiewski95/Vibello/internal/testing"
)

func TestFileID(t *testing.T) {
	mod := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("is deterministic", func(t *testing.T) {
		a := FileID("beach.jpg", 1024, mod)
		b := FileID("beach.jpg", 1024, mod)
		if a != b {
			t.Errorf("expected identical IDs, got %s and %s", a, b)
		}
	})

	t.Run("varies with each component", func(t *testing.T) {
		base := FileID("beach.jpg", 1024, mod)

		if FileID("beach2.jpg", 1024, mod) == base {
			t.Error("expected different ID for different name")
		}
		if FileID("beach.jpg", 2048, mod) == base {
			t.Error("expected different ID for different size")
		}
		if FileID("beach.jpg", 1024, mod.Add(time.Second)) == base {
			t.Error("expected different ID for different modtime")
		}
	})

	t.Run("uses millisecond modtime", func(t *testing.T) {
		got := FileID("beach.jpg", 1024, mod)
		want := fmt.Sprintf("beach.jpg-1024-%d", mod.UnixMilli())
		if got != want {
			t.Errorf("FileID() = %s, want %s", got, want)
		}
	})
}

func TestIsImage(t *testing.T) {
	tc := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"photo.png", true},
		{"photo.webp", true},
		{"photo.bmp", true},
		{"PHOTO.JPG", true},
		{"notes.txt", false},
		{"movie.mp4", false},
		{"noext", false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImage(tt.name); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNewFile(t *testing.T) {
	t.Run("derives identity from stat", func(t *testing.T) {
		dir := t.TempDir()
		path := tu.WriteImageFixture(t, dir, "beach.jpg", 2048)

		file, err := NewFile(path)
		if err != nil {
			t.Fatalf("NewFile() error = %v", err)
		}

		if file.Name != "beach.jpg" {
			t.Errorf("expected name beach.jpg, got %s", file.Name)
		}
		if file.Size != 2048 {
			t.Errorf("expected size 2048, got %d", file.Size)
		}
		if file.ID != FileID(file.Name, file.Size, file.ModTime) {
			t.Errorf("expected derived ID, got %s", file.ID)
		}
	})

	t.Run("fails on missing file", func(t *testing.T) {
		if _, err := NewFile("/nonexistent/beach.jpg"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("fails on directory", func(t *testing.T) {
		if _, err := NewFile(t.TempDir()); err == nil {
			t.Error("expected error for directory")
		}
	})
}

func TestPick(t *testing.T) {
	t.Run("filters non-images with backend reason", func(t *testing.T) {
		dir := t.TempDir()
		jpg := tu.WriteImageFixture(t, dir, "a.jpg", 100)
		png := tu.WriteImageFixture(t, dir, "b.png", 100)
		txt := tu.WriteImageFixture(t, dir, "notes.txt", 100)

		files, rejected := Pick([]string{jpg, png, txt})

		if len(files) != 2 {
			t.Fatalf("expected 2 staged files, got %d", len(files))
		}
		if len(rejected) != 1 {
			t.Fatalf("expected 1 rejection, got %d", len(rejected))
		}
		if rejected[0].Name != "notes.txt" || rejected[0].Reason != ReasonNotAnImage {
			t.Errorf("unexpected rejection: %+v", rejected[0])
		}
	})

	t.Run("rejects unreadable paths without failing the rest", func(t *testing.T) {
		dir := t.TempDir()
		jpg := tu.WriteImageFixture(t, dir, "a.jpg", 100)

		files, rejected := Pick([]string{jpg, "/nonexistent/b.jpg"})

		if len(files) != 1 {
			t.Fatalf("expected 1 staged file, got %d", len(files))
		}
		if len(rejected) != 1 {
			t.Fatalf("expected 1 rejection, got %d", len(rejected))
		}
		if rejected[0].Name != "b.jpg" {
			t.Errorf("expected rejection for b.jpg, got %s", rejected[0].Name)
		}
	})
}

func newTestFile(name string, size int64) models.StagedFile {
	mod := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.StagedFile{
		ID:      FileID(name, size, mod),
		Name:    name,
		Path:    "/photos/" + name,
		Size:    size,
		ModTime: mod,
	}
}

func TestSet(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		t.Run("stages files in insertion order", func(t *testing.T) {
			set := NewSet(0)

			for _, name := range []string{"c.jpg", "a.jpg", "b.jpg"} {
				if err := set.Add(newTestFile(name, 100)); err != nil {
					t.Fatalf("Add(%s) error = %v", name, err)
				}
			}

			files := set.Files()
			if len(files) != 3 {
				t.Fatalf("expected 3 files, got %d", len(files))
			}
			if files[0].Name != "c.jpg" || files[1].Name != "a.jpg" || files[2].Name != "b.jpg" {
				t.Errorf("expected insertion order, got %v", []string{files[0].Name, files[1].Name, files[2].Name})
			}
		})

		t.Run("refuses duplicates", func(t *testing.T) {
			set := NewSet(0)
			file := newTestFile("a.jpg", 100)

			if err := set.Add(file); err != nil {
				t.Fatalf("first Add() error = %v", err)
			}

			err := set.Add(file)
			if !errors.Is(err, shared.ErrDuplicateFile) {
				t.Errorf("expected ErrDuplicateFile, got %v", err)
			}
			if set.Len() != 1 {
				t.Errorf("expected 1 staged file, got %d", set.Len())
			}
		})

		t.Run("enforces the cap at 25", func(t *testing.T) {
			set := NewSet(0)

			var refused int
			for i := 0; i < 30; i++ {
				err := set.Add(newTestFile(fmt.Sprintf("photo_%02d.jpg", i), 100))
				if errors.Is(err, shared.ErrStagingLimit) {
					refused++
				} else if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			if set.Len() != 25 {
				t.Errorf("expected 25 staged files, got %d", set.Len())
			}
			if refused != 5 {
				t.Errorf("expected 5 refusals, got %d", refused)
			}
			if set.Remaining() != 0 {
				t.Errorf("expected 0 remaining, got %d", set.Remaining())
			}
		})
	})

	t.Run("Remove", func(t *testing.T) {
		set := NewSet(0)
		file := newTestFile("a.jpg", 100)
		set.Add(file)
		set.Add(newTestFile("b.jpg", 100))

		if !set.Remove(file.ID) {
			t.Error("expected Remove to report presence")
		}
		if set.Len() != 1 {
			t.Errorf("expected 1 file after remove, got %d", set.Len())
		}
		if set.Remove(file.ID) {
			t.Error("expected second Remove to be a no-op")
		}
		if set.Remove("unknown") {
			t.Error("expected Remove of unknown id to be a no-op")
		}
	})

	t.Run("Clear returns removed files", func(t *testing.T) {
		set := NewSet(0)
		set.Add(newTestFile("a.jpg", 100))
		set.Add(newTestFile("b.jpg", 200))

		removed := set.Clear()
		if len(removed) != 2 {
			t.Errorf("expected 2 removed files, got %d", len(removed))
		}
		if set.Len() != 0 {
			t.Errorf("expected empty set, got %d", set.Len())
		}
		if err := set.Add(newTestFile("a.jpg", 100)); err != nil {
			t.Errorf("expected re-add after clear to work, got %v", err)
		}
	})

	t.Run("TotalSize sums staged bytes", func(t *testing.T) {
		set := NewSet(0)
		set.Add(newTestFile("a.jpg", 100))
		set.Add(newTestFile("b.jpg", 250))

		if got := set.TotalSize(); got != 350 {
			t.Errorf("expected total 350, got %d", got)
		}
	})

	t.Run("SetPreview records the handle", func(t *testing.T) {
		set := NewSet(0)
		file := newTestFile("a.jpg", 100)
		set.Add(file)

		if !set.SetPreview(file.ID, "/previews/abc.jpg") {
			t.Fatal("expected SetPreview to find the file")
		}

		got, _ := set.Get(file.ID)
		if got.Preview != "/previews/abc.jpg" {
			t.Errorf("expected preview path recorded, got %s", got.Preview)
		}

		if set.SetPreview("unknown", "/previews/x.jpg") {
			t.Error("expected SetPreview of unknown id to report false")
		}
	})
}
