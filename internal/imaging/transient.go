package imaging

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// TempScope owns the transient files created while preparing one image for OCR.
//
// Every file created through the scope is removed by Cleanup, which callers
// defer immediately after constructing the scope. Files that are superseded
// by a later preprocessing step can be released early with Release.
//
// Removal failures are ignored; a file that vanished on its own is not an error.
type TempScope struct {
	mu    sync.Mutex
	dir   string
	files []string

	// OnRemove, when set, is called for every removal attempt with the
	// path and the removal error (nil on success).
	OnRemove func(path string, err error)
}

// NewTempScope creates a scope that writes its files to dir.
// An empty dir selects the system temporary directory.
func NewTempScope(dir string) *TempScope {
	return &TempScope{dir: dir}
}

// WritePNG encodes img as PNG into a new transient file and returns its path.
//
// The file is registered with the scope before encoding, so a failed encode
// still leaves nothing behind once Cleanup runs.
func (s *TempScope) WritePNG(img image.Image, prefix string) (string, error) {
	f, err := os.CreateTemp(s.dir, prefix+"-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	s.track(path)

	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp image: %w", err)
	}
	return path, nil
}

// Files returns the paths currently owned by the scope.
func (s *TempScope) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// Release removes a single owned file. Paths the scope does not own are
// left untouched, so passing the caller's input image is harmless.
func (s *TempScope) Release(path string) {
	s.mu.Lock()
	idx := -1
	for i, p := range s.files {
		if p == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.files = append(s.files[:idx], s.files[idx+1:]...)
	s.mu.Unlock()

	s.remove(path)
}

// Cleanup removes every file still owned by the scope. Safe to call more than once.
func (s *TempScope) Cleanup() {
	s.mu.Lock()
	files := s.files
	s.files = nil
	s.mu.Unlock()

	for _, p := range files {
		s.remove(p)
	}
}

func (s *TempScope) track(path string) {
	s.mu.Lock()
	s.files = append(s.files, path)
	s.mu.Unlock()
}

func (s *TempScope) remove(path string) {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		err = nil
	}
	if s.OnRemove != nil {
		s.OnRemove(path, err)
	}
}
