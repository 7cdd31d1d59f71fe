// Package archive keeps copies of the files the console hands out
// (exports and backups) in a data directory.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrInvalidName is returned for names that would escape the archive directory.
var ErrInvalidName = errors.New("invalid archive name")

// Entry describes an archived file.
type Entry struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Archive handles the disk I/O for archived downloads.
type Archive struct {
	Dir string
	mu  sync.Mutex
}

// New creates the directory if needed.
func New(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Archive{Dir: dir}, nil
}

// Save writes body under name atomically: a temporary file is written first
// and renamed over the target, so readers see the old file or the new one.
func (a *Archive) Save(name string, body []byte) error {
	path, err := a.path(name)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// Read returns the content of an archived file.
func (a *Archive) Read(name string) ([]byte, error) {
	path, err := a.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// List returns archived files, newest first. Leftover temporary files are skipped.
func (a *Archive) List() ([]Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	files, err := os.ReadDir(a.Dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, file := range files {
		if file.IsDir() || strings.HasSuffix(file.Name(), ".tmp") {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: file.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	slices.SortFunc(entries, func(x, y Entry) int {
		if c := y.Modified.Compare(x.Modified); c != 0 {
			return c
		}
		return strings.Compare(x.Name, y.Name)
	})
	return entries, nil
}

func (a *Archive) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(a.Dir, name), nil
}
