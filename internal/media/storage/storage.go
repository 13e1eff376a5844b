// Package storage holds the file backends image fields read originals from
// and write variations to.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidName is returned for names that escape the storage root.
	ErrInvalidName = errors.New("invalid file name")
)

// Storage is the backend an image field persists files to. Names are
// slash-separated and relative to the backend root.
type Storage interface {
	Exists(name string) (bool, error)
	Open(name string) (io.ReadCloser, error)
	// Save writes r under name, replacing any existing file.
	Save(name string, r io.Reader) error
	Delete(name string) error
	ModTime(name string) (time.Time, error)
	// AvailableName returns name, or a suffixed variant of it that is not taken.
	AvailableName(name string) (string, error)
	Path(name string) string
	URL(name string) string
}

// FileSystem stores files below Root and serves them under BaseURL.
type FileSystem struct {
	Root    string
	BaseURL string
}

func NewFileSystem(root, baseURL string) *FileSystem {
	return &FileSystem{Root: root, BaseURL: baseURL}
}

func (s *FileSystem) resolve(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if clean == "/" || name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *FileSystem) Path(name string) string {
	p, err := s.resolve(name)
	if err != nil {
		return ""
	}
	return p
}

func (s *FileSystem) URL(name string) string {
	base := strings.TrimSuffix(s.BaseURL, "/")
	return base + "/" + (&url.URL{Path: strings.TrimPrefix(name, "/")}).EscapedPath()
}

func (s *FileSystem) Exists(name string) (bool, error) {
	p, err := s.resolve(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *FileSystem) Open(name string) (io.ReadCloser, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Save writes to a temp file next to the target and renames it into place so
// readers never observe a partial file.
func (s *FileSystem) Save(name string, r io.Reader) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("move %s into place: %w", name, err)
	}
	return nil
}

func (s *FileSystem) Delete(name string) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileSystem) ModTime(name string) (time.Time, error) {
	p, err := s.resolve(name)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (s *FileSystem) AvailableName(name string) (string, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; ; i++ {
		ok, err := s.Exists(candidate)
		if err != nil {
			return "", err
		}
		if !ok {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(i) + ext
	}
}
