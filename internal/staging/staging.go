// Package staging writes incoming multipart parts to a local directory before they are
// forwarded to the media store, and removes them afterwards.
package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediarelay/internal/domain"
)

// Stager owns the staging directory.
type Stager struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// Option customises a Stager.
type Option func(*Stager)

// WithClock overrides the timestamp source used to name staged files.
func WithClock(now func() time.Time) Option {
	return func(s *Stager) { s.now = now }
}

// NewStager creates dir if absent and returns a Stager writing into it.
// maxBytes caps the size of a single staged file; zero means no cap.
func NewStager(dir string, maxBytes int64, opts ...Option) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging dir %q: %w", dir, err)
	}
	s := &Stager{dir: dir, maxBytes: maxBytes, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the staging directory.
func (s *Stager) Dir() string {
	return s.dir
}

// StagedFile is a part written to local disk. Release must be called once the file is
// no longer needed; it is safe to call more than once.
type StagedFile struct {
	Path         string
	OriginalName string
	Size         int64

	once sync.Once
}

// Release unlinks the staged copy. A file that is already gone is not an error. Only
// the first call attempts the removal and can report a failure.
func (f *StagedFile) Release() error {
	var err error
	f.once.Do(func() {
		if rmErr := os.Remove(f.Path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = fmt.Errorf("removing staged file %q: %w", f.Path, rmErr)
		}
	})
	return err
}

// Stage copies the part described by header to <dir>/<unix-nanos>_<name>.
func (s *Stager) Stage(header *multipart.FileHeader) (*StagedFile, error) {
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", domain.ErrFileTooLarge, header.Filename, header.Size)
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %q: %w", header.Filename, err)
	}
	defer func() { _ = src.Close() }()

	name := sanitizeName(header.Filename)
	dst, path, err := s.create(name)
	if err != nil {
		return nil, err
	}

	staged := &StagedFile{Path: path, OriginalName: header.Filename}

	var r io.Reader = src
	if s.maxBytes > 0 {
		r = io.LimitReader(src, s.maxBytes+1)
	}
	n, copyErr := io.Copy(dst, r)
	closeErr := dst.Close()
	if copyErr == nil && s.maxBytes > 0 && n > s.maxBytes {
		copyErr = fmt.Errorf("%w: %s", domain.ErrFileTooLarge, header.Filename)
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = staged.Release()
		if errors.Is(copyErr, domain.ErrFileTooLarge) {
			return nil, copyErr
		}
		return nil, fmt.Errorf("writing staged file %q: %w", path, copyErr)
	}

	staged.Size = n
	return staged, nil
}

// StageAll stages every header in order. On failure, files staged so far are released.
func (s *Stager) StageAll(headers []*multipart.FileHeader) ([]*StagedFile, error) {
	files := make([]*StagedFile, 0, len(headers))
	for _, h := range headers {
		f, err := s.Stage(h)
		if err != nil {
			_ = ReleaseAll(files)
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ReleaseAll releases every file and returns the joined release errors.
func ReleaseAll(files []*StagedFile) error {
	var errs []error
	for _, f := range files {
		if err := f.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// create opens a fresh file named after the current timestamp. O_EXCL guarantees two
// requests staging the same name in the same instant never share a path.
func (s *Stager) create(name string) (*os.File, string, error) {
	ts := s.now().UnixNano()
	for attempt := 0; attempt < 5; attempt++ {
		path := filepath.Join(s.dir, fmt.Sprintf("%d_%s", ts+int64(attempt), name))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("creating staged file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("creating staged file for %q: name collision", name)
}

// sanitizeName strips any directory component a client may have put in the filename.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
