package media

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore keeps files in a flat local directory under generated uuid
// filenames.
type DiskStore struct {
	dir      string
	maxBytes int64
}

func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &Error{Reason: "create media dir", Err: err}
	}
	return &DiskStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *DiskStore) path(filename string) string {
	// Generated names never contain separators; Base guards pathological input.
	return filepath.Join(s.dir, filepath.Base(filename))
}

func (s *DiskStore) Save(data []byte, mediaType string) (string, error) {
	ext, err := validate(data, mediaType, s.maxBytes)
	if err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return "", &Error{Reason: "write file", Err: err}
	}
	return name, nil
}

func (s *DiskStore) Delete(filename string) error {
	err := os.Remove(s.path(filename))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrFileMissing
	}
	if err != nil {
		return &Error{Reason: "delete file", Err: err}
	}
	return nil
}

func (s *DiskStore) Exists(filename string) bool {
	_, err := os.Stat(s.path(filename))
	return err == nil
}

func (s *DiskStore) Read(filename string) ([]byte, error) {
	b, err := os.ReadFile(s.path(filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileMissing
	}
	if err != nil {
		return nil, &Error{Reason: "read file", Err: err}
	}
	return b, nil
}

// MediaTypeOf reports the MIME type the store recorded for a generated
// filename, derived from its extension.
func MediaTypeOf(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for mt, e := range extensions {
		if e == ext {
			return mt
		}
	}
	return "application/octet-stream"
}

var _ Store = (*DiskStore)(nil)
