// Package media holds the blob store for ad images and avatars. Files are
// written outside database transactions; callers pair every write or delete
// with transaction hooks so the store converges with what the database
// durably records.
package media

import (
	"errors"
	"fmt"
)

// ErrFileMissing reports a delete or read of a filename the store does not
// hold. For deletes it is harmless: the file is gone either way.
var ErrFileMissing = errors.New("media: file missing")

// Error wraps media validation and I/O failures (unsupported type, size cap,
// store errors).
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media: %s: %v", e.Reason, e.Err)
	}
	return "media: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Store abstracts where image bytes live. Save generates and returns a
// unique filename.
type Store interface {
	Save(data []byte, mediaType string) (string, error)
	Delete(filename string) error
	Exists(filename string) bool
	Read(filename string) ([]byte, error)
}

// extensions maps the accepted image MIME types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// validate rejects unsupported MIME types and oversized or empty payloads,
// returning the extension for the type.
func validate(data []byte, mediaType string, maxBytes int64) (string, error) {
	ext, ok := extensions[mediaType]
	if !ok {
		return "", &Error{Reason: "unsupported media type " + mediaType}
	}
	if len(data) == 0 {
		return "", &Error{Reason: "empty file"}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", &Error{Reason: fmt.Sprintf("file exceeds %d bytes", maxBytes)}
	}
	return ext, nil
}
