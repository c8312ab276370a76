package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSStore keeps files in a Google Cloud Storage bucket under a fixed prefix.
// It satisfies the same contract as DiskStore for deployments that cannot use
// local disk.
type GCSStore struct {
	client   *storage.Client
	bucket   string
	prefix   string
	maxBytes int64
	timeout  time.Duration
}

// NewGCSClient creates a storage client. If credsPath is empty, Application
// Default Credentials are used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCSStore(client *storage.Client, bucket, prefix string, maxBytes int64) *GCSStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &GCSStore{client: client, bucket: bucket, prefix: prefix, maxBytes: maxBytes, timeout: 15 * time.Second}
}

func (s *GCSStore) object(filename string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + filename)
}

func (s *GCSStore) Save(data []byte, mediaType string) (string, error) {
	ext, err := validate(data, mediaType, s.maxBytes)
	if err != nil {
		return "", err
	}
	name := uuid.NewString() + ext

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	wc := s.object(name).NewWriter(ctx)
	wc.ContentType = mediaType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", &Error{Reason: "write object", Err: err}
	}
	if err := wc.Close(); err != nil {
		return "", &Error{Reason: "write object", Err: err}
	}
	return name, nil
}

func (s *GCSStore) Delete(filename string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.object(filename).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrFileMissing
	}
	if err != nil {
		return &Error{Reason: "delete object", Err: err}
	}
	return nil
}

func (s *GCSStore) Exists(filename string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.object(filename).Attrs(ctx)
	return err == nil
}

func (s *GCSStore) Read(filename string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rc, err := s.object(filename).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrFileMissing
	}
	if err != nil {
		return nil, &Error{Reason: "read object", Err: err}
	}
	defer func() { _ = rc.Close() }()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, &Error{Reason: "read object", Err: err}
	}
	return buf.Bytes(), nil
}

var _ Store = (*GCSStore)(nil)
