package media

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxBytes int64) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return s
}

func TestDiskSaveReadDelete(t *testing.T) {
	s := newTestStore(t, 0)

	name, err := s.Save([]byte("imagebytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.True(t, s.Exists(name))

	b, err := s.Read(name)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(b, []byte("imagebytes")))

	require.NoError(t, s.Delete(name))
	assert.False(t, s.Exists(name))
	assert.ErrorIs(t, s.Delete(name), ErrFileMissing)
	_, err = s.Read(name)
	assert.ErrorIs(t, err, ErrFileMissing)
}

func TestDiskSaveGeneratesUniqueNames(t *testing.T) {
	s := newTestStore(t, 0)

	a, err := s.Save([]byte("one"), "image/jpeg")
	require.NoError(t, err)
	b, err := s.Save([]byte("one"), "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDiskRejectsUnsupportedType(t *testing.T) {
	s := newTestStore(t, 0)

	_, err := s.Save([]byte("<svg/>"), "image/svg+xml")
	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Reason, "unsupported media type")
}

func TestDiskRejectsEmptyAndOversized(t *testing.T) {
	s := newTestStore(t, 8)

	_, err := s.Save(nil, "image/png")
	var merr *Error
	require.ErrorAs(t, err, &merr)

	_, err = s.Save([]byte("123456789"), "image/png")
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Reason, "exceeds")

	_, err = s.Save([]byte("12345678"), "image/png")
	assert.NoError(t, err)
}

func TestMediaTypeOf(t *testing.T) {
	assert.Equal(t, "image/jpeg", MediaTypeOf("abc.jpg"))
	assert.Equal(t, "image/webp", MediaTypeOf("abc.WEBP"))
	assert.Equal(t, "application/octet-stream", MediaTypeOf("abc.bin"))
}
