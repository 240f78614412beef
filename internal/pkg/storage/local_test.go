package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("scan"), "attestations/rec-1/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "attestations/rec-1/a.pdf", key)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "scan", string(data))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Download(ctx, key)
	assert.Error(t, err)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"../escape.txt", "a/../../escape.txt", "."} {
		_, err := s.Upload(context.Background(), strings.NewReader("x"), path, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidPath, path)
	}
}
