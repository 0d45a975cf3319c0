package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("offline")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "neural_art_42.jpg", FileName(42, "/files/42.jpg"))
	assert.Equal(t, "neural_art_1.png", FileName(1, "https://x.test/r/1.PNG?sig=abc"))
	assert.Equal(t, "neural_art_3.jpg", FileName(3, "/output/result"))
}

func TestDownloader_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	d := NewDownloader(&stubFetcher{body: "pixels"}, dir)

	p, err := d.Save(context.Background(), 42, "/files/42.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "neural_art_42.jpg"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is gone")
}

func TestDownloader_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDownloader(&stubFetcher{}, dir).Save(context.Background(), 1, "")
	require.Error(t, err)

	_, err = NewDownloader(failingFetcher{}, dir).Save(context.Background(), 1, "/x.jpg")
	require.ErrorContains(t, err, "offline")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
