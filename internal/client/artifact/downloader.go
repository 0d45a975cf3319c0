package artifact

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/dmitrijs2005/neuralart/internal/filex"
)

// Downloader saves results as neural_art_<id><ext> in a directory.
type Downloader struct {
	fetcher Fetcher
	dir     string
}

func NewDownloader(f Fetcher, dir string) *Downloader {
	if dir == "" {
		dir = "."
	}
	return &Downloader{fetcher: f, dir: dir}
}

// FileName is the saved name for job id. The extension follows the
// reference and defaults to .jpg.
func FileName(id int64, ref string) string {
	ext := ".jpg"
	if u, err := url.Parse(ref); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return fmt.Sprintf("neural_art_%d%s", id, ext)
}

// Save downloads ref and returns the written path. The file appears
// atomically.
func (d *Downloader) Save(ctx context.Context, id int64, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("job %d has no result", id)
	}

	body, err := d.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	defer body.Close()

	saved, err := filex.WriteAtomic(d.dir, FileName(id, ref), body)
	if err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return saved, nil
}
