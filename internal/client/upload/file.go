// Package upload selects the content and style images, keeps a preview of
// each and submits them as one job.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/neuralart/internal/client/client"
	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidFileType = errors.New("invalid file type")

// Slot is one of the two inputs of a job.
type Slot int

const (
	SlotContent Slot = iota
	SlotStyle
)

// Field is the multipart field name of the slot.
func (s Slot) Field() string {
	if s == SlotStyle {
		return "style_file"
	}
	return "content_file"
}

func (s Slot) String() string {
	if s == SlotStyle {
		return "style"
	}
	return "content"
}

type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// FromPath reads path and sniffs its media type from the content, so a
// renamed text file is still rejected.
func FromPath(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return File{
		Name:      filepath.Base(path),
		MediaType: mimetype.Detect(data).String(),
		Data:      data,
	}, nil
}

// Validate accepts only image media types.
func Validate(f File) error {
	mt := strings.ToLower(strings.TrimSpace(f.MediaType))
	if !strings.HasPrefix(mt, "image/") {
		return fmt.Errorf("%w: %s is %q", ErrInvalidFileType, f.Name, f.MediaType)
	}
	return nil
}

// Extension is the usual extension for the file's media type, ".bin" when unknown.
func (f File) Extension() string {
	mediaType, _, _ := strings.Cut(f.MediaType, ";")
	if m := mimetype.Lookup(strings.TrimSpace(mediaType)); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}

func (f File) upload() client.Upload {
	return client.Upload{Name: f.Name, MediaType: f.MediaType, Data: f.Data}
}
