package upload

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/neuralart/internal/filex"
)

// Preview is a handle to a displayable copy of a selected file. Path is
// set only for file-backed previews.
type Preview struct {
	Ref  string
	Path string
}

// PreviewStore creates and releases previews. Every created preview must
// be released exactly once.
type PreviewStore interface {
	Create(f File) (Preview, error)
	Release(p Preview) error
}

// NewPreviewStore keeps previews in memory when dir is empty and as temp
// files under dir otherwise.
func NewPreviewStore(dir string) PreviewStore {
	if dir == "" {
		return NewMemoryPreviews()
	}
	return NewDirPreviews(dir)
}

type MemoryPreviews struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{blobs: make(map[string][]byte)}
}

func (m *MemoryPreviews) Create(f File) (Preview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref := uuid.NewString()
	m.blobs[ref] = f.Data
	return Preview{Ref: ref}, nil
}

func (m *MemoryPreviews) Release(p Preview) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[p.Ref]; !ok {
		return fmt.Errorf("preview %s: already released", p.Ref)
	}
	delete(m.blobs, p.Ref)
	return nil
}

// Open returns the blob behind ref.
func (m *MemoryPreviews) Open(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[ref]
	return b, ok
}

// Len is the number of live previews.
func (m *MemoryPreviews) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// DirPreviews writes previews as temp files so an external viewer can open them.
type DirPreviews struct {
	dir string
}

func NewDirPreviews(dir string) *DirPreviews {
	return &DirPreviews{dir: dir}
}

func (d *DirPreviews) Create(f File) (Preview, error) {
	path, err := filex.WriteTemp(d.dir, "preview-*"+f.Extension(), bytes.NewReader(f.Data))
	if err != nil {
		return Preview{}, fmt.Errorf("create preview: %w", err)
	}
	return Preview{Ref: uuid.NewString(), Path: path}, nil
}

func (d *DirPreviews) Release(p Preview) error {
	if err := os.Remove(p.Path); err != nil {
		return fmt.Errorf("remove preview: %w", err)
	}
	return nil
}
