package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// DirSource reads snapshots from a local directory such as the SPA's
// public/frontend_data folder.
type DirSource struct {
	dir string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// List returns the indices of all prediction files in the directory.
func (d *DirSource) List(_ context.Context) ([]int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "snapshot: read dir %s", d.dir)
	}
	var out []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if idx, ok := ParseName(e.Name()); ok {
			out = append(out, idx)
		}
	}
	return out, nil
}

// Fetch reads the indexed file.
func (d *DirSource) Fetch(_ context.Context, index int) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, Name(index)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "snapshot: read %s", Name(index))
	}
	return data, nil
}

// Save writes the indexed file, creating the directory if needed.
func (d *DirSource) Save(_ context.Context, index int, data []byte) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return eris.Wrapf(err, "snapshot: create dir %s", d.dir)
	}
	if err := os.WriteFile(filepath.Join(d.dir, Name(index)), data, 0o644); err != nil {
		return eris.Wrapf(err, "snapshot: write %s", Name(index))
	}
	return nil
}
