package snapshot

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Source fetches raw snapshot documents by index. A missing resource
// yields ErrNotFound.
type Source interface {
	Fetch(ctx context.Context, index int) ([]byte, error)
}

// Lister is a Source that can enumerate the indices it holds.
type Lister interface {
	Source
	List(ctx context.Context) ([]int, error)
}

// Sink persists snapshot documents by index. It is used by the simulator.
type Sink interface {
	Save(ctx context.Context, index int, data []byte) error
}

// Loader finds the newest snapshot in a Source.
type Loader struct {
	src Source
	max int
}

// NewLoader creates a Loader over src. maxIndex <= 0 means MaxIndex.
func NewLoader(src Source, maxIndex int) *Loader {
	if maxIndex <= 0 || maxIndex > MaxIndex {
		maxIndex = MaxIndex
	}
	return &Loader{src: src, max: maxIndex}
}

// Latest returns the snapshot with the highest index that fetches and
// decodes. It returns nil and no error when nothing is found; only a
// cancelled context is reported.
func (l *Loader) Latest(ctx context.Context) (*Snapshot, error) {
	snaps, err := l.Recent(ctx, 1)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return snaps[0], nil
}

// Recent returns up to n snapshots, newest first.
func (l *Loader) Recent(ctx context.Context, n int) ([]*Snapshot, error) {
	if n <= 0 {
		return nil, nil
	}

	var out []*Snapshot
	for _, idx := range l.candidates(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := l.src.Fetch(ctx, idx)
		if err != nil {
			zap.L().Debug("snapshot: probe miss", zap.Int("index", idx), zap.Error(err))
			continue
		}
		s, err := Decode(data)
		if err != nil {
			zap.L().Debug("snapshot: decode failed", zap.Int("index", idx), zap.Error(err))
			continue
		}
		s.Index = idx
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// candidates returns the indices to try, highest first. Listing sources
// contribute their in-range indices; anything else, or a failed listing,
// falls back to scanning max..1.
func (l *Loader) candidates(ctx context.Context) []int {
	if lister, ok := l.src.(Lister); ok {
		listed, err := lister.List(ctx)
		if err == nil {
			return l.normalize(listed)
		}
		zap.L().Debug("snapshot: list failed, probing", zap.Error(err))
	}

	out := make([]int, 0, l.max)
	for i := l.max; i >= 1; i-- {
		out = append(out, i)
	}
	return out
}

func (l *Loader) normalize(listed []int) []int {
	seen := make(map[int]bool, len(listed))
	out := make([]int, 0, len(listed))
	for _, idx := range listed {
		if idx < 1 || idx > l.max || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
