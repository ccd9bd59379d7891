package matrix

import (
	"sync/atomic"
	"time"
)

// Snapshot is a loaded matrix together with where and when it came from
type Snapshot struct {
	Matrix   *Matrix
	Source   string
	LoadedAt time.Time
}

// Holder owns the current matrix. Reloads swap the whole snapshot so an
// in-flight analysis keeps reading the matrix it started with.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates an empty holder
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the active snapshot, or nil before the first load
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Matrix returns the active matrix, or nil before the first load
func (h *Holder) Matrix() *Matrix {
	if s := h.current.Load(); s != nil {
		return s.Matrix
	}
	return nil
}

// Replace installs a new matrix and returns the one it replaced
func (h *Holder) Replace(m *Matrix, source string) *Snapshot {
	return h.current.Swap(&Snapshot{
		Matrix:   m,
		Source:   source,
		LoadedAt: time.Now().UTC(),
	})
}
