package shared

import (
	"errors"
	"sync/atomic"
)

// ErrWriterClaimed is returned when a second writer is requested for a cell.
var ErrWriterClaimed = errors.New("shared: cell already has a writer")

type snapshot[T any] struct {
	value   T
	version uint64
}

// Cell holds the latest value of T.
type Cell[T any] struct {
	current atomic.Pointer[snapshot[T]]
	claimed atomic.Bool
}

// NewCell creates a cell holding initial. The write handle is not yet claimed.
func NewCell[T any](initial T) *Cell[T] {
	c := &Cell[T]{}
	c.current.Store(&snapshot[T]{value: initial})
	return c
}

// New creates a cell and claims its only writer.
func New[T any](initial T) (*Writer[T], Reader[T]) {
	c := NewCell(initial)
	w, _ := c.Writer()
	return w, c.Reader()
}

// Writer claims the write handle. Only the first call succeeds.
func (c *Cell[T]) Writer() (*Writer[T], error) {
	if !c.claimed.CompareAndSwap(false, true) {
		return nil, ErrWriterClaimed
	}
	return &Writer[T]{cell: c}, nil
}

// Reader returns a read handle. Read handles are values and may be copied freely.
func (c *Cell[T]) Reader() Reader[T] {
	return Reader[T]{cell: c}
}

// Writer is the single write capability for a cell.
type Writer[T any] struct {
	cell *Cell[T]
}

// Write replaces the cell's value.
func (w *Writer[T]) Write(v T) {
	prev := w.cell.current.Load()
	w.cell.current.Store(&snapshot[T]{value: v, version: prev.version + 1})
}

// Update replaces the value with fn applied to the current one. Only the
// writer mutates the cell, so the read-modify-write cannot lose an update.
func (w *Writer[T]) Update(fn func(T) T) T {
	next := fn(w.cell.current.Load().value)
	w.Write(next)
	return next
}

// Read returns the current value as seen by the writer.
func (w *Writer[T]) Read() T {
	return w.cell.current.Load().value
}

// Reader returns a read handle over the same cell.
func (w *Writer[T]) Reader() Reader[T] {
	return w.cell.Reader()
}

// Reader is a read-only handle over a cell.
type Reader[T any] struct {
	cell *Cell[T]
}

// Read returns the most recently written value.
func (r Reader[T]) Read() T {
	return r.cell.current.Load().value
}

// Version counts the writes the cell has seen. Zero means only the initial
// value has been stored.
func (r Reader[T]) Version() uint64 {
	return r.cell.current.Load().version
}

// Load returns the value together with its version, taken from one snapshot.
func (r Reader[T]) Load() (T, uint64) {
	s := r.cell.current.Load()
	return s.value, s.version
}

// Valid reports whether the handle refers to a cell.
func (r Reader[T]) Valid() bool {
	return r.cell != nil
}
