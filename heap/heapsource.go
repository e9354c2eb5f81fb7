// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The external heap-growth primitive. Grounded on the Filer abstraction of
// _examples/cznic-exp/lldb/filer.go and its MemFiler implementation
// (_examples/cznic-exp/lldb/memfiler.go), slimmed down to exactly what
// spec.md section 6 asks an external collaborator to provide: a
// sbrk-style "grow by n bytes, hand back the base" operation plus the
// current size. The transactional (BeginUpdate/EndUpdate/Rollback),
// persistence (Name, PunchHole) and random-truncation parts of Filer have
// no role here - this allocator never shrinks its own heap source and
// never persists it - so they are not carried over.

package heap

// A HeapSource is a []byte-like model of a single, contiguous,
// monotonically-growing region of memory. It is the external collaborator
// spec.md calls `heap_extend`: the allocator never allocates bytes itself,
// it only asks a HeapSource to grow and reads/writes through the slice the
// HeapSource hands back.
//
// A HeapSource is not safe for concurrent use, matching the allocator's own
// single-threaded contract.
type HeapSource interface {
	// Extend grows the region by n bytes and returns the byte offset at
	// which the newly usable region begins. ok is false if the region
	// could not be grown (the out-of-memory case spec.md requires
	// Allocator to surface to its own callers).
	Extend(n int) (base int, ok bool)

	// Len reports the current size of the region in bytes.
	Len() int

	// Bytes returns a slice aliasing the entire current region. The
	// returned slice is only valid until the next call to Extend, which
	// may reallocate the backing storage.
	Bytes() []byte
}

// SliceHeapSource is a HeapSource backed by a growable Go []byte. It is the
// default, always-available heap source and the one used throughout this
// package's own tests, mirroring how lldb's own test suite defaults to
// MemFiler rather than an OS-file-backed Filer.
type SliceHeapSource struct {
	buf []byte
}

var _ HeapSource = (*SliceHeapSource)(nil)

// NewSliceHeapSource returns an empty SliceHeapSource.
func NewSliceHeapSource() *SliceHeapSource {
	return &SliceHeapSource{}
}

// Extend implements HeapSource.
func (s *SliceHeapSource) Extend(n int) (base int, ok bool) {
	if n < 0 {
		return 0, false
	}

	base = len(s.buf)
	s.buf = append(s.buf, make([]byte, n)...)
	return base, true
}

// Len implements HeapSource.
func (s *SliceHeapSource) Len() int { return len(s.buf) }

// Bytes implements HeapSource.
func (s *SliceHeapSource) Bytes() []byte { return s.buf }

// BoundedSliceHeapSource behaves like SliceHeapSource but refuses to grow
// past a fixed limit, returning ok == false instead. It exists so tests can
// exercise the OutOfMemory path (spec.md section 7) deterministically,
// grounded on the same pattern the teacher's own randomized test harness
// uses a flag-tunable `-hlim` hard limit for (falloc_test.go).
type BoundedSliceHeapSource struct {
	SliceHeapSource
	Limit int
}

var _ HeapSource = (*BoundedSliceHeapSource)(nil)

// NewBoundedSliceHeapSource returns a SliceHeapSource-like source that
// fails Extend once its size would exceed limit bytes.
func NewBoundedSliceHeapSource(limit int) *BoundedSliceHeapSource {
	return &BoundedSliceHeapSource{Limit: limit}
}

// Extend implements HeapSource.
func (s *BoundedSliceHeapSource) Extend(n int) (base int, ok bool) {
	if n < 0 || s.Len()+n > s.Limit {
		return 0, false
	}

	return s.SliceHeapSource.Extend(n)
}
