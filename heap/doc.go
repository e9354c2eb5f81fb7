// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package heap implements a "raw" dynamic memory allocator managing a single,
contiguous, monotonically-growing byte region provided by a HeapSource.

The terms MUST or MUST NOT, if/where used in the documentation of Allocator,
written in all caps as seen here, are a requirement for any possible
alternative implementations aiming for compatibility with this one.

Heap region

A heap is a linear, contiguous sequence of blocks, bracketed by a prologue
block at offset 0 and an epilogue block at the high end. Both sentinels are
permanently allocated and are never returned to a client.

Block addresses

An address is simply the byte offset of a block's header from the start of
the heap. Addresses are plain `int` values, not pointers - this mirrors how
low level storage managers in this family (see the handle scheme of
lldb.Allocator, atoms measured as offset/16+1) prefer indices over raw
pointers when hosted in a language with memory safety. Unsafe pointer
arithmetic, where it exists at all, is confined to a HeapSource
implementation (MmapHeapSource) and never appears in block, free-list or
allocation-policy code.

Block layout

Every block, free or allocated, starts with an 8 byte header: a 32 bit word
packing a 1 bit `allocated` flag and a 31 bit `block_size` field, followed by
a reserved 32 bit word (always written as zero). An identical 8 byte footer
closes the block. A free block additionally overlays its first 16 payload
bytes with `next` and `prev` 8 byte big-endian addresses, threading it into
the explicit free list anchored at the prologue (head) and epilogue (tail).

	+--------+--------+-- ... --+--------+--------+
	| header | next   |  ...    | footer |
	+--------+--------+-- ... --+--------+--------+
	 0        8        16                 size-8

MUST NOT ever have two adjacent free blocks; Free and coalesce are
responsible for restoring that invariant after every mutation.

Size classes and directional policy

A request is "small" when its payload would fit in 100 bytes or fewer
(asize-16 <= 100), "large" otherwise. find_fit searches from the head for
small requests and from the tail for large requests; place splits a
block so the allocated portion lands at the low end for small requests and
the high end for large ones. This clustering is a deliberate
fragmentation-reduction policy, not an implementation accident - see
spec.md / SPEC_FULL.md section 4.4.1 for the rationale.

No method in this package returns io.EOF-shaped sentinels; all failures are
surfaced either as NullAddr (Allocate), a panic carrying ErrOutOfMemory
(Reallocate, which the spec defines as "abort on failure"), or a non-nil
error from Initialize or CheckHeap.
*/
package heap
