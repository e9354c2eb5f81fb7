// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The Allocator itself: initialization, the directional find_fit/place
// policy, four-case boundary-tag coalescing, and heap growth. Grounded on
// _examples/cznic-exp/lldb/falloc.go's Allocator/Alloc/free2/link/unlink
// methods, restructured around this module's single explicit free list and
// the size-directed head/tail search and low/high split policy spec.md
// section 4 mandates in place of lldb's segregated free-list-table (FLT)
// bucket routing.

package heap

import "github.com/cznic/mathutil"

// NullAddr is the sentinel "no block" / "out of memory" address returned in
// place of a nil pointer, since addresses here are plain ints rather than
// pointers. It is never a valid block address: every real block lives past
// the prologue, at offset >= prologueSize.
const NullAddr = -1

// Options configures an Allocator's growth behaviour. It carries no field
// affecting block layout or coalescing semantics, only how aggressively the
// heap grows and where the small/large boundary sits.
type Options struct {
	// ChunkSize is the number of bytes requested from the HeapSource for
	// the very first Initialize call, and the unit GrowthMultiplier scales
	// when the heap must grow later. Must be large enough to hold a
	// prologue, one interior free block of at least MinBlockSize, and an
	// epilogue.
	ChunkSize int

	// SmallThreshold is the payload-byte boundary (inclusive) below which a
	// request is classified "small" for find_fit/place/free list
	// insertion purposes. spec.md section 4.4.1 fixes this at 100; it is
	// exposed here as a tunable because nothing about the algorithm
	// actually depends on the literal value 100, only on a single
	// consistent boundary being shared by every policy decision.
	SmallThreshold int

	// GrowthMultiplier is how many ChunkSize units extend() requests when
	// find_fit fails and the requested size itself is smaller than that.
	GrowthMultiplier int
}

// DefaultOptions returns the production defaults: a 64KiB initial/growth
// chunk, the 100-byte small/large boundary spec.md section 4.4.1 specifies,
// and the 6x growth multiplier spec.md section 4.4.3 uses when a failed
// find_fit forces the heap to grow. Tests that want to exercise growth
// cycles without waiting on real 64KiB allocations override ChunkSize
// directly.
func DefaultOptions() Options {
	return Options{
		ChunkSize:        65536,
		SmallThreshold:   100,
		GrowthMultiplier: 6,
	}
}

// Allocator manages a single, contiguous, monotonically-growing heap backed
// by a HeapSource. It is not safe for concurrent use; spec.md section 1
// scopes multi-threading out entirely, matching lldb.Allocator's own
// single-goroutine contract.
type Allocator struct {
	src  HeapSource
	opts Options

	prologueAddr int
	epilogueAddr int
}

// NewAllocator returns an Allocator over src, using opts. Initialize must be
// called once before the Allocator is used, and src MUST be empty at that
// point: an Allocator cannot adopt a previously initialized heap.
func NewAllocator(src HeapSource, opts Options) *Allocator {
	return &Allocator{src: src, opts: opts}
}

// Len reports the current total size, in bytes, of the backing HeapSource,
// prologue, epilogue and all blocks included.
func (a *Allocator) Len() int { return a.src.Len() }

// bytes returns the current backing slice. It must be re-fetched after any
// call that may grow the HeapSource (Extend can reallocate), never cached
// across such a call.
func (a *Allocator) bytes() []byte { return a.src.Bytes() }

// readHeaderAt reads the header word at a block's own address.
func (a *Allocator) readHeaderAt(addr int) (allocated bool, size int) {
	return readTag(a.bytes(), addr)
}

// readFooterAt reads a header-or-footer-shaped word at an arbitrary offset,
// used to inspect a predecessor block's footer during coalescing.
func (a *Allocator) readFooterAt(off int) (allocated bool, size int) {
	return readTag(a.bytes(), off)
}

// markBlock writes a block's header and footer consistently, per spec.md's
// invariant that the two must always agree.
func (a *Allocator) markBlock(addr, size int, allocated bool) {
	b := a.bytes()
	writeTag(b, addr, allocated, size)
	writeTag(b, footerOf(addr, size), allocated, size)
}

// isSmall classifies a block size (header+footer included) as "small" or
// "large" per the single threshold spec.md section 4.4.1 shares across
// find_fit, place and free.
func (a *Allocator) isSmall(blockSize int) bool {
	return blockSize-overhead <= a.opts.SmallThreshold
}

// adjustedSize rounds a requested payload size up to a block size:
// header+footer overhead added, then rounded to the next 8 byte multiple,
// then floored at MinBlockSize so every block can still hold two link
// fields once freed.
func adjustedSize(n int) int {
	raw := n + overhead
	asize := ((raw + align - 1) / align) * align
	if asize < MinBlockSize {
		asize = MinBlockSize
	}

	return asize
}

// Initialize lays down the prologue, one large interior free block, and the
// epilogue in a freshly extended first chunk. It must be called exactly
// once, before any Allocate/Free/Reallocate/CheckHeap call, and src must
// start out empty.
func (a *Allocator) Initialize() error {
	if a.src.Len() != 0 {
		return &ErrINVAL{"Initialize: HeapSource is not empty", a.src.Len()}
	}

	chunk := a.opts.ChunkSize
	interiorSize := chunk - prologueSize - epilogueSize
	if interiorSize < MinBlockSize {
		return &ErrINVAL{"Initialize: ChunkSize too small to hold prologue, one free block and epilogue", chunk}
	}

	base, ok := a.src.Extend(chunk)
	if !ok || base != 0 {
		return &ErrOutOfMemory{Requested: chunk}
	}

	a.prologueAddr = 0
	a.epilogueAddr = chunk - epilogueSize
	interiorAddr := prologueSize

	b := a.src.Bytes()

	writeTag(b, a.prologueAddr, true, prologueSize)
	writeTag(b, footerOf(a.prologueAddr, prologueSize), true, prologueSize)
	writeLink(b, a.prologueAddr+nextLinkOff(), interiorAddr)
	writeLink(b, a.prologueAddr+prevLinkOff(), noAddr)

	writeTag(b, a.epilogueAddr, true, 0)
	writeLink(b, a.epilogueAddr+nextLinkOff(), noAddr)
	writeLink(b, a.epilogueAddr+prevLinkOff(), interiorAddr)

	a.markBlock(interiorAddr, interiorSize, false)
	writeLink(b, interiorAddr+nextLinkOff(), a.epilogueAddr)
	writeLink(b, interiorAddr+prevLinkOff(), a.prologueAddr)

	return nil
}

// extend grows the heap by at least n bytes (rounded by the caller to a
// multiple of align), reinterpreting the old epilogue's footprint as the
// header of a new free block and writing a fresh epilogue past it, then
// coalescing that new block with whatever free block used to sit at the
// tail of the heap. It returns the address of the (possibly now-merged)
// free block, and ok == false if the HeapSource could not grow.
func (a *Allocator) extend(n int) (addr int, ok bool) {
	if n <= 0 || n%align != 0 {
		return NullAddr, false
	}

	oldEpilogue := a.epilogueAddr
	pred := a.getPrev(oldEpilogue)

	// The old epilogue's footprint becomes the start of the new block, so
	// growing by n leaves exactly epilogueSize bytes past it for the new
	// epilogue.
	base, grew := a.src.Extend(n)
	if !grew || base != oldEpilogue+epilogueSize {
		return NullAddr, false
	}

	b := a.src.Bytes()
	newEpilogue := oldEpilogue + n

	a.markBlock(oldEpilogue, n, false)

	writeTag(b, newEpilogue, true, 0)
	writeLink(b, newEpilogue+prevLinkOff(), oldEpilogue)
	writeLink(b, newEpilogue+nextLinkOff(), noAddr)

	writeLink(b, oldEpilogue+nextLinkOff(), newEpilogue)
	writeLink(b, oldEpilogue+prevLinkOff(), pred)
	writeLink(b, pred+nextLinkOff(), oldEpilogue)

	a.epilogueAddr = newEpilogue

	return a.coalesce(oldEpilogue), true
}

// findFit searches the free list for a block of at least asize bytes,
// walking from the head for small requests and from the tail for large
// ones, per spec.md section 4.4.1.
func (a *Allocator) findFit(asize int) (addr int, ok bool) {
	if a.isSmall(asize) {
		for cur := a.getNext(a.prologueAddr); cur != a.epilogueAddr; cur = a.getNext(cur) {
			if _, size := a.readHeaderAt(cur); size >= asize {
				return cur, true
			}
		}

		return NullAddr, false
	}

	for cur := a.getPrev(a.epilogueAddr); cur != a.prologueAddr; cur = a.getPrev(cur) {
		if _, size := a.readHeaderAt(cur); size >= asize {
			return cur, true
		}
	}

	return NullAddr, false
}

// place carves an asize-byte allocated block out of the free block at addr
// (which MUST currently be in the free list with size >= asize), splitting
// it when the remainder would itself be a valid free block and leaving it
// whole (fully allocated) otherwise. It returns the address of the
// allocated block.
func (a *Allocator) place(addr, asize int) int {
	_, blockSize := a.readHeaderAt(addr)
	split := blockSize - asize

	switch {
	case split < MinBlockSize:
		// Case A: no split, the whole block becomes allocated.
		a.unlink(addr)
		a.markBlock(addr, blockSize, true)
		return addr

	case a.isSmall(asize):
		// Case B: split, small request placed at the low end; the
		// remainder inherits addr's old free-list slot. replaceInPlace
		// MUST run before markBlock(addr, ...) below, which overwrites
		// addr's own link fields once it stops being a free-list member.
		freeAddr := addr + asize
		a.replaceInPlace(addr, freeAddr)

		a.markBlock(addr, asize, true)
		a.markBlock(freeAddr, split, false)
		return addr

	default:
		// Case C: split, large request placed at the high end; the
		// remainder stays in its existing free-list slot, address
		// unchanged, only its size shrinks.
		allocAddr := addr + split
		a.markBlock(allocAddr, asize, true)
		a.markBlock(addr, split, false)
		return allocAddr
	}
}

// coalesce merges the free block at addr with whichever physically
// adjacent neighbours are themselves free, choosing among the four
// boundary-tag cases by inspecting the predecessor's footer and the
// successor's header. Because the prologue and epilogue are permanently
// allocated sentinels with the same header/footer shape as ordinary blocks,
// no special-casing is needed when addr borders either one. It returns the
// address of the single free block addr ends up as part of.
func (a *Allocator) coalesce(addr int) int {
	_, size := a.readHeaderAt(addr)

	pAllocated, pSize := a.readFooterAt(prevFooterAddr(addr))
	nAddr := nextHeaderAddr(addr, size)
	nAllocated, nSize := a.readHeaderAt(nAddr)

	switch {
	case pAllocated && nAllocated:
		return addr

	case pAllocated && !nAllocated:
		a.unlink(nAddr)
		a.markBlock(addr, size+nSize, false)
		return addr

	case !pAllocated && nAllocated:
		pAddr := prevBlockAddr(addr, pSize)
		a.unlink(addr)
		a.markBlock(pAddr, pSize+size, false)
		return pAddr

	default:
		pAddr := prevBlockAddr(addr, pSize)
		a.unlink(addr)
		a.unlink(nAddr)
		a.markBlock(pAddr, pSize+size+nSize, false)
		return pAddr
	}
}

// Allocate reserves a payload of at least n bytes and returns the address
// of its first payload byte, or NullAddr if n <= 0 or the heap could not be
// grown far enough to satisfy the request.
func (a *Allocator) Allocate(n int) int {
	if n <= 0 {
		return NullAddr
	}

	asize := adjustedSize(n)

	if addr, ok := a.findFit(asize); ok {
		return a.place(addr, asize) + headerSize
	}

	extendBytes := mathutil.Max(asize, a.opts.GrowthMultiplier*a.opts.ChunkSize)

	addr, ok := a.extend(extendBytes)
	if !ok {
		return NullAddr
	}

	return a.place(addr, asize) + headerSize
}

// Free returns the payload at ptr (as returned by a prior Allocate or
// Reallocate on this same Allocator) to the free list, inserting it at the
// head or tail per its size and coalescing it with any free neighbours.
// Freeing an address not currently allocated by this Allocator is undefined
// behaviour, per spec.md section 4.4.4.
func (a *Allocator) Free(ptr int) {
	addr := ptr - headerSize
	_, size := a.readHeaderAt(addr)

	a.markBlock(addr, size, false)

	if a.isSmall(size) {
		a.insertAtHead(addr)
	} else {
		a.insertAtTail(addr)
	}

	a.coalesce(addr)
}

// Reallocate resizes the allocation at ptr to newSize bytes, following the
// naive policy of spec.md section 4.4.7: allocate fresh, copy the
// overlapping prefix, free the old block. It panics with ErrOutOfMemory if
// the new allocation cannot be satisfied, matching the "abort on failure"
// contract Reallocate is specified to have. Reallocate(ptr, 0) frees ptr
// and returns NullAddr, matching conventional realloc(ptr, 0) semantics
// rather than treating a zero-byte request as an out-of-memory failure.
func (a *Allocator) Reallocate(ptr int, newSize int) int {
	if newSize <= 0 {
		a.Free(ptr)
		return NullAddr
	}

	oldAddr := ptr - headerSize
	_, oldBlockSize := a.readHeaderAt(oldAddr)
	oldPayloadSize := oldBlockSize - overhead

	newPtr := a.Allocate(newSize)
	if newPtr == NullAddr {
		panic(&ErrOutOfMemory{Requested: newSize})
	}

	n := mathutil.Min(oldPayloadSize, newSize)

	b := a.bytes()
	copy(b[newPtr:newPtr+n], b[ptr:ptr+n])

	a.Free(ptr)
	return newPtr
}
