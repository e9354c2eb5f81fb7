// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "testing"

func TestCheckHeapFreshlyInitialized(t *testing.T) {
	a := newTestAllocator(t, 4096)

	if err := a.CheckHeap(false); err != nil {
		t.Fatalf("CheckHeap on a freshly initialized heap: %v", err)
	}
}

func TestCheckHeapAfterActivity(t *testing.T) {
	a := newTestAllocator(t, 4096)

	p1 := a.Allocate(16)
	p2 := a.Allocate(200)
	a.Free(p1)
	p3 := a.Allocate(32)
	_ = p2
	_ = p3

	if err := a.CheckHeap(false); err != nil {
		t.Fatalf("CheckHeap after a sequence of allocations and frees: %v", err)
	}
}

func TestCheckHeapDetectsAdjacentFreeBlocks(t *testing.T) {
	a := newTestAllocator(t, 4096)

	only := freeListAddrs(a)[0]
	_, size := a.readHeaderAt(only)

	// Manually split the one free block into two free blocks without
	// coalescing them, violating "no two adjacent free blocks".
	half := (size / 2) &^ (align - 1)
	a.markBlock(only, half, false)
	a.markBlock(only+half, size-half, false)
	a.setNext(a.prologueAddr, only)
	a.setPrev(only, a.prologueAddr)
	a.setNext(only, only+half)
	a.setPrev(only+half, only)
	a.setNext(only+half, a.epilogueAddr)
	a.setPrev(a.epilogueAddr, only+half)

	err := a.CheckHeap(false)
	if err == nil {
		t.Fatalf("expected CheckHeap to reject two adjacent free blocks")
	}
	ilseq, ok := err.(*ErrILSEQ)
	if !ok || ilseq.Type != ErrAdjacentFree {
		t.Fatalf("expected ErrAdjacentFree, got %v", err)
	}
}

func TestCheckHeapDetectsHeaderFooterMismatch(t *testing.T) {
	a := newTestAllocator(t, 4096)

	ptr := a.Allocate(32)
	addr := ptr - headerSize

	_, size := a.readHeaderAt(addr)
	b := a.bytes()
	writeTag(b, footerOf(addr, size), true, size+8) // corrupt the footer's size field

	err := a.CheckHeap(false)
	if err == nil {
		t.Fatalf("expected CheckHeap to reject a corrupted footer")
	}
	if _, ok := err.(*ErrILSEQ); !ok {
		t.Fatalf("expected *ErrILSEQ, got %T: %v", err, err)
	}
}

func TestCheckHeapDetectsFreeListMembershipMismatch(t *testing.T) {
	a := newTestAllocator(t, 4096)

	only := freeListAddrs(a)[0]

	// Flip the block's allocated flag without touching the free list:
	// the block still thinks it is free-listed, but the header now says
	// allocated.
	_, size := a.readHeaderAt(only)
	a.markBlock(only, size, true)

	err := a.CheckHeap(false)
	if err == nil {
		t.Fatalf("expected CheckHeap to reject a free-listed block marked allocated")
	}
	ilseq, ok := err.(*ErrILSEQ)
	if !ok || ilseq.Type != ErrFreeListMembership {
		t.Fatalf("expected ErrFreeListMembership, got %v", err)
	}
}

func TestVisualizeHasOneCharacterPerBlockPlusSentinels(t *testing.T) {
	a := newTestAllocator(t, 4096)

	p1 := a.Allocate(16)
	_ = a.Allocate(16)
	a.Free(p1)

	out := a.Visualize()
	if len(out) < 3 {
		t.Fatalf("Visualize produced suspiciously short output: %q", out)
	}
	if out[0] != 'P' {
		t.Fatalf("Visualize should start with the prologue marker 'P': %q", out)
	}
	// Blocks: freed p1 (free), p2 (allocated), the split remainder (free).
	if want := "P.#.E\n"; out != want {
		t.Fatalf("Visualize: got %q, want %q", out, want)
	}
}
