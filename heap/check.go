// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The consistency checker: a single forward heap walk plus a parallel free
// list walk cross-checked against it. Grounded on
// _examples/cznic-exp/lldb/falloc.go's Verify method, which performs a
// comparable mark-sweep pass over every allocator-owned region and reports
// the first structural inconsistency it finds; simplified here from
// Verify's multi-phase bitmap scheme (lldb tracks content blocks, free
// blocks and handle tables at once) down to the two structures this
// allocator actually has: the block chain and the free list.

package heap

import "fmt"

// CheckHeap walks the heap from the prologue to the epilogue and verifies
// every invariant spec.md section 3 and section 8 place on the block chain
// and the free list, returning the first violation found as an *ErrILSEQ,
// or nil if the heap is internally consistent. When verbose is true, a
// human-readable occupancy map is also written via the Visualize helper as
// a side effect (see visualize.go) - this has no bearing on the pass/fail
// result, it exists purely as a debugging aid, mirroring how falloc_test.go
// runs with a `-dump` flag for this exact purpose.
func (a *Allocator) CheckHeap(verbose bool) error {
	b := a.bytes()
	total := len(b)

	if total < prologueSize+epilogueSize {
		return &ErrILSEQ{Type: ErrBadPrologue, Off: 0}
	}

	palloc, psize := readTag(b, a.prologueAddr)
	if !palloc || psize != prologueSize {
		return &ErrILSEQ{Type: ErrBadPrologue, Off: a.prologueAddr, Arg: psize}
	}
	if pfAlloc, pfSize := readTag(b, footerOf(a.prologueAddr, prologueSize)); !pfAlloc || pfSize != psize {
		return &ErrILSEQ{Type: ErrHeaderFooterMismatch, Off: a.prologueAddr}
	}

	ealloc, esize := readTag(b, a.epilogueAddr)
	if !ealloc || esize != 0 || a.epilogueAddr+epilogueSize != total {
		return &ErrILSEQ{Type: ErrBadEpilogue, Off: a.epilogueAddr, Arg: esize}
	}

	freeInChain := map[int]bool{}
	prevAllocated := true
	prevFree := -1

	for addr := prologueSize; addr != a.epilogueAddr; {
		if !isAligned(addr) {
			return &ErrILSEQ{Type: ErrMisaligned, Off: addr}
		}
		if addr < 0 || addr+headerSize > total {
			return &ErrILSEQ{Type: ErrBadTiling, Off: addr}
		}

		allocated, size := readTag(b, addr)
		if size < MinBlockSize {
			return &ErrILSEQ{Type: ErrTooSmall, Off: addr, Arg: size}
		}

		nextAddr := nextHeaderAddr(addr, size)
		if nextAddr > a.epilogueAddr {
			return &ErrILSEQ{Type: ErrBadTiling, Off: addr, Arg: size}
		}

		fAlloc, fSize := readTag(b, footerOf(addr, size))
		if fAlloc != allocated || fSize != size {
			return &ErrILSEQ{Type: ErrHeaderFooterMismatch, Off: addr, Arg: size, Arg2: fSize}
		}

		if !allocated {
			if !prevAllocated {
				return &ErrILSEQ{Type: ErrAdjacentFree, Off: prevFree, Arg: addr}
			}
			freeInChain[addr] = true
		}

		prevAllocated = allocated
		if !allocated {
			prevFree = addr
		}

		addr = nextAddr
	}

	seenInList := map[int]bool{}
	count := 0
	prev := a.prologueAddr
	for cur := a.getNext(a.prologueAddr); cur != a.epilogueAddr; cur = a.getNext(cur) {
		count++
		if count > len(freeInChain)+1 {
			return &ErrILSEQ{Type: ErrFreeChaining, Off: cur}
		}
		if cur < prologueSize || cur >= a.epilogueAddr {
			return &ErrILSEQ{Type: ErrFreeListMembership, Off: cur}
		}
		if !freeInChain[cur] {
			return &ErrILSEQ{Type: ErrFreeListMembership, Off: cur}
		}
		if back := a.getPrev(cur); back != prev {
			return &ErrILSEQ{Type: ErrFreeChaining, Off: cur, Arg: back, Arg2: prev}
		}

		seenInList[cur] = true
		prev = cur
	}
	if back := a.getPrev(a.epilogueAddr); back != prev {
		return &ErrILSEQ{Type: ErrFreeChaining, Off: a.epilogueAddr, Arg: back, Arg2: prev}
	}

	if len(seenInList) != len(freeInChain) {
		return &ErrILSEQ{Type: ErrFreeListMembership, Off: a.prologueAddr, Arg: len(freeInChain), Arg2: len(seenInList)}
	}
	for addr := range freeInChain {
		if !seenInList[addr] {
			return &ErrILSEQ{Type: ErrFreeListMembership, Off: addr}
		}
	}

	if verbose {
		fmt.Print(a.Visualize())
	}

	return nil
}
