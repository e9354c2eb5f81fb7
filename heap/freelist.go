// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The explicit doubly-linked free list, threaded through free blocks and
// anchored at the prologue (head) and epilogue (tail). Grounded on the
// link/unlink/prev/next combinators of
// _examples/cznic-exp/lldb/falloc.go, simplified from lldb's multi-bucket
// (FLT) free list table down to the single list spec.md mandates - this
// module does not reuse _examples/cznic-exp/lldb/flt.go's segregated
// bucket machinery because spec.md section 4.3 explicitly calls for one
// list with the head/tail choice made by policy, not by size-routed
// buckets; see DESIGN.md for the full justification of that divergence.

package heap

// nextLinkOff/prevLinkOff return the byte offsets, relative to a free
// block's own address, of its next and prev link fields.
func nextLinkOff() int { return headerSize }
func prevLinkOff() int { return headerSize + linkSize }

// getNext reads the next link of the free block (or sentinel) at addr.
func (a *Allocator) getNext(addr int) int {
	b := a.bytes()
	return readLink(b, addr+nextLinkOff())
}

// getPrev reads the prev link of the free block (or sentinel) at addr.
func (a *Allocator) getPrev(addr int) int {
	b := a.bytes()
	return readLink(b, addr+prevLinkOff())
}

// setNext writes the next link of the free block (or sentinel) at addr.
func (a *Allocator) setNext(addr, next int) {
	b := a.bytes()
	writeLink(b, addr+nextLinkOff(), next)
}

// setPrev writes the prev link of the free block (or sentinel) at addr.
func (a *Allocator) setPrev(addr, prev int) {
	b := a.bytes()
	writeLink(b, addr+prevLinkOff(), prev)
}

// insertAtHead splices addr (a free block) between the prologue and its
// current successor.
func (a *Allocator) insertAtHead(addr int) {
	succ := a.getNext(a.prologueAddr)
	a.setNext(a.prologueAddr, addr)
	a.setPrev(addr, a.prologueAddr)
	a.setNext(addr, succ)
	a.setPrev(succ, addr)
}

// insertAtTail splices addr (a free block) between the epilogue and its
// current predecessor.
func (a *Allocator) insertAtTail(addr int) {
	pred := a.getPrev(a.epilogueAddr)
	a.setPrev(a.epilogueAddr, addr)
	a.setNext(addr, a.epilogueAddr)
	a.setPrev(addr, pred)
	a.setNext(pred, addr)
}

// unlink removes the free block at addr from the list, given its current
// prev/next neighbours. addr MUST currently be a member of the free list
// (never a sentinel).
func (a *Allocator) unlink(addr int) {
	prev := a.getPrev(addr)
	next := a.getNext(addr)
	a.setNext(prev, next)
	a.setPrev(next, prev)
}

// replaceInPlace swaps the free-list slot occupied by oldAddr for newAddr,
// inheriting oldAddr's prev/next without touching the rest of the list.
// Used by place's Case B, where the remainder of a split block keeps the
// original block's position in the list.
func (a *Allocator) replaceInPlace(oldAddr, newAddr int) {
	prev := a.getPrev(oldAddr)
	next := a.getNext(oldAddr)
	a.setPrev(newAddr, prev)
	a.setNext(newAddr, next)
	a.setNext(prev, newAddr)
	a.setPrev(next, newAddr)
}
