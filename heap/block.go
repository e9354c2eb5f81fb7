// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Block Metadata: the header/footer encoding and the address arithmetic
// that follows from it. Grounded on the tag/size encode-decode helpers of
// _examples/cznic-exp/lldb/falloc.go (nfo, h2b/b2h, footer/next-header/
// prev-footer address math), re-encoded for this module's 8-byte-word,
// header+footer-per-block layout instead of lldb's variable-tag atom
// scheme.

package heap

import "encoding/binary"

const (
	// wordSize is the size in bytes of the packed allocated+size word
	// that opens (and, duplicated, closes) every block.
	wordSize = 4

	// headerSize is the size in bytes of a block header: the packed
	// word plus a reserved word, per spec.md section 3.
	headerSize = 8

	// footerSize mirrors headerSize; header and footer share encoding.
	footerSize = 8

	// overhead is the combined header+footer size subtracted from a
	// block's size to get its payload size.
	overhead = headerSize + footerSize

	// linkSize is the size in bytes of a single free-list link field
	// (next or prev).
	linkSize = 8

	// MinBlockSize is the smallest size, in bytes, any block (other than
	// the epilogue, whose size is always 0) may have: header + footer +
	// two link fields.
	MinBlockSize = overhead + 2*linkSize // 32

	// allocatedBit marks bit 31 of the packed header/footer word.
	allocatedBit = uint32(1) << 31

	// sizeMask isolates the 31 bit block_size field.
	sizeMask = allocatedBit - 1

	// maxBlockSize is the largest value block_size can hold.
	maxBlockSize = int(sizeMask)

	// align is the required alignment, in bytes, of every payload and
	// block address.
	align = 8

	// prologueSize is the fixed, permanent size of the prologue sentinel:
	// header(8) + next(8) + prev(8) + footer(8). Per the Open Question
	// resolution in SPEC_FULL.md section 3, the prologue carries a real
	// footer in that last 8 bytes rather than inert padding, which is why
	// prologueSize equals MinBlockSize exactly.
	prologueSize = MinBlockSize

	// epilogueSize is the fixed, permanent footprint of the epilogue
	// sentinel: header(8) + next(8) + prev(8). The epilogue's header
	// always encodes block_size == 0 - that zero is the sentinel a
	// forward heap walk uses to recognize "end of blocks", not a
	// statement about epilogueSize's own physical footprint. The
	// epilogue carries no footer: nothing follows it to need one.
	epilogueSize = headerSize + 2*linkSize
)

// packWord encodes the allocated flag and size into a single 32 bit word,
// the representation shared by header and footer.
func packWord(allocated bool, size int) uint32 {
	w := uint32(size) & sizeMask
	if allocated {
		w |= allocatedBit
	}

	return w
}

// unpackWord decodes a 32 bit header/footer word.
func unpackWord(w uint32) (allocated bool, size int) {
	return w&allocatedBit != 0, int(w & sizeMask)
}

// writeTag writes a header-or-footer record (word + reserved word) at byte
// offset off in b.
func writeTag(b []byte, off int, allocated bool, size int) {
	binary.BigEndian.PutUint32(b[off:], packWord(allocated, size))
	binary.BigEndian.PutUint32(b[off+wordSize:], 0)
}

// readTag reads a header-or-footer record at byte offset off in b.
func readTag(b []byte, off int) (allocated bool, size int) {
	return unpackWord(binary.BigEndian.Uint32(b[off:]))
}

// writeLink writes a free-list link field (a byte offset, or noAddr) at off.
func writeLink(b []byte, off int, addr int) {
	binary.BigEndian.PutUint64(b[off:], uint64(int64(addr)))
}

// readLink reads a free-list link field at off.
func readLink(b []byte, off int) int {
	return int(int64(binary.BigEndian.Uint64(b[off:])))
}

// noAddr marks an unused link field (the prologue's prev, the epilogue's
// next). It is never dereferenced; both sentinels are fixed list ends.
const noAddr = -1

// footerOf returns the byte offset of addr's footer.
func footerOf(addr, size int) int { return addr + size - footerSize }

// nextHeaderAddr returns the byte offset of the block immediately
// following addr.
func nextHeaderAddr(addr, size int) int { return addr + size }

// prevFooterAddr returns the byte offset of the footer of the block
// immediately preceding addr. Valid only when addr is not the prologue.
func prevFooterAddr(addr int) int { return addr - footerSize }

// prevBlockAddr returns the address of the block whose footer sits at
// prevFooterAddr(addr), i.e. the block immediately to the left of addr.
func prevBlockAddr(addr, prevSize int) int { return addr - prevSize }

// isAligned reports whether addr is a valid 8-byte-aligned address.
func isAligned(addr int) bool { return addr%align == 0 }
