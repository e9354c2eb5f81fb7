// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "testing"

func TestPackUnpackWord(t *testing.T) {
	cases := []struct {
		allocated bool
		size      int
	}{
		{false, 0},
		{true, 32},
		{false, maxBlockSize},
		{true, 128},
	}

	for _, c := range cases {
		w := packWord(c.allocated, c.size)
		gotAlloc, gotSize := unpackWord(w)
		if gotAlloc != c.allocated || gotSize != c.size {
			t.Fatalf("packWord(%v, %d) roundtrip: got (%v, %d)", c.allocated, c.size, gotAlloc, gotSize)
		}
	}
}

func TestWriteReadTag(t *testing.T) {
	b := make([]byte, 64)
	writeTag(b, 16, true, 48)

	allocated, size := readTag(b, 16)
	if !allocated || size != 48 {
		t.Fatalf("readTag: got (%v, %d), want (true, 48)", allocated, size)
	}
}

func TestWriteReadLink(t *testing.T) {
	b := make([]byte, 64)
	writeLink(b, 8, 123456)

	if got := readLink(b, 8); got != 123456 {
		t.Fatalf("readLink: got %d, want 123456", got)
	}

	writeLink(b, 24, noAddr)
	if got := readLink(b, 24); got != noAddr {
		t.Fatalf("readLink: got %d, want noAddr", got)
	}
}

func TestAddressArithmetic(t *testing.T) {
	const addr, size = 128, 64
	if got, want := footerOf(addr, size), addr+size-footerSize; got != want {
		t.Fatalf("footerOf: got %d, want %d", got, want)
	}
	if got, want := nextHeaderAddr(addr, size), addr+size; got != want {
		t.Fatalf("nextHeaderAddr: got %d, want %d", got, want)
	}
	if got, want := prevFooterAddr(addr), addr-footerSize; got != want {
		t.Fatalf("prevFooterAddr: got %d, want %d", got, want)
	}
	if got, want := prevBlockAddr(addr, 40), addr-40; got != want {
		t.Fatalf("prevBlockAddr: got %d, want %d", got, want)
	}
	if !isAligned(0) || !isAligned(8) || isAligned(4) {
		t.Fatalf("isAligned: wrong result")
	}
}

func TestAdjustedSize(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{1, MinBlockSize},
		{16, MinBlockSize},
		{24, 40},
		{100, 120},
		{200, 216},
	}

	for _, c := range cases {
		if got := adjustedSize(c.n); got != c.want {
			t.Fatalf("adjustedSize(%d): got %d, want %d", c.n, got, c.want)
		}
		if got := adjustedSize(c.n); got%align != 0 {
			t.Fatalf("adjustedSize(%d) = %d is not aligned", c.n, got)
		}
	}
}
