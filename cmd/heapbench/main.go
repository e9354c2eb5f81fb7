// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// heapbench drives Allocator through a random allocate/reallocate/free
// workload and reports how large the backing heap grew, the same shape of
// exercise as _examples/cznic-exp/lldb/lab/1/main.go's FLT-comparison
// driver, simplified down to this package's single allocation policy (no
// FLT-kind or compression axes to sweep).

package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"theap/heap"
)

var (
	maxHandles = flag.Int("n", 1000, "target live allocation count")
	maxLen     = flag.Int("maxlen", 1<<12, "maximum payload size per allocation")
	seed       = flag.Int64("seed", 42, "PRNG seed")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	opts := heap.DefaultOptions()
	a := heap.NewAllocator(heap.NewSliceHeapSource(), opts)
	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}

	rng := rand.New(rand.NewSource(*seed))
	var handles []int

	t0 := time.Now()

	for len(handles) < *maxHandles {
		for nalloc := len(handles)/2 + 1; nalloc != 0; nalloc-- {
			ln := rng.Intn(*maxLen + 1)
			h := a.Allocate(ln)
			if h != heap.NullAddr {
				handles = append(handles, h)
			}
		}

		for nrealloc := len(handles) / 2; nrealloc != 0 && len(handles) != 0; nrealloc-- {
			i := rng.Intn(len(handles))
			ln := rng.Intn(*maxLen + 1)
			h := a.Reallocate(handles[i], ln)
			if h == heap.NullAddr {
				// ln == 0: Reallocate freed handles[i] and returned no
				// replacement. Drop the slot instead of storing NullAddr,
				// mirroring the Allocate loop above.
				last := len(handles) - 1
				handles[i] = handles[last]
				handles = handles[:last]
				continue
			}
			handles[i] = h
		}

		for ndel := len(handles) / 4; ndel != 0 && len(handles) > 1; ndel-- {
			i := rng.Intn(len(handles))
			a.Free(handles[i])
			last := len(handles) - 1
			handles[i] = handles[last]
			handles = handles[:last]
		}
	}

	if err := a.CheckHeap(false); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d handles, heap %d bytes, time %s\n", len(handles), a.Len(), time.Since(t0))
}
