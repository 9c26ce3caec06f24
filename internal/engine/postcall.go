package engine

import (
	"crypto/rand"
	"encoding/binary"

	lib "modernc.org/libquickjs"
)

// ReseedMathRandom resets the engine's Math.random seed. Called exactly
// once, on the first `call` after initialization (spec §9 Open Question
// b, "first call only" taken as canonical). No example repo in the pack
// seeds a JS engine's internal RNG from Go, so this reaches for
// crypto/rand directly rather than inventing a dependency for an eight
// byte read.
func (e *Engine) ReseedMathRandom() {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return
	}
	lib.XJS_SetRandSeed(e.h.tls, e.h.rt, binary.LittleEndian.Uint64(seed[:]))
}

// ReleaseFreeList implements the first half of `post_call`: release every
// address on the current call's free-list via the untracked reallocator
// with new_size=0 (the engine's free primitive), then clear the list.
// The linear memory model here is a grow-only Go byte slice, so "release"
// has no separate free path of its own: reallocAdapter returns at once for
// new_size=0 and no memory is reclaimed. What remains is the bookkeeping,
// emptying the list so no address is carried into the next call. The
// retptr return area is allocated untracked and is never on this list.
func (e *Engine) ReleaseFreeList() {
	for _, addr := range e.Call.FreeList {
		e.mem.reallocAdapter(addr, 0, 0, 0)
	}
	e.Call.FreeList = e.Call.FreeList[:0]
}

// DrainAndGC drains the microtask queue until empty and offers the engine
// a GC opportunity — the second half of `post_call` (spec §4.7, §5).
func (e *Engine) DrainAndGC() {
	e.h.executePendingJobs()
	e.h.runGC()
}
