package engine

import (
	"fmt"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
)

// rejectionTracker is C8's promise half: it mirrors
// JS_SetHostPromiseRejectionTracker's bookkeeping in Go rather than the
// Promise.prototype monkey-patch a backend without a native hook would
// need. Rejections are kept as persistent roots in insertion order;
// a later "handled" notification removes the matching entry, so whatever
// remains is the unhandled-rejection set. The runtime itself never prints
// or clears it; it is only read through UnhandledRejectionCount.
type rejectionTracker struct {
	e *Engine

	pending []trackedRejection
}

type trackedRejection struct {
	promise lib.TJSValue
	reason  lib.TJSValue
}

func newRejectionTracker(e *Engine) *rejectionTracker {
	return &rejectionTracker{e: e}
}

// install registers the native tracker with the engine. QuickJS invokes
// the callback with is_handled=0 when a promise rejects with no handler
// attached yet, and again with is_handled=1 if a handler is attached
// later (including within the same microtask checkpoint) — spec §4.8's
// "a rejection observed-then-handled before the end of the turn is not
// reported" rule falls directly out of tracking both calls.
func (rt *rejectionTracker) install() error {
	tracker := func(ctx uintptr, promise lib.TJSValue, reason lib.TJSValue, isHandled int32, opaque uintptr) {
		if isHandled != 0 {
			rt.markHandled(promise)
			return
		}
		rt.pending = append(rt.pending, trackedRejection{promise: promise, reason: reason})
	}
	ptr := libc.NewCallback(tracker)
	if ptr == 0 {
		return fmt.Errorf("registering host promise rejection tracker")
	}
	lib.XJS_SetHostPromiseRejectionTracker(rt.e.h.tls, rt.e.h.rt, ptr, 0)
	return nil
}

func (rt *rejectionTracker) markHandled(promise lib.TJSValue) {
	for i, r := range rt.pending {
		if lib.XJS_SameValue(rt.e.h.tls, rt.e.h.ctx, r.promise, promise) != 0 {
			rt.pending = append(rt.pending[:i], rt.pending[i+1:]...)
			return
		}
	}
}

// Unhandled returns the rejections still outstanding (spec §4.8). post_call
// does not read or report this set.
func (rt *rejectionTracker) Unhandled() []trackedRejection {
	return rt.pending
}

// UnhandledRejectionCount exposes the size of the unhandled-rejection set.
// Spec §4.8: "the runtime does not itself consult the set; the bindings
// module or host tooling may query it" — this is that query surface.
func (e *Engine) UnhandledRejectionCount() int {
	return len(e.rejections.Unhandled())
}

// Reset empties the tracked-rejection set.
func (rt *rejectionTracker) Reset() {
	rt.pending = rt.pending[:0]
}

// FormatUnhandled renders the outstanding rejections for the diagnostic
// stream using the engine's own exception-stringification path, the same
// one the error reporter uses for a pending engine exception.
func (rt *rejectionTracker) FormatUnhandled() []string {
	out := make([]string, 0, len(rt.pending))
	for _, r := range rt.pending {
		out = append(out, fmt.Sprintf("unhandled promise rejection: %s", rt.e.stringify(r.reason)))
	}
	return out
}
