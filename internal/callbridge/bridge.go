// Package callbridge implements the Call Bridge (C7): the ABI-facing
// call/post_call/check_init state machine described in spec §4.7. It owns
// the precondition checks and aborts the process on any violation; the
// value marshaling itself is delegated to internal/engine, which has the
// raw C API access the marshaling needs.
package callbridge

import (
	"github.com/jsabi/coreabi/internal/core"
	"github.com/jsabi/coreabi/internal/diagnostics"
	"github.com/jsabi/coreabi/internal/engine"
)

// Bridge is the process-wide Call Bridge instance. One Bridge wraps one
// Engine, matching spec §9's "at most one in-flight call, one runtime
// state singleton" model.
type Bridge struct {
	eng      *engine.Engine
	initCode core.InitCode
}

func New(eng *engine.Engine, initCode core.InitCode) *Bridge {
	return &Bridge{eng: eng, initCode: initCode}
}

// Call implements the ABI `call` entry point (spec §4.7). Preconditions:
// current_index is "none" and export_index is in range; any violation
// aborts the process with a one-line diagnostic, per spec §4.7's state
// machine ("any transition that finds the machine off its expected state
// aborts").
func (b *Bridge) Call(exportIndex int, argPtr uint32) uint32 {
	if !b.eng.Call.Idle() {
		diagnostics.Abort(b.eng.Diag, "call: re-entrant call while export %d is in flight", b.eng.Call.Current)
	}
	if exportIndex < 0 || exportIndex >= b.eng.ExportCount() {
		diagnostics.Abort(b.eng.Diag, "call: export index %d out of range", exportIndex)
	}

	if b.eng.Call.TakeFirstCall() {
		b.eng.ReseedMathRandom()
	}
	b.eng.Call.Current = exportIndex

	return b.eng.InvokeExport(exportIndex, argPtr)
}

// PostCall implements `post_call` (spec §4.7): precondition current_index
// equals export_index; resets current_index, releases and clears the
// free-list, drains microtasks, offers a GC opportunity. Re-entrancy
// (calling post_call without a preceding call, or with the wrong index)
// aborts.
func (b *Bridge) PostCall(exportIndex int) {
	if b.eng.Call.Idle() || b.eng.Call.Current != exportIndex {
		diagnostics.Abort(b.eng.Diag, "post_call: no matching in-flight call for export %d", exportIndex)
	}
	b.eng.ReleaseFreeList()
	b.eng.Call.Reset()
	b.eng.DrainAndGC()
}

// CheckInit implements `check_init`: returns the initialization error
// code, formatting and clearing any pending engine exception first (spec
// §4.7, §7 — "pending engine exceptions from compile/evaluate failures
// are preserved until check_init formats and clears them").
func (b *Bridge) CheckInit() core.InitCode {
	if b.eng == nil {
		// Initialization failed before an engine existed (config reading,
		// the byte stream, or engine bring-up itself) — there is no context
		// to hold a pending exception against, so there is nothing to format.
		return b.initCode
	}
	if b.eng.HasPendingException() {
		text := b.eng.TakePendingExceptionText()
		diagnostics.NewStream(b.eng.Diag).ReportException(b.initCode.String(), text)
	}
	return b.initCode
}
