package engine

import (
	"io"

	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"

	"github.com/jsabi/coreabi/internal/core"
)

// Engine is the QuickJS-backed implementation of the runtime state
// singleton described in spec §3 ("Runtime State"). It owns the engine
// context, every persistent root, the Module Registry, and the linear
// memory that backs the Memory Bridge. There is exactly one Engine per
// process (spec §1 Non-goals: no multi-tenancy).
type Engine struct {
	vm *quickjs.VM
	h  cHandles

	Debug bool
	Diag  io.Writer // stderr: exceptions, diagnostics, console.warn/error (spec §4.9)
	Out   io.Writer // stdout: console.log/info/debug (spec §4.9)

	registry *moduleRegistry

	userModule     lib.TJSValue
	bindingsModule lib.TJSValue

	exports  []exportEntry
	wrappers []lib.TJSValue // persistent roots, one per declared import, in order

	mem *memoryBridge

	rejections *rejectionTracker

	Call *core.CallState
}

// New creates an Engine with a fresh QuickJS VM and extracts the raw C API
// handles it needs for module linking, BigInt bridging, and the rejection
// tracker. Corresponds to the first steps of spec §4.6 ("engine startup →
// context → microtask queue").
func New(out, diag io.Writer) (*Engine, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, err
	}

	h, err := extractHandles(vm)
	if err != nil {
		vm.Close()
		return nil, err
	}
	if err := h.smokeTest(); err != nil {
		vm.Close()
		return nil, err
	}

	e := &Engine{
		vm:       vm,
		h:        h,
		Out:      out,
		Diag:     diag,
		registry: newModuleRegistry(),
		Call:     core.NewCallState(),
	}
	e.mem = newMemoryBridge(e)
	e.rejections = newRejectionTracker(e)
	return e, nil
}

// Close releases the underlying VM. Never called during normal operation —
// the runtime state lives for the process lifetime (spec §9) — but kept
// for tests that spin up throwaway engines.
func (e *Engine) Close() {
	e.vm.Close()
}

// VM exposes the high-level wrapper for callers that only need
// Eval/RegisterFunc-level access.
func (e *Engine) VM() *quickjs.VM { return e.vm }
