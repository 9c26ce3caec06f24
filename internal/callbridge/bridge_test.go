package callbridge

import (
	"bytes"
	"testing"

	"github.com/jsabi/coreabi/internal/core"
	"github.com/jsabi/coreabi/internal/engine"
)

func newInitializedEngine(t *testing.T, cfg *core.Config, source, bindings string) (*engine.Engine, *bytes.Buffer) {
	t.Helper()
	var out, diag bytes.Buffer
	e, err := engine.New(&out, &diag)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(e.Close)
	if code := e.Init(cfg, []byte(source), []byte(bindings), nil); code != core.OK {
		t.Fatalf("Init: %s\ndiag: %s", code, diag.String())
	}
	return e, &diag
}

// TestCallPostCallRoundTrip drives a single export through Call then
// PostCall and checks the state machine lands back in the idle position
// with the free list released — the observable half of the
// release-before-reset ordering fix in PostCall (spec §4.7's "every
// tracked address is released before the machine returns to idle").
func TestCallPostCallRoundTrip(t *testing.T) {
	cfg := &core.Config{
		SourceName: "user_source",
		Exports: []core.ExportDecl{
			{Name: "allocThree", Sig: core.Signature{}},
		},
	}
	bindings := `
		let reallocFn;
		export function $initBindings(memView, rf) { reallocFn = rf; }
		export function allocThree() {
			reallocFn(0, 0, 8, 16);
			reallocFn(0, 0, 8, 16);
			reallocFn(0, 0, 8, 16);
		}
	`
	e, _ := newInitializedEngine(t, cfg, "export const marker = 1;", bindings)
	b := New(e, core.OK)

	b.Call(0, 0)
	if n := len(e.Call.FreeList); n != 3 {
		t.Fatalf("FreeList length after Call = %d, want 3", n)
	}
	if e.Call.Current != 0 {
		t.Fatalf("Call.Current after Call = %d, want 0", e.Call.Current)
	}

	b.PostCall(0)
	if !e.Call.Idle() {
		t.Fatalf("Call.Idle() after PostCall = false, want true")
	}
	if n := len(e.Call.FreeList); n != 0 {
		t.Fatalf("FreeList length after PostCall = %d, want 0", n)
	}
}

// TestCheckInitReportsInitCode covers the non-OK path: CheckInit returns
// the code the bridge was constructed with even though the engine itself
// initialized fine, without touching any pending exception.
func TestCheckInitReportsInitCode(t *testing.T) {
	cfg := &core.Config{SourceName: "user_source"}
	e, _ := newInitializedEngine(t, cfg, "export const marker = 1;", "export function noop() {}")
	b := New(e, core.SourceCompile)

	if code := b.CheckInit(); code != core.SourceCompile {
		t.Fatalf("CheckInit() = %s, want %s", code, core.SourceCompile)
	}
}

// TestCheckInitNilEngine covers JSInit: when engine bring-up itself failed
// there is no context to hold a pending exception against.
func TestCheckInitNilEngine(t *testing.T) {
	b := New(nil, core.JSInit)
	if code := b.CheckInit(); code != core.JSInit {
		t.Fatalf("CheckInit() = %s, want %s", code, core.JSInit)
	}
}
