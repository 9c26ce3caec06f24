package engine

import (
	"bytes"
	"testing"

	"github.com/jsabi/coreabi/internal/core"
)

// newTestEngine brings up a bare, uninitialized engine with buffers in
// place of stdout/stderr, the same shape the teacher's worker_test.go
// newTestEngine helper takes for its own engine/pool setup.
func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, diag bytes.Buffer
	e, err := New(&out, &diag)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	return e, &out, &diag
}

// initTestEngine drives Init to completion and fails the test immediately
// if it doesn't return core.OK, printing whatever landed on the diagnostic
// buffer so a failure is diagnosable without re-running anything.
func initTestEngine(t *testing.T, cfg *core.Config, source, bindings string, wrapperSrc [][]byte) (*Engine, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	e, out, diag := newTestEngine(t)
	if code := e.Init(cfg, []byte(source), []byte(bindings), wrapperSrc); code != core.OK {
		t.Fatalf("Init: %s\ndiag: %s", code, diag.String())
	}
	return e, out, diag
}

// writeI32Arg grows the engine's linear memory and writes v at address 0,
// the flat little-endian argument buffer shape InvokeExport expects for a
// single non-paramptr I32 parameter.
func writeI32Arg(e *Engine, v int32) uint32 {
	e.mem.grow(4)
	putLE32(e.mem.data[0:4], uint32(v))
	return 0
}

func writeI64Arg(e *Engine, v int64) uint32 {
	e.mem.grow(8)
	putLE64(e.mem.data[0:8], uint64(v))
	return 0
}
