package engine

import (
	"strings"
	"testing"

	"github.com/jsabi/coreabi/internal/core"
)

// TestIdentityExportRoundTrip covers the identity-export scenario: a
// declared I32 export resolved from the bindings module, invoked with a
// flat argument buffer, returning the same value through a freshly
// allocated return area.
func TestIdentityExportRoundTrip(t *testing.T) {
	cfg := &core.Config{
		SourceName: "user_source",
		Exports: []core.ExportDecl{
			{Name: "identity", Sig: core.Signature{Params: []core.CoreType{core.I32}, HasRet: true, Ret: core.I32, RetSize: 4}},
		},
	}
	e, _, _ := initTestEngine(t, cfg, "export const marker = 1;", "export function identity(x) { return x; }", nil)

	argPtr := writeI32Arg(e, 42)
	retAddr := e.InvokeExport(0, argPtr)
	got := int32(le32(e.mem.data[retAddr : retAddr+4]))
	if got != 42 {
		t.Fatalf("identity(42) = %d, want 42", got)
	}
}

// TestI64ExportRoundTrip covers the BigInt bridge: a full 64-bit value,
// including its sign bit, survives the box/unbox round trip unchanged.
func TestI64ExportRoundTrip(t *testing.T) {
	cfg := &core.Config{
		SourceName: "user_source",
		Exports: []core.ExportDecl{
			{Name: "identity64", Sig: core.Signature{Params: []core.CoreType{core.I64}, HasRet: true, Ret: core.I64, RetSize: 8}},
		},
	}
	e, _, _ := initTestEngine(t, cfg, "export const marker = 1;", "export function identity64(x) { return x; }", nil)

	const want = int64(-9223372036854775808) // bit pattern 0x8000000000000000
	argPtr := writeI64Arg(e, want)
	retAddr := e.InvokeExport(0, argPtr)
	got := int64(le64(e.mem.data[retAddr : retAddr+8]))
	if got != want {
		t.Fatalf("identity64(%d) = %d, want %d", want, got, want)
	}
}

// TestRetptrExportWritesThroughMemoryBuffer covers the retptr scenario: the
// export receives the return area's address as a plain argument and writes
// its result through `mem.buffer` from JS, which must be visible on the
// host side once the call returns (the ArrayBuffer view is a copy, so this
// exercises memoryBridge.syncFromJS).
func TestRetptrExportWritesThroughMemoryBuffer(t *testing.T) {
	cfg := &core.Config{
		SourceName: "user_source",
		Exports: []core.ExportDecl{
			{Name: "pair", Sig: core.Signature{Params: []core.CoreType{core.I32}, RetPtr: true, RetSize: 8}},
		},
	}
	bindings := `
		let mem, realloc;
		export function $initBindings(memView, reallocFn) { mem = memView; realloc = reallocFn; }
		export function pair(x, ptr) {
			const view = new DataView(mem.buffer);
			view.setInt32(ptr, x + 1, true);
			view.setInt32(ptr + 4, x + 2, true);
		}
	`
	e, _, _ := initTestEngine(t, cfg, "export const marker = 1;", bindings, nil)

	argPtr := writeI32Arg(e, 5)
	retArea := e.InvokeExport(0, argPtr)
	got := e.mem.data[retArea : retArea+8]
	want := []byte{6, 0, 0, 0, 7, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("retptr bytes = % x, want % x", got, want)
		}
	}
}

// TestUnknownImportSpecifierFailsSourceLink covers scenario 4: a bindings
// module importing a specifier the registry has no entry for must fail
// linking with SourceLink, and the diagnostic must name the specifier.
func TestUnknownImportSpecifierFailsSourceLink(t *testing.T) {
	e, _, diag := newTestEngine(t)
	cfg := &core.Config{SourceName: "user_source"}

	bindings := "import x from \"missing\";\nexport function noop() {}\n"
	code := e.Init(cfg, []byte("export const marker = 1;"), []byte(bindings), nil)
	if code != core.SourceLink {
		t.Fatalf("Init code = %s, want %s (diag: %s)", code, core.SourceLink, diag.String())
	}
	if !strings.Contains(diag.String(), "missing") {
		t.Errorf("diagnostic = %q, want it to mention the unresolved specifier", diag.String())
	}
}

// TestUnhandledRejectionCountAfterInit covers scenario 5: a promise
// rejected during module evaluation with no handler attached is still
// outstanding once Init finishes (the microtask drain at the end of Init
// attaches no handler), and is visible through UnhandledRejectionCount.
func TestUnhandledRejectionCountAfterInit(t *testing.T) {
	cfg := &core.Config{SourceName: "user_source"}
	source := "Promise.reject(new Error('boom'));\n"
	e, _, _ := initTestEngine(t, cfg, source, "export function noop() {}", nil)

	if got := e.UnhandledRejectionCount(); got != 1 {
		t.Fatalf("UnhandledRejectionCount() = %d, want 1", got)
	}
}
