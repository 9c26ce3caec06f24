// Package engine implements the runtime's only JS-engine backend: QuickJS,
// driven partly through modernc.org/quickjs's high-level VM wrapper and
// partly through the raw transpiled C API (modernc.org/libquickjs) wherever
// the high-level wrapper has no equivalent — module linking, the BigInt
// bridge, the host promise-rejection tracker, and native property getters.
// This mirrors the escape hatch the teacher repo uses for binary transfer
// in its own internal/quickjs/runtime.go (tryExtractVMInternals + lib.XJS_*).
package engine

import (
	"fmt"
	"reflect"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

// cHandles caches the tls/ctx pointers extracted from a quickjs.VM so raw
// C API calls (lib.XJS_*) can be issued directly against it. Extraction is
// unsafe/reflect-based because modernc.org/quickjs does not export these
// fields; if its struct layout ever changes, extraction fails loudly at
// initialization (spec's JSInit code) rather than silently misbehaving.
type cHandles struct {
	tls *libc.TLS
	ctx uintptr // JSContext*
	rt  uintptr // JSRuntime*
}

// extractHandles mirrors the teacher's tryExtractVMInternals: cContext is
// the VM's first field, the runtime pointer and its TLS follow it.
func extractHandles(vm *quickjs.VM) (h cHandles, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic extracting VM internals: %v", p)
		}
	}()

	vmType := reflect.TypeOf(vm).Elem()
	vmPtr := uintptr(unsafe.Pointer(vm))

	h.ctx = *(*uintptr)(unsafe.Pointer(vmPtr))
	if h.ctx == 0 {
		return h, fmt.Errorf("JSContext is nil")
	}

	rtField, ok := vmType.FieldByName("runtime")
	if !ok {
		return h, fmt.Errorf("quickjs.VM missing 'runtime' field")
	}
	rtPtr := *(*uintptr)(unsafe.Pointer(vmPtr + rtField.Offset))
	if rtPtr == 0 {
		return h, fmt.Errorf("runtime pointer is nil")
	}
	h.rt = rtPtr

	h.tls = *(**libc.TLS)(unsafe.Pointer(rtPtr + unsafe.Sizeof(uintptr(0))))
	if h.tls == nil {
		return h, fmt.Errorf("TLS is nil")
	}
	return h, nil
}

// smokeTest performs a trivial round-trip through the raw API to confirm
// the extracted pointers are actually usable, the same check the teacher
// runs before trusting its binary-transfer fast path.
func (h cHandles) smokeTest() error {
	glob := lib.XJS_GetGlobalObject(h.tls, h.ctx)
	if lib.XJS_IsException(h.tls, glob) != 0 {
		return fmt.Errorf("smoke test: JS_GetGlobalObject raised an exception")
	}
	lib.XFreeValue(h.tls, h.ctx, glob)
	return nil
}

// cString allocates a NUL-terminated C string the caller must free with
// libc.Xfree.
func (h cHandles) cString(s string) (uintptr, error) {
	return libc.CString(s)
}

// setPropertyStr sets an own property on a JS object value by C string
// name, consuming one reference to val (JS_SetPropertyStr semantics).
func (h cHandles) setPropertyStr(obj lib.TJSValue, name string, val lib.TJSValue) error {
	cName, err := h.cString(name)
	if err != nil {
		return err
	}
	defer libc.Xfree(h.tls, cName)
	if lib.XJS_SetPropertyStr(h.tls, h.ctx, obj, cName, val) < 0 {
		return fmt.Errorf("setting property %q", name)
	}
	return nil
}

// getPropertyStr reads an own property from a JS object by C string name.
// The caller owns the returned value and must free it.
func (h cHandles) getPropertyStr(obj lib.TJSValue, name string) (lib.TJSValue, error) {
	cName, err := h.cString(name)
	if err != nil {
		return lib.TJSValue{}, err
	}
	defer libc.Xfree(h.tls, cName)
	return lib.XJS_GetPropertyStr(h.tls, h.ctx, obj, cName), nil
}

// globalObject returns the realm's global object. Caller must free it.
func (h cHandles) globalObject() lib.TJSValue {
	return lib.XJS_GetGlobalObject(h.tls, h.ctx)
}

// pendingException reports whether the context currently has a pending
// exception (spec's "pending engine exception" concept used by C6/C8).
func (h cHandles) pendingException() bool {
	return lib.XJS_HasException(h.tls, h.ctx) != 0
}

// takeException clears and returns the pending exception value. Caller
// owns the returned value and must free it.
func (h cHandles) takeException() lib.TJSValue {
	return lib.XJS_GetException(h.tls, h.ctx)
}

// runGC offers the engine a garbage-collection opportunity (used at the
// tail of post_call and at the end of the init pass, per spec §4.6/§4.7).
func (h cHandles) runGC() {
	lib.XJS_RunGC(h.tls, h.rt)
}

// executePendingJobs drains the microtask queue until empty, the engine
// primitive behind both DrainAndGC (C7) and the end of Init (C6), as in the teacher's own
// executePendingJobs helper in internal/quickjs/runtime.go.
func (h cHandles) executePendingJobs() {
	for {
		var exCtx uintptr
		ret := lib.XJS_ExecutePendingJob(h.tls, lib.XJS_GetRuntime(h.tls, h.ctx), &exCtx)
		if ret <= 0 {
			return
		}
	}
}

// defineAccessor installs a getter-only native accessor property on obj,
// the mechanism the Memory Bridge uses for `buffer` (spec §4.3) so every
// read re-evaluates against the current linear memory instead of a value
// captured once at init time.
func (h cHandles) defineAccessor(obj lib.TJSValue, name string, getterPtr uintptr) error {
	cName, err := h.cString(name)
	if err != nil {
		return err
	}
	defer libc.Xfree(h.tls, cName)
	getterFn := lib.XJS_NewCFunction(h.tls, h.ctx, getterPtr, cName, 0)
	if lib.XJS_DefinePropertyGetSet(h.tls, h.ctx, obj, cName, getterFn, lib.TJSValue{}, lib.JS_PROP_CONFIGURABLE) < 0 {
		return fmt.Errorf("defining accessor %q", name)
	}
	return nil
}

// setNativeFunction installs a plain callable native function property on
// obj, used for `realloc` (spec §4.3), the console methods, the
// coreabi_* anchors and the other builtins.
func (h cHandles) setNativeFunction(obj lib.TJSValue, name string, fnPtr uintptr, arity int32) error {
	cName, err := h.cString(name)
	if err != nil {
		return err
	}
	defer libc.Xfree(h.tls, cName)
	fn := lib.XJS_NewCFunction(h.tls, h.ctx, fnPtr, cName, arity)
	if lib.XJS_IsException(h.tls, fn) != 0 {
		return fmt.Errorf("creating native function %q", name)
	}
	return h.setPropertyStr(obj, name, fn)
}
