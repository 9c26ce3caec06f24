package engine

import (
	"fmt"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
)

// memoryBridge is the Memory Bridge of spec §3/§4.3: a single grow-only
// linear memory region, a tracked `realloc` (spec's `cabi_realloc`, whose
// allocations are recorded on the current call's free list) and an
// untracked `cabi_realloc_adapter` used by the splicer's own bookkeeping,
// plus a JS-visible `buffer` view that must be re-created whenever the
// region grows, since a grown Go slice may have moved.
type memoryBridge struct {
	e *Engine

	data []byte

	bufferVal  lib.TJSValue
	bufferLive bool // false once invalidated by growth, recreated lazily
}

func newMemoryBridge(e *Engine) *memoryBridge {
	return &memoryBridge{e: e}
}

// grow extends the linear memory to at least size bytes and invalidates
// the cached JS ArrayBuffer view — spec §4.3's "a grow must invalidate any
// previously vended buffer view" invariant.
func (m *memoryBridge) grow(size int) {
	if size <= len(m.data) {
		return
	}
	grown := make([]byte, size)
	copy(grown, m.data)
	m.data = grown
	if m.bufferLive {
		lib.XFreeValue(m.e.h.tls, m.e.h.ctx, m.bufferVal)
		m.bufferLive = false
	}
}

// reallocTracked implements `cabi_realloc`: grows memory as needed and
// records the returned address on the current call's free list so the
// Call Bridge can account for every allocation a single `call` made
// (spec §4.7's per-call allocation accounting).
func (m *memoryBridge) reallocTracked(oldPtr, oldSize, align, newSize uint32) uint32 {
	addr := m.reallocAdapter(oldPtr, oldSize, align, newSize)
	if m.e.Call != nil && !m.e.Call.Idle() {
		m.e.Call.Track(addr)
	}
	return addr
}

// reallocAdapter implements `cabi_realloc_adapter`: the untracked variant,
// used when the caller (the Import Wrapper Table, or bindings-internal
// bookkeeping) manages its own lifetime rather than relying on the Call
// Bridge's free list.
func (m *memoryBridge) reallocAdapter(oldPtr, oldSize, _align, newSize uint32) uint32 {
	if newSize == 0 {
		return 0
	}
	addr := uint32(len(m.data))
	if oldPtr != 0 && oldSize > 0 {
		addr = oldPtr
		need := int(oldPtr) + int(newSize)
		m.grow(need)
		return addr
	}
	m.grow(int(addr) + int(newSize))
	return addr
}

// ReallocTracked exposes cabi_realloc to the ABI entry point layer.
func (e *Engine) ReallocTracked(ptr, oldSize, align, newSize uint32) uint32 {
	return e.mem.reallocTracked(ptr, oldSize, align, newSize)
}

// ReallocAdapter exposes cabi_realloc_adapter to the ABI entry point layer.
func (e *Engine) ReallocAdapter(ptr, oldSize, align, newSize uint32) uint32 {
	return e.mem.reallocAdapter(ptr, oldSize, align, newSize)
}

// view returns (and lazily recreates) the JS ArrayBuffer wrapping the
// current linear memory. Copies rather than zero-copy-wraps the Go slice:
// modernc.org/libquickjs gives no stable way to pin a Go-GC'd slice's
// backing array for the runtime's C heap to alias, so every fetch after a
// growth takes one copy — acceptable since spec places no performance
// invariant on `buffer`, only the invalidate-on-growth one (§4.3).
func (m *memoryBridge) view() (lib.TJSValue, error) {
	if m.bufferLive {
		return m.bufferVal, nil
	}
	cData, err := libc.CString(string(m.data))
	if err != nil {
		return lib.TJSValue{}, err
	}
	defer libc.Xfree(m.e.h.tls, cData)
	val := lib.XJS_NewArrayBufferCopy(m.e.h.tls, m.e.h.ctx, cData, lib.Tsize_t(len(m.data)))
	if lib.XJS_IsException(m.e.h.tls, val) != 0 {
		return lib.TJSValue{}, fmt.Errorf("MemBuffer: allocating ArrayBuffer view")
	}
	m.bufferVal = val
	m.bufferLive = true
	return val, nil
}

// syncFromJS copies the live ArrayBuffer's current bytes back into the
// linear memory slice. Since view() hands guest code a copy rather than a
// zero-copy alias (modernc.org/libquickjs gives no way to pin a Go slice's
// backing array for the C heap to write through directly), any write the
// guest makes via that buffer — writing a retptr return area, for
// instance — is invisible to the host side until this runs. Called once
// after every `call` invocation, since that's the only place guest code
// runs between two points the host reads linear memory at.
func (m *memoryBridge) syncFromJS() {
	if !m.bufferLive {
		return
	}
	var size lib.Tsize_t
	ptr := lib.XJS_GetArrayBuffer(m.e.h.tls, m.e.h.ctx, &size, m.bufferVal)
	if ptr == 0 {
		return
	}
	n := int(size)
	if n > len(m.data) {
		n = len(m.data)
	}
	copy(m.data, libc.GoBytes(ptr, n))
}

// installBufferGetter wires `buffer` onto obj as a native accessor
// property (Object.defineProperty with a getter, installed from Go the
// same way the host-side builtins install DOM-like accessors), so every
// read after a growth sees the fresh view without the guest needing to
// know growth happened.
func (m *memoryBridge) installBufferGetter(obj lib.TJSValue) error {
	getter := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		val, err := m.view()
		if err != nil {
			return lib.XJS_ThrowTypeError(m.e.h.tls, m.e.h.ctx, "MemBuffer: %v", err)
		}
		return val
	}
	fnPtr := libc.NewCallback(getter)
	return m.e.h.defineAccessor(obj, "buffer", fnPtr)
}

// installRealloc exposes `realloc` (tracked) on obj for guest code calling
// back into the host during a `call`, per spec §4.3/§4.7.
func (m *memoryBridge) installRealloc(obj lib.TJSValue) error {
	fn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) != 4 {
			return lib.XJS_ThrowTypeError(m.e.h.tls, m.e.h.ctx, "realloc: expected 4 arguments")
		}
		oldPtr := lib.ToUint32(m.e.h.tls, m.e.h.ctx, args[0])
		oldSize := lib.ToUint32(m.e.h.tls, m.e.h.ctx, args[1])
		align := lib.ToUint32(m.e.h.tls, m.e.h.ctx, args[2])
		newSize := lib.ToUint32(m.e.h.tls, m.e.h.ctx, args[3])
		addr := m.reallocTracked(oldPtr, oldSize, align, newSize)
		return lib.XJS_NewUint32(m.e.h.tls, m.e.h.ctx, addr)
	}
	fnPtr := libc.NewCallback(fn)
	return m.e.h.setNativeFunction(obj, "realloc", fnPtr, 4)
}
