package engine

import (
	"unsafe"

	lib "modernc.org/libquickjs"

	"github.com/jsabi/coreabi/internal/core"
	"github.com/jsabi/coreabi/internal/diagnostics"
)

// InvokeExport performs steps 3-8 of spec §4.7's `call`: marshal the
// argument buffer at argPtr into engine values, invoke the resolved JS
// callable, marshal its return, and report the return-area pointer (0 if
// the export has no return). The precondition checks and the
// current_index/free-list bookkeeping belong to internal/callbridge,
// which calls this once it has already validated the state machine.
func (e *Engine) InvokeExport(index int, argPtr uint32) uint32 {
	entry, ok := e.Export(index)
	if !ok {
		diagnostics.Abort(e.Diag, "call: export index %d out of range", index)
	}
	sig := entry.Sig

	args, retArea := e.marshalArgs(sig, argPtr)

	this := lib.XJS_Undefined()
	result := lib.XJS_Call(e.h.tls, e.h.ctx, entry.Fn, this, int32(len(args)), argvPtr(args))
	if lib.XJS_IsException(e.h.tls, result) != 0 {
		text := e.goString(e.h.takeException())
		diagnostics.Abort(e.Diag, "call: export %q raised: %s", entry.Name, text)
	}
	e.mem.syncFromJS()

	if sig.RetPtr {
		return retArea
	}
	if !sig.HasRet {
		return 0
	}
	return e.writeScalarReturn(sig, result)
}

// marshalArgs builds the JS argument list for one call: either the single
// paramptr address, or a walk of the flat little-endian word sequence one
// parameter at a time. When the signature is retptr, a trailing return
// area is allocated with the untracked reallocator (spec §4.7 step 5 —
// "NOT tracked in the free list, it is returned to the caller") and its
// address appended as the final argument.
func (e *Engine) marshalArgs(sig core.Signature, argPtr uint32) (args []lib.TJSValue, retArea uint32) {
	if sig.ParamPtr {
		addr := le32(e.mem.data[argPtr : argPtr+4])
		args = []lib.TJSValue{lib.XJS_NewInt32(e.h.tls, e.h.ctx, int32(addr))}
	} else {
		cursor := argPtr
		args = make([]lib.TJSValue, 0, len(sig.Params))
		for _, t := range sig.Params {
			width := uint32(t.Width())
			buf := e.mem.data[cursor : cursor+width]
			args = append(args, e.boxWord(t, buf))
			cursor += width
		}
	}
	if sig.RetPtr {
		retArea = e.mem.reallocAdapter(0, 0, 8, uint32(sig.RetSize))
		args = append(args, lib.XJS_NewInt32(e.h.tls, e.h.ctx, int32(retArea)))
	}
	return args, retArea
}

func (e *Engine) boxWord(t core.CoreType, buf []byte) lib.TJSValue {
	switch t {
	case core.I32:
		return lib.XJS_NewInt32(e.h.tls, e.h.ctx, int32(le32(buf)))
	case core.I64:
		return e.toBigInt64(int64(le64(buf)))
	case core.F32:
		return lib.XJS_NewFloat64(e.h.tls, e.h.ctx, float64(float32frombits(le32(buf))))
	case core.F64:
		return lib.XJS_NewFloat64(e.h.tls, e.h.ctx, float64frombits(le64(buf)))
	default:
		diagnostics.Abort(e.Diag, "call: unknown CoreType in signature")
		return lib.TJSValue{}
	}
}

// writeScalarReturn implements spec §4.7 step 7: allocate retsize tracked
// bytes and write the scalar return value, coercing I64 through the
// BigInt bridge and F32/F64 from either an engine Int32 or Double. An I64
// return aborts only when fromBigInt64 fails; the value is not otherwise
// checked against the unsigned 64-bit range.
func (e *Engine) writeScalarReturn(sig core.Signature, result lib.TJSValue) uint32 {
	addr := e.mem.reallocTracked(0, 0, 8, uint32(sig.RetSize))
	buf := e.mem.data[addr : addr+uint32(sig.RetSize)]
	switch sig.Ret {
	case core.I32:
		putLE32(buf, uint32(lib.XJS_ToInt32Unchecked(e.h.tls, e.h.ctx, result)))
	case core.I64:
		v, err := e.fromBigInt64(result)
		if err != nil {
			diagnostics.Abort(e.Diag, "call: I64 return out of range: %v", err)
		}
		putLE64(buf, uint64(v))
	case core.F32:
		putLE32(buf, float32bits(float32(lib.XJS_ToFloat64Unchecked(e.h.tls, e.h.ctx, result))))
	case core.F64:
		putLE64(buf, float64bits(lib.XJS_ToFloat64Unchecked(e.h.tls, e.h.ctx, result)))
	default:
		diagnostics.Abort(e.Diag, "call: unknown CoreType in return signature")
	}
	return addr
}

// argvPtr produces the C-compatible pointer XJS_Call expects for its argv
// parameter; an empty argument list passes a null pointer. args is kept
// alive by the caller's stack frame for the duration of the call, so this
// is safe the same way the teacher's own native-function trampolines pass
// a Go-backed argv slice to XJS_Call.
func argvPtr(args []lib.TJSValue) uintptr {
	if len(args) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&args[0]))
}
