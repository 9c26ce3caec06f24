package engine

import (
	"unicode/utf8"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
)

// installTextCodec registers TextEncoder/TextDecoder. Spec §1 treats the
// text-codec builtin as an externally-fixed global the splicer's generated
// glue already assumes exists, so only the UTF-8 encoding both classes are
// specified to support (spec §4.9) is implemented — no legacy encodings,
// no streaming decode.
func (e *Engine) installTextCodec(global lib.TJSValue) error {
	if err := e.installTextEncoder(global); err != nil {
		return err
	}
	return e.installTextDecoder(global)
}

func (e *Engine) installTextEncoder(global lib.TJSValue) error {
	proto := lib.XJS_NewObject(e.h.tls, e.h.ctx)
	encodeFn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		var s string
		if len(args) > 0 {
			s = e.goString(args[0])
		}
		cData, err := libc.CString(s)
		if err != nil {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "TextEncoder.encode: %v", err)
		}
		defer libc.Xfree(e.h.tls, cData)
		return lib.XJS_NewArrayBufferCopy(e.h.tls, e.h.ctx, cData, lib.Tsize_t(len(s)))
	}
	fnPtr := libc.NewCallback(encodeFn)
	if err := e.h.setNativeFunction(proto, "encode", fnPtr, 1); err != nil {
		return err
	}

	ctor := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		return proto
	}
	ctorPtr := libc.NewCallback(ctor)
	if err := e.h.setNativeFunction(global, "TextEncoder", ctorPtr, 0); err != nil {
		return err
	}
	return nil
}

func (e *Engine) installTextDecoder(global lib.TJSValue) error {
	proto := lib.XJS_NewObject(e.h.tls, e.h.ctx)
	decodeFn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) == 0 {
			return lib.XJS_NewString(e.h.tls, e.h.ctx, "")
		}
		buf, size, ok := lib.XJS_GetArrayBuffer(e.h.tls, e.h.ctx, args[0])
		if !ok {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "TextDecoder.decode: expected an ArrayBuffer")
		}
		raw := libc.GoBytes(buf, int(size))
		if !utf8.Valid(raw) {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "TextDecoder.decode: invalid UTF-8")
		}
		return lib.XJS_NewStringLen(e.h.tls, e.h.ctx, string(raw))
	}
	fnPtr := libc.NewCallback(decodeFn)
	if err := e.h.setNativeFunction(proto, "decode", fnPtr, 1); err != nil {
		return err
	}

	ctor := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		return proto
	}
	ctorPtr := libc.NewCallback(ctor)
	return e.h.setNativeFunction(global, "TextDecoder", ctorPtr, 0)
}
