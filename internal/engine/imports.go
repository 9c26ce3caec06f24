package engine

import (
	"fmt"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"

	"github.com/jsabi/coreabi/internal/core"
)

// sampleDiscriminator is the prime multiplier coreabi_sample_i32 applies
// so the splicer can tell the get half of the compiled sample from its
// set half (spec §4.4, §6 coreabi_sample_*). Grounded on original_source's
// splicer sample constant.
const sampleDiscriminator = 3

// installImportWrapperTable compiles, links and evaluates one import
// wrapper module per declared import (spec §3, §4.4), registered under the
// import's name, and keeps the module records in declaration order. The
// JS function object for an import is that module's default export. No
// per-index native stub is constructed here: what a wrapper does when
// called is whatever its module source defines.
func (e *Engine) installImportWrapperTable(decls []core.ImportDecl, wrapperSrc [][]byte) core.InitCode {
	e.wrappers = make([]lib.TJSValue, len(decls))
	for i, d := range decls {
		specifier := d.Name // Module Registry category (c): specifier is the import's own name
		if err := e.compileModule(specifier, wrapperSrc[i]); err != nil {
			fmt.Fprintf(e.Diag, "ImportWrapperCompile: %q: %v\n", d.Name, err)
			return core.ImportWrapperCompile
		}
		mod := e.registry.bySpecifier[specifier]
		if err := e.linkAndEvaluate(mod); err != nil {
			fmt.Fprintf(e.Diag, "ImportWrapperCompile: %q: %v\n", d.Name, err)
			return core.ImportWrapperCompile
		}
		e.wrappers[i] = mod
	}
	return core.OK
}

// registerSampleFunctions installs the four coreabi_sample_i32/i64/f32/f64
// functions spec §4.4 requires: each is a trivial identity-like operation
// on one value of its CoreType, kept reachable so whole-program
// optimization cannot eliminate it. They are not invoked by the runtime
// itself — they exist as templates the post-compilation splicer reads to
// emit generic get/set code for the four CoreTypes, split at the point
// the I32 sample's discriminating prime multiplier marks (spec §4.4,
// grounded on original_source's splicer sample constant).
func (e *Engine) registerSampleFunctions(bindingsGlobal lib.TJSValue) error {
	i32Fn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) != 1 {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "coreabi_sample_i32: expected 1 argument")
		}
		v := int32(lib.ToUint32(e.h.tls, e.h.ctx, args[0])) * sampleDiscriminator
		return lib.XJS_NewInt32(e.h.tls, e.h.ctx, v)
	}
	i64Fn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) != 1 {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "coreabi_sample_i64: expected 1 argument")
		}
		v, err := e.fromBigInt64(args[0])
		if err != nil {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "coreabi_sample_i64: %v", err)
		}
		return e.toBigInt64(v)
	}
	f32Fn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) != 1 {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "coreabi_sample_f32: expected 1 argument")
		}
		return lib.XJS_NewFloat64(e.h.tls, e.h.ctx, lib.XJS_ToFloat64Unchecked(e.h.tls, e.h.ctx, args[0]))
	}
	f64Fn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) != 1 {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "coreabi_sample_f64: expected 1 argument")
		}
		return lib.XJS_NewFloat64(e.h.tls, e.h.ctx, lib.XJS_ToFloat64Unchecked(e.h.tls, e.h.ctx, args[0]))
	}

	samplers := []struct {
		name string
		fn   func(uintptr, lib.TJSValue, int32, uintptr) lib.TJSValue
	}{
		{"coreabi_sample_i32", i32Fn},
		{"coreabi_sample_i64", i64Fn},
		{"coreabi_sample_f32", f32Fn},
		{"coreabi_sample_f64", f64Fn},
	}
	for _, s := range samplers {
		fnPtr := libc.NewCallback(s.fn)
		if err := e.h.setNativeFunction(bindingsGlobal, s.name, fnPtr, 1); err != nil {
			return err
		}
	}
	return nil
}

// toBigInt64 implements coreabi_to_bigint64 (spec §6): boxes a Go int64 as
// a JS BigInt via the raw C API, since modernc.org/quickjs's high-level
// wrapper has no BigInt constructor.
func (e *Engine) toBigInt64(v int64) lib.TJSValue {
	return lib.XJS_NewBigInt64(e.h.tls, e.h.ctx, v)
}

// fromBigInt64 implements coreabi_from_bigint64: unboxes a JS BigInt back
// to a Go int64, throwing TypeError (surfaced to the Call Bridge as a
// marshaling failure) if val is not a BigInt.
func (e *Engine) fromBigInt64(val lib.TJSValue) (int64, error) {
	var out int64
	if lib.XJS_ToBigInt64(e.h.tls, e.h.ctx, &out, val) < 0 {
		return 0, fmt.Errorf("value is not a BigInt")
	}
	return out, nil
}

// registerGetImport installs coreabi_get_import(index) (spec §6): the
// anchor a compiled import wrapper calls to retrieve the host-side
// function object for its own index, resolved from the wrapper's module
// namespace rather than the bindings module's, since each wrapper compiles
// and links independently (spec §4.2).
func (e *Engine) registerGetImport(bindingsGlobal lib.TJSValue) error {
	fn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) != 1 {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "coreabi_get_import: expected (index)")
		}
		index := int(lib.ToUint32(e.h.tls, e.h.ctx, args[0]))
		if index < 0 || index >= len(e.wrappers) {
			return lib.XJS_ThrowRangeError(e.h.tls, e.h.ctx, "coreabi_get_import: index %d out of bounds", index)
		}
		ns := e.namespace(e.wrappers[index])
		val, err := e.h.getPropertyStr(ns, "default")
		if err != nil {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "coreabi_get_import: %v", err)
		}
		return val
	}
	fnPtr := libc.NewCallback(fn)
	return e.h.setNativeFunction(bindingsGlobal, "coreabi_get_import", fnPtr, 1)
}

