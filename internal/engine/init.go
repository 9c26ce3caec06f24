package engine

import (
	"fmt"
	"io"

	lib "modernc.org/libquickjs"

	"github.com/jsabi/coreabi/internal/core"
)

// Init drives the Initialization Driver's engine-facing half (spec §4.6):
// everything from "install builtins" through "populate the Export Table
// and Import Wrapper Table" and "drain microtasks". The byte-reading and
// config-parsing steps (C1, the sequential stream contract) happen in
// internal/initdriver, which calls Init once it has the declared byte
// counts and the raw module bytes in hand.
func (e *Engine) Init(cfg *core.Config, source, bindings []byte, wrapperSrc [][]byte) core.InitCode {
	e.Debug = cfg.Debug

	if err := e.installBuiltins(); err != nil {
		fmt.Fprintf(e.Diag, "Intrinsics: installing builtins: %v\n", err)
		return core.Intrinsics
	}

	global := e.h.globalObject()
	defer lib.XFreeValue(e.h.tls, e.h.ctx, global)
	if err := e.registerSampleFunctions(global); err != nil {
		fmt.Fprintf(e.Diag, "CustomIntrinsics: %v\n", err)
		return core.CustomIntrinsics
	}

	if len(cfg.Wrappers) != len(cfg.Imports) {
		fmt.Fprintf(e.Diag, "TypeParse: IMPORT_WRAPPER_CNT and IMPORT_CNT must match (%d vs %d)\n", len(cfg.Wrappers), len(cfg.Imports))
		return core.TypeParse
	}
	if code := e.installImportWrapperTable(cfg.Imports, wrapperSrc); code != core.OK {
		return code
	}
	if err := e.registerGetImport(global); err != nil {
		fmt.Fprintf(e.Diag, "ImportFn: %v\n", err)
		return core.ImportFn
	}

	e.registry.sourceName = cfg.SourceName
	if err := e.compileModule(cfg.SourceName, source); err != nil {
		fmt.Fprintf(e.Diag, "SourceCompile: %v\n", err)
		return core.SourceCompile
	}
	if err := e.compileModule(bindingsSpecifier, bindings); err != nil {
		fmt.Fprintf(e.Diag, "BindingsCompile: %v\n", err)
		return core.BindingsCompile
	}
	e.userModule = e.registry.bySpecifier[cfg.SourceName]
	e.bindingsModule = e.registry.bySpecifier[bindingsSpecifier]

	e.installResolveHook()
	if err := e.rejections.install(); err != nil {
		fmt.Fprintf(e.Diag, "PromiseRejections: %v\n", err)
		return core.PromiseRejections
	}

	if err := e.linkModule(e.bindingsModule); err != nil {
		fmt.Fprintf(e.Diag, "SourceLink: %v\n", err)
		return core.SourceLink
	}
	if err := e.linkModule(e.userModule); err != nil {
		fmt.Fprintf(e.Diag, "SourceLink: %v\n", err)
		return core.SourceLink
	}
	if err := e.evaluateModule(e.bindingsModule); err != nil {
		fmt.Fprintf(e.Diag, "BindingsExec: %v\n", err)
		return core.BindingsExec
	}
	if err := e.evaluateModule(e.userModule); err != nil {
		fmt.Fprintf(e.Diag, "SourceExec: %v\n", err)
		return core.SourceExec
	}

	if code := e.buildExportTable(cfg.Exports); code != core.OK {
		return code
	}

	bindingsGlobal := e.namespace(e.bindingsModule)
	reallocObj := lib.XJS_NewObject(e.h.tls, e.h.ctx)
	if err := e.mem.installRealloc(reallocObj); err != nil {
		fmt.Fprintf(e.Diag, "ReallocFn: %v\n", err)
		return core.ReallocFn
	}
	reallocFn, _ := e.h.getPropertyStr(reallocObj, "realloc")

	memView := lib.XJS_NewObject(e.h.tls, e.h.ctx)
	if err := e.mem.installBufferGetter(memView); err != nil {
		fmt.Fprintf(e.Diag, "MemBuffer: %v\n", err)
		return core.MemBuffer
	}

	// Required bindings-module surface (spec §6): either call
	// $initBindings(memObj, reallocFn, import0..importK-1) once, or, in
	// the variant without it, install $bindings as a plain global so the
	// user module can read it directly.
	initBindings, err := e.h.getPropertyStr(bindingsGlobal, "$initBindings")
	if err == nil && lib.XJS_IsFunction(e.h.tls, e.h.ctx, initBindings) != 0 {
		importFns := make([]lib.TJSValue, 0, len(e.wrappers))
		for _, mod := range e.wrappers {
			ns := e.namespace(mod)
			fn, ferr := e.h.getPropertyStr(ns, "default")
			if ferr != nil {
				fmt.Fprintf(e.Diag, "MemBindings: %v\n", ferr)
				return core.MemBindings
			}
			importFns = append(importFns, fn)
		}
		args := append([]lib.TJSValue{memView, reallocFn}, importFns...)
		result := lib.XJS_Call(e.h.tls, e.h.ctx, initBindings, bindingsGlobal, int32(len(args)), argvPtr(args))
		if lib.XJS_IsException(e.h.tls, result) != 0 {
			fmt.Fprintf(e.Diag, "MemBindings: $initBindings threw: %s\n", e.goString(e.h.takeException()))
			return core.MemBindings
		}
	} else {
		global := e.h.globalObject()
		defer lib.XFreeValue(e.h.tls, e.h.ctx, global)
		if err := e.assembleBindingsArray(global, memView, reallocFn); err != nil {
			fmt.Fprintf(e.Diag, "MemBindings: %v\n", err)
			return core.MemBindings
		}
	}

	e.h.executePendingJobs()
	e.h.runGC()

	return core.OK
}

// HasPendingException reports whether the engine context currently holds
// a pending exception, the precondition `check_init` tests before
// formatting and clearing one (spec §4.7, §7).
func (e *Engine) HasPendingException() bool {
	return e.h.pendingException()
}

// TakePendingExceptionText clears the pending exception and renders it
// through the console formatter's stringify path, reusing the same
// Error-shaped formatting rule console.log uses for thrown values.
func (e *Engine) TakePendingExceptionText() string {
	exc := e.h.takeException()
	defer lib.XFreeValue(e.h.tls, e.h.ctx, exc)
	return e.stringify(exc)
}

// assembleBindingsArray builds the JS-visible `$bindings` array for the
// variant without `$initBindings` (spec §4.6): slot 0 is the Memory View,
// slot 1 is the realloc function, and slots 2..K+1 are the Import Wrapper
// Table's function objects in declared order.
func (e *Engine) assembleBindingsArray(bindingsGlobal, memView, reallocFn lib.TJSValue) error {
	arr := lib.XJS_NewArray(e.h.tls, e.h.ctx)
	if lib.XJS_SetPropertyUint32(e.h.tls, e.h.ctx, arr, 0, memView) < 0 {
		return fmt.Errorf("appending memory view to $bindings")
	}
	if lib.XJS_SetPropertyUint32(e.h.tls, e.h.ctx, arr, 1, reallocFn) < 0 {
		return fmt.Errorf("appending realloc function to $bindings")
	}
	for i, mod := range e.wrappers {
		ns := e.namespace(mod)
		fn, err := e.h.getPropertyStr(ns, "default")
		if err != nil {
			return fmt.Errorf("import wrapper %d: %w", i, err)
		}
		if lib.XJS_SetPropertyUint32(e.h.tls, e.h.ctx, arr, uint32(i+2), fn) < 0 {
			return fmt.Errorf("import wrapper %d: appending to $bindings", i)
		}
	}
	return e.h.setPropertyStr(bindingsGlobal, "$bindings", arr)
}
