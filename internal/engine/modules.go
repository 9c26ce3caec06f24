package engine

import (
	"fmt"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
)

// moduleRegistry is the Module Registry of spec §3: a finite mapping from
// specifier string to a pre-compiled module record, split into the three
// categories §4.2 names — the user module, the bindings module under
// "internal:bindings", and one entry per declared import wrapper.
type moduleRegistry struct {
	bySpecifier map[string]lib.TJSValue // compiled JS_TAG_MODULE values, COMPILE_ONLY
	sourceName  string                  // specifier the user module is registered under
}

const bindingsSpecifier = "internal:bindings"

func newModuleRegistry() *moduleRegistry {
	return &moduleRegistry{bySpecifier: make(map[string]lib.TJSValue)}
}

// compileModule compiles (but does not link or evaluate) one ES module's
// source text, registering it under specifier in the registry. Uses
// JS_Eval with JS_EVAL_TYPE_MODULE | JS_EVAL_FLAG_COMPILE_ONLY so linking
// happens later, once every module the resolver might need is available.
func (e *Engine) compileModule(specifier string, src []byte) error {
	cSrc, err := libc.CString(string(src))
	if err != nil {
		return err
	}
	defer libc.Xfree(e.h.tls, cSrc)
	cName, err := libc.CString(specifier)
	if err != nil {
		return err
	}
	defer libc.Xfree(e.h.tls, cName)

	modVal := lib.XJS_Eval(e.h.tls, e.h.ctx, cSrc, lib.Tsize_t(len(src)), cName,
		lib.JS_EVAL_TYPE_MODULE|lib.JS_EVAL_FLAG_COMPILE_ONLY)
	if lib.XJS_IsException(e.h.tls, modVal) != 0 {
		return fmt.Errorf("compiling module %q", specifier)
	}
	e.registry.bySpecifier[specifier] = modVal
	return nil
}

// installResolveHook registers a module-loader callback with the engine so
// that when the bindings or user module is linked, every import specifier
// it names is satisfied from the pre-compiled registry rather than from
// disk — dynamic loading of additional modules after initialization is a
// Non-goal (spec §1), so the loader never compiles anything new, it only
// looks up what §4.2 already put in the registry.
//
// The callback is installed via the same ccgo-generated function-pointer
// trampoline the transpiled libquickjs package uses for every other native
// callback (promise rejection tracker, RegisterFunc's marshaling
// trampolines) — see rejections.go for the analogous registration.
func (e *Engine) installResolveHook() {
	loader := func(ctx uintptr, moduleName uintptr, opaque uintptr) lib.TJSValue {
		specifier := libc.GoString(moduleName)
		mod, ok := e.registry.bySpecifier[specifier]
		if !ok {
			referrer := "internal:bindings"
			fmt.Fprintf(e.Diag, "SourceLink: unresolved module specifier %q (referrer %s)\n", specifier, referrer)
			return lib.XJS_ThrowReferenceError(e.h.tls, e.h.ctx, "could not resolve module %s", specifier)
		}
		return mod
	}
	ptr := libc.NewCallback(loader) // see note on module-loader trampolines above
	lib.XJS_SetModuleLoaderFunc(e.h.tls, e.h.rt, 0, ptr, 0)
}

// linkModule resolves a compiled module's imports against the registry
// (JS_ResolveModule), the step that can fail with SourceLink when the
// installed resolve hook meets a specifier it cannot satisfy.
func (e *Engine) linkModule(mod lib.TJSValue) error {
	if lib.XJS_ResolveModule(e.h.tls, e.h.ctx, mod) < 0 {
		return fmt.Errorf("linking module")
	}
	return nil
}

// evaluateModule runs a linked module's top-level code (JS_EvalFunction).
// A pending top-level-await promise left unsettled is not treated as a
// failure (spec §9 Open Question c, permissive reading) — only a thrown
// exception counts as failure here.
func (e *Engine) evaluateModule(mod lib.TJSValue) error {
	result := lib.XJS_EvalFunction(e.h.tls, e.h.ctx, mod)
	if lib.XJS_IsException(e.h.tls, result) != 0 {
		return fmt.Errorf("evaluating module")
	}
	lib.XFreeValue(e.h.tls, e.h.ctx, result)
	return nil
}

// linkAndEvaluate is the common case (link, then evaluate) used once
// Init no longer needs to tell the two failure modes apart by call site.
func (e *Engine) linkAndEvaluate(mod lib.TJSValue) error {
	if err := e.linkModule(mod); err != nil {
		return err
	}
	return e.evaluateModule(mod)
}

// namespace returns the module's exported namespace object
// (JS_GetModuleNamespace), used by the Export Table (C5) to resolve export
// properties after the bindings module has evaluated.
func (e *Engine) namespace(mod lib.TJSValue) lib.TJSValue {
	return lib.XJS_GetModuleNamespace(e.h.tls, e.h.ctx, mod)
}
