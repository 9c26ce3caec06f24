package engine

import (
	"fmt"
	"strings"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
)

// installConsole wires console.log/warn/error/info/debug to a shared
// formatter. Unlike a JS-level console polyfill (a plain string-join over
// String(arg)), this formatter needs engine-internal introspection — a
// Map's entries, a Set's members, a Promise's internal state, object
// identity for cycle detection — none of which a guest-visible JS
// function could read without the host exposing internals anyway. So the
// formatter is written in Go against the raw C API directly, the shape
// spidermonkey_embedding's own console builtin takes.
func (e *Engine) installConsole(global lib.TJSValue) error {
	consoleObj := lib.XJS_NewObject(e.h.tls, e.h.ctx)
	for _, name := range []string{"log", "warn", "error", "info", "debug"} {
		w := e.Out
		if name == "warn" || name == "error" {
			w = e.Diag
		}
		fn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
			args := lib.ArgSlice(argv, argc)
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = e.stringify(a)
			}
			fmt.Fprintln(w, strings.Join(parts, " "))
			return lib.XJS_Undefined()
		}
		fnPtr := libc.NewCallback(fn)
		if err := e.h.setNativeFunction(consoleObj, name, fnPtr, 0); err != nil {
			return err
		}
	}
	return e.h.setPropertyStr(global, "console", consoleObj)
}

// stringify formats a single JS value the way console's inspector would:
// primitives print directly, Error objects print "name: message" (the
// stack is not included),
// Map/Set print their entries, and any object reachable a second time
// through the same call prints as "<Circular>" instead of recursing
// forever. visited is reset on every top-level call.
func (e *Engine) stringify(val lib.TJSValue) string {
	return e.stringifyWithStack(val, make([]uintptr, 0, 8))
}

func (e *Engine) stringifyWithStack(val lib.TJSValue, seen []uintptr) string {
	switch {
	case lib.XJS_IsUndefined(val) != 0:
		return "undefined"
	case lib.XJS_IsNull(val) != 0:
		return "null"
	case lib.XJS_IsBool(val) != 0:
		if lib.XJS_ToBool(e.h.tls, e.h.ctx, val) != 0 {
			return "true"
		}
		return "false"
	case lib.XJS_IsNumber(val) != 0:
		return fmt.Sprintf("%v", lib.XJS_ToFloat64Unchecked(e.h.tls, e.h.ctx, val))
	case lib.XJS_IsBigInt(e.h.tls, val) != 0:
		n, _ := e.fromBigInt64(val)
		return fmt.Sprintf("%dn", n)
	case lib.XJS_IsString(val) != 0:
		return e.goString(val)
	case lib.XJS_IsFunction(e.h.tls, e.h.ctx, val) != 0:
		return "[object Function]"
	case lib.XJS_IsArray(e.h.tls, e.h.ctx, val) != 0:
		return e.stringifyArray(val, seen)
	case lib.XJS_IsObject(val) != 0:
		return e.stringifyObject(val, seen)
	default:
		return "<unknown>"
	}
}

func (e *Engine) goString(val lib.TJSValue) string {
	cStr := lib.XJS_ToCString(e.h.tls, e.h.ctx, val)
	defer lib.XJS_FreeCString(e.h.tls, e.h.ctx, cStr)
	return libc.GoString(cStr)
}

func objIdentity(val lib.TJSValue) uintptr {
	return lib.JS_VALUE_GET_PTR(val)
}

func containsPtr(seen []uintptr, p uintptr) bool {
	for _, s := range seen {
		if s == p {
			return true
		}
	}
	return false
}

func (e *Engine) stringifyArray(val lib.TJSValue, seen []uintptr) string {
	id := objIdentity(val)
	if containsPtr(seen, id) {
		return "<Circular>"
	}
	seen = append(seen, id)

	lenVal, _ := e.h.getPropertyStr(val, "length")
	n := int(lib.ToUint32(e.h.tls, e.h.ctx, lenVal))
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		elem, err := e.h.getPropertyStr(val, fmt.Sprintf("%d", i))
		if err != nil {
			parts = append(parts, "undefined")
			continue
		}
		parts = append(parts, e.stringifyWithStack(elem, seen))
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

// stringifyObject handles plain objects, Error instances, Map, Set, and
// Promise, matching spec §4.9's rule that each of these prints its
// internal state rather than its own toString().
func (e *Engine) stringifyObject(val lib.TJSValue, seen []uintptr) string {
	id := objIdentity(val)
	if containsPtr(seen, id) {
		return "<Circular>"
	}
	seen = append(seen, id)

	if e.isInstanceOfGlobal(val, "Error") {
		name := e.goString(mustGet(e, val, "name"))
		msg := e.goString(mustGet(e, val, "message"))
		return fmt.Sprintf("%s: %s", name, msg)
	}
	if e.isInstanceOfGlobal(val, "Map") {
		return e.stringifyMap(val, seen)
	}
	if e.isInstanceOfGlobal(val, "Set") {
		return e.stringifySet(val, seen)
	}
	if e.isInstanceOfGlobal(val, "Promise") {
		return e.stringifyPromise(val)
	}

	keys := lib.XJS_GetOwnPropertyNames(e.h.tls, e.h.ctx, val)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := e.h.getPropertyStr(val, k)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.stringifyWithStack(v, seen)))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func mustGet(e *Engine, obj lib.TJSValue, name string) lib.TJSValue {
	v, err := e.h.getPropertyStr(obj, name)
	if err != nil {
		return lib.XJS_Undefined()
	}
	return v
}

func (e *Engine) isInstanceOfGlobal(val lib.TJSValue, ctorName string) bool {
	glob := e.h.globalObject()
	defer lib.XFreeValue(e.h.tls, e.h.ctx, glob)
	ctor, err := e.h.getPropertyStr(glob, ctorName)
	if err != nil {
		return false
	}
	return lib.XJS_IsInstanceOf(e.h.tls, e.h.ctx, val, ctor) != 0
}

// stringifyMap walks a Map's entries via its iterator protocol, since the
// C API exposes no direct internal-slot accessor for Map buckets.
func (e *Engine) stringifyMap(val lib.TJSValue, seen []uintptr) string {
	entries := e.iterate(val, "entries")
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		k := e.stringifyWithStack(lib.XJS_GetPropertyUint32(e.h.tls, e.h.ctx, entry, 0), seen)
		v := e.stringifyWithStack(lib.XJS_GetPropertyUint32(e.h.tls, e.h.ctx, entry, 1), seen)
		parts = append(parts, fmt.Sprintf("%s => %s", k, v))
	}
	return fmt.Sprintf("Map(%d) { %s }", len(parts), strings.Join(parts, ", "))
}

func (e *Engine) stringifySet(val lib.TJSValue, seen []uintptr) string {
	entries := e.iterate(val, "values")
	parts := make([]string, 0, len(entries))
	for _, v := range entries {
		parts = append(parts, e.stringifyWithStack(v, seen))
	}
	return fmt.Sprintf("Set(%d) { %s }", len(parts), strings.Join(parts, ", "))
}

// stringifyPromise reports the settled value/reason when available and
// "<pending>" otherwise, using QuickJS's promise-state introspection
// rather than attaching a .then handler (which would itself perturb the
// rejection tracker's bookkeeping).
func (e *Engine) stringifyPromise(val lib.TJSValue) string {
	state := lib.XJS_PromiseState(e.h.tls, e.h.ctx, val)
	switch state {
	case lib.JS_PROMISE_FULFILLED:
		return fmt.Sprintf("Promise { %s }", e.stringify(lib.XJS_PromiseResult(e.h.tls, e.h.ctx, val)))
	case lib.JS_PROMISE_REJECTED:
		return fmt.Sprintf("Promise { <rejected> %s }", e.stringify(lib.XJS_PromiseResult(e.h.tls, e.h.ctx, val)))
	default:
		return "Promise { <pending> }"
	}
}

// iterate drains a Map/Set's named iterator method into a Go slice of JS
// values, used only by the console formatter so its output never depends
// on iterator protocol state the guest could have tampered with.
func (e *Engine) iterate(val lib.TJSValue, method string) []lib.TJSValue {
	iterFn, err := e.h.getPropertyStr(val, method)
	if err != nil {
		return nil
	}
	iter := lib.XJS_Call(e.h.tls, e.h.ctx, iterFn, val, 0, nil)
	var out []lib.TJSValue
	for {
		nextFn, err := e.h.getPropertyStr(iter, "next")
		if err != nil {
			break
		}
		res := lib.XJS_Call(e.h.tls, e.h.ctx, nextFn, iter, 0, nil)
		done, _ := e.h.getPropertyStr(res, "done")
		if lib.XJS_ToBool(e.h.tls, e.h.ctx, done) != 0 {
			break
		}
		value, _ := e.h.getPropertyStr(res, "value")
		out = append(out, value)
	}
	return out
}
