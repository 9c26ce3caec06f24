package engine

import (
	"fmt"

	lib "modernc.org/libquickjs"

	"github.com/jsabi/coreabi/internal/core"
)

// exportEntry is one resolved row of the Export Table (spec §3, §4.5): a
// declared export's signature paired with the live JS function value the
// Call Bridge invokes for it.
type exportEntry struct {
	Name string
	Sig  core.Signature
	Fn   lib.TJSValue // persistent root into the bindings module namespace
}

// buildExportTable resolves each declared export name against the bindings
// module's namespace object (populated once evaluation has finished) and
// records the callable, failing with FnList the moment any declared name is
// missing or not callable — spec §4.5's "every declared export must resolve
// to a callable value" invariant.
func (e *Engine) buildExportTable(decls []core.ExportDecl) core.InitCode {
	ns := e.namespace(e.bindingsModule)
	entries := make([]exportEntry, 0, len(decls))
	for _, d := range decls {
		val, err := e.h.getPropertyStr(ns, d.Name)
		if err != nil {
			fmt.Fprintf(e.Diag, "FnList: reading export %q: %v\n", d.Name, err)
			return core.FnList
		}
		if lib.XJS_IsFunction(e.h.tls, e.h.ctx, val) == 0 {
			fmt.Fprintf(e.Diag, "FnList: export %q is not callable\n", d.Name)
			return core.FnList
		}
		entries = append(entries, exportEntry{Name: d.Name, Sig: d.Sig, Fn: val})
	}
	e.exports = entries
	return core.OK
}

// Export looks up a resolved export by index, the shape the Call Bridge
// (C7) needs when dispatching a numbered `call`.
func (e *Engine) Export(index int) (exportEntry, bool) {
	if index < 0 || index >= len(e.exports) {
		return exportEntry{}, false
	}
	return e.exports[index], true
}

func (e *Engine) ExportCount() int { return len(e.exports) }
