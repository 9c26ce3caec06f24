package engine

import lib "modernc.org/libquickjs"

// installBuiltins installs the Builtins Surface (C9, spec §4.6's
// "{C4, C5, C9}" step): console, URL, and TextEncoder/TextDecoder, all
// before the user module and bindings module are linked, so their own
// top-level code can already observe these globals.
func (e *Engine) installBuiltins() error {
	global := e.h.globalObject()
	defer lib.XFreeValue(e.h.tls, e.h.ctx, global)

	if err := e.installConsole(global); err != nil {
		return err
	}
	if err := e.installURL(global); err != nil {
		return err
	}
	if err := e.installTextCodec(global); err != nil {
		return err
	}
	return nil
}
