// Package initdriver implements the Initialization Driver (C6): the
// sequential byte-stream contract of spec §4.2/§4.6 plus orchestrating
// config reading (C1) and engine bring-up (internal/engine). This is the
// "wizer.initialize" half of the ABI; internal/callbridge is the "call"
// half.
package initdriver

import (
	"fmt"
	"io"

	"github.com/jsabi/coreabi/internal/config"
	"github.com/jsabi/coreabi/internal/core"
	"github.com/jsabi/coreabi/internal/engine"
)

// Result is everything `wizer.initialize` produces: the engine (so later
// ABI calls have something to invoke exports on) and the init error code
// `check_init` reports.
type Result struct {
	Engine   *engine.Engine
	InitCode core.InitCode
}

// Run performs one full initialization pass: read the environment (C1),
// read the byte stream in the order user module, bindings module, import
// wrappers (§4.2), bring up the engine, and drive it through every step
// of §4.6. The first failure anywhere in this pass is recorded as the
// typed code and returned; initialization itself never returns a Go
// error, matching spec §7's "initialization never aborts" rule.
func Run(env config.Env, stream io.Reader, out, diag io.Writer) Result {
	cfg, code := config.Read(env)
	if code != core.OK {
		return Result{InitCode: code}
	}

	source := make([]byte, cfg.SourceLen)
	if _, err := io.ReadFull(stream, source); err != nil {
		fmt.Fprintf(diag, "SourceStdin: reading user module: %v\n", err)
		return Result{InitCode: core.SourceStdin}
	}
	bindings := make([]byte, cfg.BindingsLen)
	if _, err := io.ReadFull(stream, bindings); err != nil {
		fmt.Fprintf(diag, "SourceStdin: reading bindings module: %v\n", err)
		return Result{InitCode: core.SourceStdin}
	}
	wrapperSrc := make([][]byte, len(cfg.Wrappers))
	for i, w := range cfg.Wrappers {
		buf := make([]byte, w.Len)
		if _, err := io.ReadFull(stream, buf); err != nil {
			fmt.Fprintf(diag, "SourceStdin: reading import wrapper %q: %v\n", w.Name, err)
			return Result{InitCode: core.SourceStdin}
		}
		wrapperSrc[i] = buf
	}

	eng, err := engine.New(out, diag)
	if err != nil {
		fmt.Fprintf(diag, "JSInit: %v\n", err)
		return Result{InitCode: core.JSInit}
	}

	code = eng.Init(cfg, source, bindings, wrapperSrc)
	return Result{Engine: eng, InitCode: code}
}
