// Package coreabi is the runtime's ABI surface: the process-wide singleton
// (spec §9, "the singleton exists only because the ABI surface is a set
// of free-standing exports with no context parameter") and the stable
// entry-point names of spec §6, exposed as free Go functions so a cgo or
// WASM export shim can bind them directly.
package coreabi

import (
	"os"

	"github.com/jsabi/coreabi/internal/callbridge"
	"github.com/jsabi/coreabi/internal/config"
	"github.com/jsabi/coreabi/internal/core"
	"github.com/jsabi/coreabi/internal/engine"
	"github.com/jsabi/coreabi/internal/initdriver"
)

var (
	theEngine *engine.Engine
	theBridge *callbridge.Bridge
)

// Initialize is `wizer.initialize`: one-shot, reads the process
// environment and stdin byte stream, populates the runtime state. Never
// returns a Go error — initialization failures become a typed code
// retrievable via CheckInit (spec §7).
func Initialize() {
	result := initdriver.Run(config.FromOSEnv(), os.Stdin, os.Stdout, os.Stderr)
	theEngine = result.Engine
	if theEngine == nil {
		// Initialization failed before an engine existed (config reading,
		// the byte stream, or engine bring-up itself); CheckInit still needs
		// something to report against, so check_init degrades to reporting
		// the code with no pending-exception formatting available.
		theBridge = callbridge.New(nil, result.InitCode)
		return
	}
	theBridge = callbridge.New(theEngine, result.InitCode)
}

// CheckInit is `check_init`.
func CheckInit() int32 {
	return int32(theBridge.CheckInit())
}

// Call is `call`.
func Call(exportIndex int32, argPtr uint32) uint32 {
	return theBridge.Call(int(exportIndex), argPtr)
}

// PostCall is `post_call`.
func PostCall(exportIndex int32) {
	theBridge.PostCall(int(exportIndex))
}

// CAbiRealloc is `cabi_realloc`: the tracked reallocator.
func CAbiRealloc(ptr, oldSize, align, newSize uint32) uint32 {
	return theEngine.ReallocTracked(ptr, oldSize, align, newSize)
}

// CAbiReallocAdapter is `cabi_realloc_adapter`: the untracked variant.
func CAbiReallocAdapter(ptr, oldSize, align, newSize uint32) uint32 {
	return theEngine.ReallocAdapter(ptr, oldSize, align, newSize)
}

// InitCode exposes the raw typed code for tests and the devtool CLI,
// which want more than CheckInit's flattened int32.
func InitCode() core.InitCode {
	return theBridge.CheckInit()
}
