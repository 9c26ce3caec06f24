// Command coreabi-init-check drives wizer.initialize/check_init against a
// byte stream on disk, for smoke-testing a (SOURCE_NAME, bindings, import
// wrapper) artifact outside of the snapshotting tool. Grounded on
// gramidt-wazero's examples/wasi: a small single-main.go host driver that
// wires one input file through to a runtime and prints the result. Not
// part of the ABI surface.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jsabi/coreabi/internal/config"
	"github.com/jsabi/coreabi/internal/core"
	"github.com/jsabi/coreabi/internal/initdriver"
)

func main() {
	streamPath := flag.String("stream", "", "path to the module byte stream (user module + bindings + wrappers)")
	flag.Parse()

	if *streamPath == "" {
		fmt.Fprintln(os.Stderr, "coreabi-init-check: -stream is required")
		os.Exit(2)
	}

	f, err := os.Open(*streamPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coreabi-init-check: %v\n", err)
		os.Exit(2)
	}
	defer f.Close()

	result := initdriver.Run(config.FromOSEnv(), f, os.Stdout, os.Stderr)
	fmt.Printf("check_init: %s (%d)\n", result.InitCode, result.InitCode)
	if result.InitCode != core.OK {
		os.Exit(1)
	}
}
