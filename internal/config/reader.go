// Package config implements the Configuration Reader (spec §4.1): decoding
// the flat keyed-string environment that wizer.initialize consumes into
// a core.Config, including the ARGS/RET signature grammar.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/jsabi/coreabi/internal/core"
)

// Env is the flat keyed-string environment C1 reads from. A plain
// map[string]string, built by a caller from process environment via
// Getenv — the same shape the pack's gramidt-wazero and viamrobotics-rdk
// examples use for their own plain os.Getenv-backed config structs.
type Env map[string]string

// FromOSEnv snapshots the process environment into an Env, the shape
// wizer.initialize reads configuration from at the real ABI boundary.
func FromOSEnv() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}

// Read decodes cfg from env per spec §4.1. On any missing required key or
// malformed signature it returns a nil Config and the InitCode
// identifying the failure (TypeParse for grammar errors); the caller
// (the Initialization Driver) is responsible for recording that code.
func Read(env Env) (*core.Config, core.InitCode) {
	cfg := &core.Config{
		Debug:      env["DEBUG"] == "1",
		SourceName: env["SOURCE_NAME"],
	}

	sourceLen, ok := readInt(env, "SOURCE_LEN")
	if !ok {
		return nil, core.TypeParse
	}
	cfg.SourceLen = sourceLen

	bindingsLen, ok := readInt(env, "BINDINGS_LEN")
	if !ok {
		return nil, core.TypeParse
	}
	cfg.BindingsLen = bindingsLen

	wrapperCnt, ok := readInt(env, "IMPORT_WRAPPER_CNT")
	if !ok {
		return nil, core.TypeParse
	}
	for i := 0; i < wrapperCnt; i++ {
		name, ok := env[keyf("IMPORT_WRAPPER%d_NAME", i)]
		if !ok {
			return nil, core.TypeParse
		}
		wlen, ok := readInt(env, keyf("IMPORT_WRAPPER%d_LEN", i))
		if !ok {
			return nil, core.TypeParse
		}
		cfg.Wrappers = append(cfg.Wrappers, core.WrapperDecl{Name: name, Len: wlen})
	}

	exportCnt, ok := readInt(env, "EXPORT_CNT")
	if !ok {
		return nil, core.TypeParse
	}
	for i := 0; i < exportCnt; i++ {
		name, ok := env[keyf("EXPORT%d_NAME", i)]
		if !ok {
			return nil, core.TypeParse
		}
		argsTok := env[keyf("EXPORT%d_ARGS", i)]
		retTok := env[keyf("EXPORT%d_RET", i)]
		retSize, _ := readInt(env, keyf("EXPORT%d_RETSIZE", i))

		sig, code := parseSignature(argsTok, retTok, retSize)
		if code != core.OK {
			return nil, code
		}
		cfg.Exports = append(cfg.Exports, core.ExportDecl{Name: name, Sig: sig})
	}

	importCnt, ok := readInt(env, "IMPORT_CNT")
	if !ok {
		return nil, core.TypeParse
	}
	for i := 0; i < importCnt; i++ {
		name, ok := env[keyf("IMPORT%d_NAME", i)]
		if !ok {
			return nil, core.TypeParse
		}
		argCnt, ok := readInt(env, keyf("IMPORT%d_ARGCNT", i))
		if !ok {
			return nil, core.TypeParse
		}
		cfg.Imports = append(cfg.Imports, core.ImportDecl{Name: name, ArgCnt: argCnt})
	}

	return cfg, core.OK
}

func readInt(env Env, key string) (int, bool) {
	s, ok := env[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func keyf(format string, i int) string {
	return strings.Replace(format, "%d", strconv.Itoa(i), 1)
}

// parseSignature implements the ARGS/RET grammar of spec §4.1: a leading
// '*' sets paramptr (ARGS) or retptr (RET), followed by a comma-separated
// run of the literals i32/i64/f32/f64. RET may be empty (no return).
func parseSignature(argsTok, retTok string, retSize int) (core.Signature, core.InitCode) {
	var sig core.Signature
	sig.RetSize = retSize

	params, paramPtr, ok := parseTypeList(argsTok)
	if !ok {
		return core.Signature{}, core.TypeParse
	}
	sig.Params = params
	sig.ParamPtr = paramPtr

	if retTok == "" {
		return sig, core.OK
	}

	retTypes, retPtr, ok := parseTypeList(retTok)
	if !ok {
		return core.Signature{}, core.TypeParse
	}
	sig.RetPtr = retPtr
	if retPtr {
		// A retptr export's ABI-visible return is empty; a type list
		// after '*' is accepted and not recorded.
		return sig, core.OK
	}
	if len(retTypes) != 1 {
		return core.Signature{}, core.TypeParse
	}
	sig.HasRet = true
	sig.Ret = retTypes[0]
	return sig, core.OK
}

// parseTypeList scans a leading '*' flag and a comma-separated list of
// i32/i64/f32/f64 literals. An empty (post-flag) token yields an empty list.
func parseTypeList(tok string) (types []core.CoreType, ptrFlag bool, ok bool) {
	if strings.HasPrefix(tok, "*") {
		ptrFlag = true
		tok = tok[1:]
	}
	if tok == "" {
		return nil, ptrFlag, true
	}
	for _, part := range strings.Split(tok, ",") {
		switch part {
		case "i32":
			types = append(types, core.I32)
		case "i64":
			types = append(types, core.I64)
		case "f32":
			types = append(types, core.F32)
		case "f64":
			types = append(types, core.F64)
		default:
			return nil, ptrFlag, false
		}
	}
	return types, ptrFlag, true
}
