package config

import (
	"testing"

	"github.com/jsabi/coreabi/internal/core"
)

func baseEnv() Env {
	return Env{
		"SOURCE_NAME":         "user.js",
		"SOURCE_LEN":          "10",
		"BINDINGS_LEN":        "20",
		"IMPORT_WRAPPER_CNT":  "0",
		"EXPORT_CNT":          "1",
		"EXPORT0_NAME":        "id",
		"EXPORT0_ARGS":        "i32",
		"EXPORT0_RET":         "i32",
		"EXPORT0_RETSIZE":     "4",
		"IMPORT_CNT":          "0",
	}
}

func TestReadHappyPath(t *testing.T) {
	cfg, code := Read(baseEnv())
	if code != core.OK {
		t.Fatalf("Read: unexpected code %v", code)
	}
	if cfg.SourceName != "user.js" {
		t.Errorf("SourceName = %q", cfg.SourceName)
	}
	if len(cfg.Exports) != 1 {
		t.Fatalf("Exports = %v", cfg.Exports)
	}
	sig := cfg.Exports[0].Sig
	if len(sig.Params) != 1 || sig.Params[0] != core.I32 {
		t.Errorf("Params = %v", sig.Params)
	}
	if !sig.HasRet || sig.Ret != core.I32 || sig.RetSize != 4 {
		t.Errorf("Ret = %v HasRet=%v RetSize=%d", sig.Ret, sig.HasRet, sig.RetSize)
	}
	if sig.ParamPtr || sig.RetPtr {
		t.Errorf("expected no ptr flags, got paramptr=%v retptr=%v", sig.ParamPtr, sig.RetPtr)
	}
}

func TestReadMissingKeyIsTypeParse(t *testing.T) {
	env := baseEnv()
	delete(env, "SOURCE_LEN")
	if _, code := Read(env); code != core.TypeParse {
		t.Fatalf("code = %v, want TypeParse", code)
	}
}

func TestParamPtrSignature(t *testing.T) {
	env := baseEnv()
	env["EXPORT0_ARGS"] = "*"
	env["EXPORT0_RET"] = ""
	cfg, code := Read(env)
	if code != core.OK {
		t.Fatalf("Read: %v", code)
	}
	sig := cfg.Exports[0].Sig
	if !sig.ParamPtr {
		t.Errorf("expected ParamPtr")
	}
	if len(sig.Params) != 0 {
		t.Errorf("Params = %v, want empty", sig.Params)
	}
	if sig.HasRet {
		t.Errorf("expected no return")
	}
}

func TestRetPtrSignature(t *testing.T) {
	env := baseEnv()
	env["EXPORT0_ARGS"] = "i32"
	env["EXPORT0_RET"] = "*"
	env["EXPORT0_RETSIZE"] = "8"
	cfg, code := Read(env)
	if code != core.OK {
		t.Fatalf("Read: %v", code)
	}
	sig := cfg.Exports[0].Sig
	if !sig.RetPtr {
		t.Errorf("expected RetPtr")
	}
	if sig.HasRet {
		t.Errorf("RetPtr signatures carry no scalar return")
	}
	if sig.RetSize != 8 {
		t.Errorf("RetSize = %d, want 8", sig.RetSize)
	}
}

func TestUnknownTypeTokenIsTypeParse(t *testing.T) {
	env := baseEnv()
	env["EXPORT0_ARGS"] = "i99"
	if _, code := Read(env); code != core.TypeParse {
		t.Fatalf("code = %v, want TypeParse", code)
	}
}

func TestMultiParamSignature(t *testing.T) {
	env := baseEnv()
	env["EXPORT0_ARGS"] = "i32,i64,f64"
	env["EXPORT0_RET"] = "f32"
	env["EXPORT0_RETSIZE"] = "4"
	cfg, code := Read(env)
	if code != core.OK {
		t.Fatalf("Read: %v", code)
	}
	want := []core.CoreType{core.I32, core.I64, core.F64}
	got := cfg.Exports[0].Sig.Params
	if len(got) != len(want) {
		t.Fatalf("Params = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Params[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestImportDecl(t *testing.T) {
	env := baseEnv()
	env["IMPORT_CNT"] = "2"
	env["IMPORT0_NAME"] = "host_log"
	env["IMPORT0_ARGCNT"] = "1"
	env["IMPORT1_NAME"] = "host_now"
	env["IMPORT1_ARGCNT"] = "0"
	cfg, code := Read(env)
	if code != core.OK {
		t.Fatalf("Read: %v", code)
	}
	if len(cfg.Imports) != 2 {
		t.Fatalf("Imports = %v", cfg.Imports)
	}
	if cfg.Imports[0].Name != "host_log" || cfg.Imports[0].ArgCnt != 1 {
		t.Errorf("Imports[0] = %+v", cfg.Imports[0])
	}
	if cfg.Imports[1].Name != "host_now" || cfg.Imports[1].ArgCnt != 0 {
		t.Errorf("Imports[1] = %+v", cfg.Imports[1])
	}
}

func TestWrapperDecl(t *testing.T) {
	env := baseEnv()
	env["IMPORT_WRAPPER_CNT"] = "1"
	env["IMPORT_WRAPPER0_NAME"] = "host_log"
	env["IMPORT_WRAPPER0_LEN"] = "42"
	cfg, code := Read(env)
	if code != core.OK {
		t.Fatalf("Read: %v", code)
	}
	if len(cfg.Wrappers) != 1 || cfg.Wrappers[0].Name != "host_log" || cfg.Wrappers[0].Len != 42 {
		t.Errorf("Wrappers = %+v", cfg.Wrappers)
	}
}
