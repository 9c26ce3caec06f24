package core

import "testing"

func TestInitCodeOrdinalsStable(t *testing.T) {
	want := []InitCode{
		OK, JSInit, Intrinsics, CustomIntrinsics, SourceStdin, SourceCompile,
		BindingsCompile, ImportWrapperCompile, SourceLink, SourceExec,
		BindingsExec, FnList, MemBuffer, ReallocFn, MemBindings,
		PromiseRejections, ImportFn, TypeParse,
	}
	for i, c := range want {
		if int(c) != i {
			t.Errorf("ordinal %d = %s, want ordinal %d", c, c, i)
		}
	}
}

func TestInitCodeString(t *testing.T) {
	cases := map[InitCode]string{
		OK:         "OK",
		JSInit:     "JSInit",
		SourceLink: "SourceLink",
		TypeParse:  "TypeParse",
	}
	for ct, want := range cases {
		if got := ct.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestInitCodeStringUnknown(t *testing.T) {
	if got := InitCode(-1).String(); got != "InitCode(?)" {
		t.Errorf("String() of negative ordinal = %q, want %q", got, "InitCode(?)")
	}
	if got := InitCode(len(initCodeNames) + 1).String(); got != "InitCode(?)" {
		t.Errorf("String() of out-of-range ordinal = %q, want %q", got, "InitCode(?)")
	}
}
