package core

import "testing"

func TestJSParamCount(t *testing.T) {
	cases := []struct {
		name string
		sig  Signature
		want int
	}{
		{"no params no ret", Signature{}, 0},
		{"two scalar params", Signature{Params: []CoreType{I32, I64}}, 2},
		{"paramptr collapses to one", Signature{Params: nil, ParamPtr: true}, 1},
		{"retptr adds trailing arg", Signature{Params: []CoreType{I32}, RetPtr: true}, 2},
	}
	for _, c := range cases {
		if got := c.sig.JSParamCount(); got != c.want {
			t.Errorf("%s: JSParamCount() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestArgBufferWidth(t *testing.T) {
	cases := []struct {
		name string
		sig  Signature
		want int
	}{
		{"paramptr is one word", Signature{ParamPtr: true}, 4},
		{"i32 then i64", Signature{Params: []CoreType{I32, I64}}, 12},
		{"empty", Signature{}, 0},
	}
	for _, c := range cases {
		if got := c.sig.ArgBufferWidth(); got != c.want {
			t.Errorf("%s: ArgBufferWidth() = %d, want %d", c.name, got, c.want)
		}
	}
}
