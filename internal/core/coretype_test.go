package core

import "testing"

func TestCoreTypeWidth(t *testing.T) {
	cases := []struct {
		t    CoreType
		want int
	}{
		{I32, 4}, {F32, 4}, {I64, 8}, {F64, 8},
	}
	for _, c := range cases {
		if got := c.t.Width(); got != c.want {
			t.Errorf("%v.Width() = %d, want %d", c.t, got, c.want)
		}
	}
}

func TestCoreTypeString(t *testing.T) {
	cases := map[CoreType]string{
		I32: "i32", I64: "i64", F32: "f32", F64: "f64",
	}
	for ct, want := range cases {
		if got := ct.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
	if got := CoreType(99).String(); got != "unknown" {
		t.Errorf("String() of unknown variant = %q, want %q", got, "unknown")
	}
}
