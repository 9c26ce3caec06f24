package engine

import "testing"

func TestLE32RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 0xdeadbeef, 0xffffffff}
	for _, v := range cases {
		buf := make([]byte, 4)
		putLE32(buf, v)
		if got := le32(buf); got != v {
			t.Errorf("le32(putLE32(%#x)) = %#x", v, got)
		}
	}
}

func TestLE32ByteOrder(t *testing.T) {
	buf := make([]byte, 4)
	putLE32(buf, 0x01020304)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, buf[i], want[i])
		}
	}
}

func TestLE64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xdeadbeefcafebabe, 0xffffffffffffffff}
	for _, v := range cases {
		buf := make([]byte, 8)
		putLE64(buf, v)
		if got := le64(buf); got != v {
			t.Errorf("le64(putLE64(%#x)) = %#x", v, got)
		}
	}
}

func TestFloat32BitsRoundTrip(t *testing.T) {
	cases := []float32{0, 1, -1, 3.14159, 1e30}
	for _, f := range cases {
		if got := float32frombits(float32bits(f)); got != f {
			t.Errorf("float32frombits(float32bits(%v)) = %v", f, got)
		}
	}
}

func TestFloat64BitsRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 3.14159265358979, 1e300}
	for _, f := range cases {
		if got := float64frombits(float64bits(f)); got != f {
			t.Errorf("float64frombits(float64bits(%v)) = %v", f, got)
		}
	}
}
