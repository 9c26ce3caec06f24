package engine

import "math"

// Little-endian word codec for the flat ABI argument/return buffers (spec
// §4.7): I32/F32 occupy one 4-byte word, I64/F64 occupy two.

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func le64(b []byte) uint64 {
	return uint64(le32(b[:4])) | uint64(le32(b[4:8]))<<32
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putLE64(b []byte, v uint64) {
	putLE32(b[:4], uint32(v))
	putLE32(b[4:8], uint32(v>>32))
}

func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }
func float32bits(f float32) uint32     { return math.Float32bits(f) }
func float64bits(f float64) uint64     { return math.Float64bits(f) }
