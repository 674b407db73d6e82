// Package bufutil provides the small byte-slice and little-endian integer
// helpers used throughout the verifier. Every wire width fixed by the
// lock script (capacity, since, object length prefixes) is little-endian,
// so unlike the teacher's root package this module carries no big-endian
// variant.
package bufutil

import (
	"encoding/binary"
	"fmt"
)

// Concat returns the concatenation of data, copying into one buffer.
func Concat(data ...[]byte) []byte {
	n := 0
	for _, d := range data {
		n += len(d)
	}
	buf := make([]byte, 0, n)
	for _, d := range data {
		buf = append(buf, d...)
	}
	return buf
}

// CatchPanicOrError runs f and converts any panic into an error, so that an
// unexpected slice-bounds or nil-dereference deep in a parser surfaces as a
// regular error at the verifier's boundary instead of crashing the host
// process.
func CatchPanicOrError(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	return f()
}

// PutUint64LE writes v into buf (len(buf) >= 8) little-endian.
func PutUint64LE(buf []byte, v uint64) { binary.LittleEndian.PutUint64(buf, v) }

// Uint64LE reads a little-endian uint64 from buf (len(buf) >= 8).
func Uint64LE(buf []byte) uint64 { return binary.LittleEndian.Uint64(buf) }

// PutUint32LE writes v into buf (len(buf) >= 4) little-endian.
func PutUint32LE(buf []byte, v uint32) { binary.LittleEndian.PutUint32(buf, v) }

// Uint32LE reads a little-endian uint32 from buf (len(buf) >= 4).
func Uint32LE(buf []byte) uint32 { return binary.LittleEndian.Uint32(buf) }

// PutUint16LE writes v into buf (len(buf) >= 2) little-endian.
func PutUint16LE(buf []byte, v uint16) { binary.LittleEndian.PutUint16(buf, v) }

// Uint16LE reads a little-endian uint16 from buf (len(buf) >= 2).
func Uint16LE(buf []byte) uint16 { return binary.LittleEndian.Uint16(buf) }
