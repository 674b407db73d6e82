// Package molecule implements just enough of the molecule serialization
// format (https://github.com/nervosnetwork/molecule) to read the four
// structures this lock script consumes from the host: Bytes, BytesOpt,
// Script and OutPoint, plus the WitnessArgs table that wraps the witness
// lock payload. Every reader validates the structural shape (declared size
// matches the buffer, offsets are monotonic and in-bounds) before slicing
// out any field, the same "parse the envelope before trusting the
// contents" discipline the teacher's lazyslice.Array applies to its own
// length-prefixed arrays.
//
// All multi-byte integers in molecule are little-endian, matching the
// fixed wire widths spec §6 assigns to capacity/since/index.
package molecule

import (
	"errors"
	"fmt"

	"github.com/nervosnetwork/ckb-open-sighash-lock/bufutil"
)

// ErrEncoding is returned whenever a buffer fails structural validation:
// too short for its own header, a declared size that disagrees with the
// buffer length, or offsets that are not monotonically increasing.
var ErrEncoding = errors.New("molecule: encoding error")

const u32Size = 4

func readU32(data []byte, offset int) (uint32, error) {
	if offset < 0 || offset+u32Size > len(data) {
		return 0, fmt.Errorf("%w: u32 read out of bounds at %d (len %d)", ErrEncoding, offset, len(data))
	}
	return bufutil.Uint32LE(data[offset : offset+u32Size]), nil
}

// parseTable validates a molecule table's envelope and returns the raw
// byte slices of its numFields fields, in declaration order. Field bytes
// are not copied: every returned slice aliases data.
func parseTable(data []byte, numFields int) ([][]byte, error) {
	if len(data) < u32Size {
		return nil, fmt.Errorf("%w: table shorter than size header", ErrEncoding)
	}
	fullSize, err := readU32(data, 0)
	if err != nil {
		return nil, err
	}
	if int(fullSize) != len(data) {
		return nil, fmt.Errorf("%w: table declares size %d, buffer has %d", ErrEncoding, fullSize, len(data))
	}
	headerEnd := u32Size + u32Size*numFields
	if numFields == 0 {
		headerEnd = u32Size
	}
	if len(data) < headerEnd {
		return nil, fmt.Errorf("%w: table shorter than its offset header", ErrEncoding)
	}
	offsets := make([]int, numFields+1)
	for i := 0; i < numFields; i++ {
		off, err := readU32(data, u32Size+i*u32Size)
		if err != nil {
			return nil, err
		}
		offsets[i] = int(off)
	}
	offsets[numFields] = int(fullSize)

	fields := make([][]byte, numFields)
	for i := 0; i < numFields; i++ {
		start, end := offsets[i], offsets[i+1]
		if start < headerEnd || start > end || end > len(data) {
			return nil, fmt.Errorf("%w: table field %d has bad offsets [%d,%d)", ErrEncoding, i, start, end)
		}
		fields[i] = data[start:end]
	}
	return fields, nil
}

// serializeTable builds a molecule table from already-serialized field
// bytes, writing the size header and offset table spec-correctly.
func serializeTable(fields [][]byte) []byte {
	headerSize := u32Size + u32Size*len(fields)
	total := headerSize
	for _, f := range fields {
		total += len(f)
	}
	buf := make([]byte, total)
	bufutil.PutUint32LE(buf[0:4], uint32(total))
	offset := headerSize
	for i, f := range fields {
		bufutil.PutUint32LE(buf[u32Size+i*u32Size:u32Size+i*u32Size+u32Size], uint32(offset))
		copy(buf[offset:offset+len(f)], f)
		offset += len(f)
	}
	return buf
}

// ParseBytes reads a molecule Bytes value: a 4-byte little-endian total
// size (including the header) followed by that many raw bytes.
func ParseBytes(data []byte) ([]byte, error) {
	if len(data) < u32Size {
		return nil, fmt.Errorf("%w: Bytes shorter than size header", ErrEncoding)
	}
	size, err := readU32(data, 0)
	if err != nil {
		return nil, err
	}
	if int(size) != len(data) {
		return nil, fmt.Errorf("%w: Bytes declares size %d, buffer has %d", ErrEncoding, size, len(data))
	}
	return data[u32Size:], nil
}

// SerializeBytes encodes b as a molecule Bytes value.
func SerializeBytes(b []byte) []byte {
	buf := make([]byte, u32Size+len(b))
	bufutil.PutUint32LE(buf[:u32Size], uint32(len(buf)))
	copy(buf[u32Size:], b)
	return buf
}

// ParseBytesOpt reads a molecule BytesOpt value: an empty buffer means
// None (present=false); otherwise it is parsed as Bytes.
func ParseBytesOpt(data []byte) (value []byte, present bool, err error) {
	if len(data) == 0 {
		return nil, false, nil
	}
	value, err = ParseBytes(data)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// SerializeBytesOpt encodes value as a molecule BytesOpt, or an empty
// buffer if present is false.
func SerializeBytesOpt(value []byte, present bool) []byte {
	if !present {
		return nil
	}
	return SerializeBytes(value)
}
