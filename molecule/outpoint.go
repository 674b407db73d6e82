package molecule

import (
	"fmt"

	"github.com/nervosnetwork/ckb-open-sighash-lock/bufutil"
)

// outPointSize is the fixed size of a molecule struct OutPoint
// {tx_hash: Byte32, index: Uint32}: structs carry no size header or
// offset table, unlike tables.
const outPointSize = 32 + 4

// OutPoint mirrors the molecule struct OutPoint {tx_hash: Byte32, index: Uint32}.
type OutPoint struct {
	TxHash [32]byte
	Index  uint32
}

// ParseOutPoint validates and decodes a serialized molecule OutPoint.
func ParseOutPoint(data []byte) (OutPoint, error) {
	if len(data) != outPointSize {
		return OutPoint{}, fmt.Errorf("%w: outpoint is %d bytes, want %d", ErrEncoding, len(data), outPointSize)
	}
	var op OutPoint
	copy(op.TxHash[:], data[:32])
	op.Index = bufutil.Uint32LE(data[32:36])
	return op, nil
}

// Serialize re-encodes the OutPoint into its canonical molecule wire form.
func (op OutPoint) Serialize() []byte {
	buf := make([]byte, outPointSize)
	copy(buf[:32], op.TxHash[:])
	bufutil.PutUint32LE(buf[32:36], op.Index)
	return buf
}

// IndexLE returns the outpoint's index field as its own 4-byte
// little-endian serialization — the absorb unit spec §4.3's
// INPUT_OUTPOINT path needs for the (fixed) outpoint-index bug.
func (op OutPoint) IndexLE() []byte {
	buf := make([]byte, 4)
	bufutil.PutUint32LE(buf, op.Index)
	return buf
}
