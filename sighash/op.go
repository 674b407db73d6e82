// Package sighash implements the sighash-coverage language: the binary
// format of CoverageOp (spec §3) and the interpreter that drives a
// hasher.Session to absorb the caller-selected transaction components in
// order (spec §4.3), plus the mandatory group-input anti-replay prefix
// (spec §4.4).
//
// Grounded on the teacher's ledger/opcodes package (tag-byte read,
// cursor advance, dispatch by tag) and ledger/path (addressing a
// transaction component by (source, index)) — generalized here to a
// fixed, jump-free 6-label dispatch instead of a general bytecode VM,
// since spec §4.3 has no control flow beyond "read op, act, maybe stop".
package sighash

import (
	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
)

// Label identifies what a CoverageOp absorbs, spec §3.
type Label byte

const (
	SighashAll    Label = 0x0
	Output        Label = 0x1
	InputCell     Label = 0x2
	InputCellSince Label = 0x3
	InputOutpoint Label = 0x4
	EndOfList     Label = 0xF
)

func (l Label) String() string {
	switch l {
	case SighashAll:
		return "SIGHASH_ALL"
	case Output:
		return "OUTPUT"
	case InputCell:
		return "INPUT_CELL"
	case InputCellSince:
		return "INPUT_CELL_SINCE"
	case InputOutpoint:
		return "INPUT_OUTPOINT"
	case EndOfList:
		return "END_OF_LIST"
	default:
		return "INVALID_LABEL"
	}
}

// opSize is the fixed 3-byte width of a CoverageOp, spec §3.
const opSize = 3

// CoverageOp is one entry of the sighash-coverage array: a 3-byte,
// bit-packed instruction naming a transaction component and which of its
// sub-fields to absorb.
type CoverageOp struct {
	Label Label
	Index uint16 // 12-bit, 0..4095
	Mask  byte
}

// ParseOp decodes exactly 3 bytes into a CoverageOp, per spec §3's
// bit layout:
//
//	byte0: [label:4 | index_hi:4]
//	byte1: [index_lo:8]
//	byte2: [mask:8]
func ParseOp(b []byte) (CoverageOp, error) {
	if len(b) != opSize {
		return CoverageOp{}, lockerr.New(lockerr.InvalidLabel, "coverage op must be %d bytes, got %d", opSize, len(b))
	}
	label := Label(b[0] >> 4)
	indexHi := uint16(b[0] & 0x0F)
	indexLo := uint16(b[1])
	return CoverageOp{
		Label: label,
		Index: (indexHi << 8) | indexLo,
		Mask:  b[2],
	}, nil
}

// Bytes re-encodes the op into its canonical 3-byte wire form, used by
// the sign package's test/tooling fixtures.
func (op CoverageOp) Bytes() []byte {
	indexHi := byte((op.Index >> 8) & 0x0F)
	return []byte{
		(byte(op.Label) << 4) | indexHi,
		byte(op.Index & 0xFF),
		op.Mask,
	}
}
