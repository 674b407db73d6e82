package molecule

import (
	"fmt"

	"github.com/nervosnetwork/ckb-open-sighash-lock/bufutil"
)

// cellInputSize is the fixed size of a molecule struct CellInput
// {since: Uint64, previous_output: OutPoint}.
const cellInputSize = 8 + outPointSize

// CellInput mirrors the molecule struct CellInput {since: Uint64,
// previous_output: OutPoint}.
type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

// ParseCellInput validates and decodes a serialized molecule CellInput.
func ParseCellInput(data []byte) (CellInput, error) {
	if len(data) != cellInputSize {
		return CellInput{}, fmt.Errorf("%w: cell input is %d bytes, want %d", ErrEncoding, len(data), cellInputSize)
	}
	op, err := ParseOutPoint(data[8:])
	if err != nil {
		return CellInput{}, err
	}
	return CellInput{
		Since:          bufutil.Uint64LE(data[:8]),
		PreviousOutput: op,
	}, nil
}

// Serialize re-encodes the CellInput into its canonical molecule wire
// form. vm.ReferenceHost serves it for the coverage interpreter's
// INPUT_OUTPOINT fast path and the group-input prefix.
func (c CellInput) Serialize() []byte {
	buf := make([]byte, cellInputSize)
	bufutil.PutUint64LE(buf[:8], c.Since)
	copy(buf[8:], c.PreviousOutput.Serialize())
	return buf
}

// SinceLE returns the input's since field as its own 8-byte
// little-endian serialization.
func (c CellInput) SinceLE() []byte {
	buf := make([]byte, 8)
	bufutil.PutUint64LE(buf, c.Since)
	return buf
}
