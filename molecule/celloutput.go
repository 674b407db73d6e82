package molecule

import (
	"fmt"

	"github.com/nervosnetwork/ckb-open-sighash-lock/bufutil"
)

// CellOutput mirrors the molecule table CellOutput {capacity: Uint64,
// lock: Script, type: ScriptOpt}.
type CellOutput struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

// ParseCellOutput validates and decodes a serialized molecule CellOutput.
func ParseCellOutput(data []byte) (CellOutput, error) {
	fields, err := parseTable(data, 3)
	if err != nil {
		return CellOutput{}, fmt.Errorf("parse cell output: %w", err)
	}
	capField, lockField, typeField := fields[0], fields[1], fields[2]
	if len(capField) != 8 {
		return CellOutput{}, fmt.Errorf("%w: cell output capacity is %d bytes, want 8", ErrEncoding, len(capField))
	}
	lock, err := ParseScript(lockField)
	if err != nil {
		return CellOutput{}, fmt.Errorf("parse cell output lock: %w", err)
	}
	var typ *Script
	if len(typeField) > 0 {
		t, err := ParseScript(typeField)
		if err != nil {
			return CellOutput{}, fmt.Errorf("parse cell output type: %w", err)
		}
		typ = &t
	}
	return CellOutput{
		Capacity: bufutil.Uint64LE(capField),
		Lock:     lock,
		Type:     typ,
	}, nil
}

// Serialize re-encodes the CellOutput into its canonical molecule wire
// form, used by the coverage interpreter's fast path (mask == 0xFF).
func (c CellOutput) Serialize() []byte {
	capBuf := make([]byte, 8)
	bufutil.PutUint64LE(capBuf, c.Capacity)
	typeField := []byte{}
	if c.Type != nil {
		typeField = c.Type.Serialize()
	}
	return serializeTable([][]byte{capBuf, c.Lock.Serialize(), typeField})
}

// CapacityLE returns the cell's capacity field as its own 8-byte
// little-endian serialization, the absorb unit the CAPACITY mask bit
// needs (spec §4.3).
func (c CellOutput) CapacityLE() []byte {
	buf := make([]byte, 8)
	bufutil.PutUint64LE(buf, c.Capacity)
	return buf
}
