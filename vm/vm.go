// Package vm defines the host adapter: the bounded-read surface a host
// blockchain VM exposes to this lock script (spec §4.1, §6), and provides
// ReferenceHost, an in-memory implementation over a txmodel.Transaction
// used by tests, the sign package, and the cmd/sighash-lock-sim CLI. The
// real on-chain host (ckb-vm's syscall table) is an external collaborator
// spec §1 treats as trusted and out of scope; HostVM is the only contract
// this module needs from it.
package vm

import "errors"

// Source identifies which side of the transaction an index addresses,
// per spec §6.
type Source int

const (
	SourceGroupInput Source = iota
	SourceInput
	SourceOutput
)

func (s Source) String() string {
	switch s {
	case SourceGroupInput:
		return "GROUP_INPUT"
	case SourceInput:
		return "INPUT"
	case SourceOutput:
		return "OUTPUT"
	default:
		return "SOURCE(?)"
	}
}

// CellField selects a single field of a cell for load_cell_by_field.
type CellField int

const (
	CellFieldCapacity CellField = iota
	CellFieldType
	CellFieldLock
)

// InputField selects a single field of an input for load_input_by_field.
type InputField int

const (
	InputFieldSince InputField = iota
	InputFieldOutPoint
)

// Fixed buffer sizes, spec §4.1.
const (
	BufWitnessOrScript = 32 * 1024 // witnesses and the executing script
	BufStreamWindow    = 16 * 1024 // batched cell/input streaming window
	BufSingleInput     = 4 * 1024  // a single Input object (since + outpoint)
)

// ErrIndexOutOfBound is the sentinel the host reports when (index, source)
// names a position past the end of that source. It is not itself a fatal
// condition: spec §4.1 treats it as a normal loop terminator for the
// group-input prefix (§4.4) and the witness tail scans (§4.5); for an
// explicit index named by a CoverageOp it is propagated as a fatal error
// by the caller instead.
var ErrIndexOutOfBound = errors.New("vm: index out of bound")

// ObjectLoader reads a window of some host object starting at offset into
// buf, returning the number of bytes actually written and the object's
// total length. hasher.AbsorbObject drives one of these per spec §4.2's
// windowed-read algorithm. ReferenceHost's CellLoader, CellDataLoader and
// InputLoader all return one loader type, which stores a closure that
// resolves the object's bytes on first use.
type ObjectLoader interface {
	LoadAt(buf []byte, offset uint64) (n int, total uint64, err error)
}

// HostVM is the bounded-read surface spec §6 names. Every method returns
// ErrIndexOutOfBound when (index, source) is past the end of that source;
// any other error is a host-level failure and is fatal to the caller.
type HostVM interface {
	// LoadTxHash returns the 32-byte transaction hash.
	LoadTxHash() ([32]byte, error)
	// LoadScript returns the currently executing script, molecule-encoded.
	// Fatal ScriptTooLong if it exceeds BufWitnessOrScript.
	LoadScript() ([]byte, error)
	// LoadWitness returns the witness at (index, source) in full. Fatal
	// WitnessSize if it exceeds BufWitnessOrScript.
	LoadWitness(index uint32, source Source) ([]byte, error)
	// LoadWitnessAt returns the witness at a raw transaction-wide index,
	// with no source-relative translation — used to scan the orphan
	// witness tail beyond the input count (spec §4.5 step 4).
	LoadWitnessAt(globalIndex int) ([]byte, error)
	// LoadCellByField returns one field of the cell at (index, source).
	LoadCellByField(index uint32, source Source, field CellField) ([]byte, error)
	// LoadInputByField returns one field of the input at (index, source).
	LoadInputByField(index uint32, source Source, field InputField) ([]byte, error)
	// CellLoader returns the streaming loader for the full serialized cell
	// at (index, source) — molecule Cell{capacity, lock, type}.
	CellLoader(index uint32, source Source) ObjectLoader
	// CellDataLoader returns the streaming loader for the cell's data at
	// (index, source).
	CellDataLoader(index uint32, source Source) ObjectLoader
	// InputLoader returns the streaming loader for the full serialized
	// input (since + outpoint) at (index, source).
	InputLoader(index uint32, source Source) ObjectLoader
	// CalculateInputsLen returns the total number of inputs in the
	// transaction (spec §4.5's N, the boundary for the orphan witness tail).
	CalculateInputsLen() (uint64, error)
}
