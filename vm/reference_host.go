package vm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/txmodel"
)

// ReferenceHost is an in-memory HostVM over a txmodel.Transaction. It plays
// the same role for this module that ledger/state.ValidationContext plays
// for the teacher: a host-independent way to run the verifier against a
// constructed transaction, used by tests, the sign package's fixtures, and
// cmd/sighash-lock-sim. It is not the on-chain host (spec §1 treats that
// as an external collaborator) — it is the development/test stand-in for it.
type ReferenceHost struct {
	tx *txmodel.Transaction

	// resolvedInputs/resolvedInputsData are the previous outputs the
	// transaction's inputs spend, resolved ahead of time — a real chain
	// node resolves these from its UTXO set, which is out of this
	// module's scope (spec §1).
	resolvedInputs     []molecule.CellOutput
	resolvedInputsData [][]byte

	// groupInputIndices maps a GROUP_INPUT-relative index to its position
	// in tx.Inputs, for the script group currently executing.
	groupInputIndices []uint32

	script      molecule.Script
	scriptBytes []byte
	txHash      [32]byte

	log *zap.SugaredLogger
}

// NewReferenceHost builds a ReferenceHost. txHash is the transaction hash
// the host reports from LoadTxHash — computing it from tx is an external
// collaborator's job (spec §1); callers typically get it from txmodel's
// own hashing helper or a fixture constant.
func NewReferenceHost(
	tx *txmodel.Transaction,
	resolvedInputs []molecule.CellOutput,
	resolvedInputsData [][]byte,
	groupInputIndices []uint32,
	script molecule.Script,
	txHash [32]byte,
	log *zap.SugaredLogger,
) (*ReferenceHost, error) {
	if len(resolvedInputs) != len(tx.Inputs) || len(resolvedInputsData) != len(tx.Inputs) {
		return nil, fmt.Errorf("vm: resolved input cells must match tx.Inputs 1:1")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ReferenceHost{
		tx:                 tx,
		resolvedInputs:     resolvedInputs,
		resolvedInputsData: resolvedInputsData,
		groupInputIndices:  groupInputIndices,
		script:             script,
		scriptBytes:        script.Serialize(),
		txHash:             txHash,
		log:                log,
	}, nil
}

func (h *ReferenceHost) LoadTxHash() ([32]byte, error) {
	h.log.Debugw("load_tx_hash")
	return h.txHash, nil
}

func (h *ReferenceHost) LoadScript() ([]byte, error) {
	h.log.Debugw("load_script", "len", len(h.scriptBytes))
	if len(h.scriptBytes) > BufWitnessOrScript {
		return nil, lockerr.New(lockerr.ScriptTooLong, "script is %d bytes, max %d", len(h.scriptBytes), BufWitnessOrScript)
	}
	return h.scriptBytes, nil
}

func (h *ReferenceHost) resolveInputIndex(index uint32, source Source) (int, error) {
	switch source {
	case SourceGroupInput:
		if int(index) >= len(h.groupInputIndices) {
			return 0, ErrIndexOutOfBound
		}
		return int(h.groupInputIndices[index]), nil
	case SourceInput:
		if int(index) >= len(h.tx.Inputs) {
			return 0, ErrIndexOutOfBound
		}
		return int(index), nil
	default:
		return 0, fmt.Errorf("vm: source %s has no inputs", source)
	}
}

func (h *ReferenceHost) LoadWitness(index uint32, source Source) ([]byte, error) {
	var w []byte
	switch source {
	case SourceGroupInput, SourceInput:
		gi, err := h.resolveInputIndex(index, source)
		if err != nil {
			return nil, err
		}
		if gi >= len(h.tx.Witnesses) {
			return nil, ErrIndexOutOfBound
		}
		w = h.tx.Witnesses[gi]
	default:
		return nil, fmt.Errorf("vm: load_witness unsupported for source %s", source)
	}
	h.log.Debugw("load_witness", "index", index, "source", source, "len", len(w))
	if len(w) > BufWitnessOrScript {
		return nil, lockerr.New(lockerr.WitnessSize, "witness is %d bytes, max %d", len(w), BufWitnessOrScript)
	}
	return w, nil
}

// LoadWitnessAt loads a witness purely by its position in the shared
// transaction-wide witness vector, with no source-relative translation —
// the shape spec §4.5 step 4 needs to scan the orphan tail beyond the
// input count.
func (h *ReferenceHost) LoadWitnessAt(globalIndex int) ([]byte, error) {
	if globalIndex < 0 || globalIndex >= len(h.tx.Witnesses) {
		return nil, ErrIndexOutOfBound
	}
	w := h.tx.Witnesses[globalIndex]
	if len(w) > BufWitnessOrScript {
		return nil, lockerr.New(lockerr.WitnessSize, "witness is %d bytes, max %d", len(w), BufWitnessOrScript)
	}
	return w, nil
}

func (h *ReferenceHost) resolveCell(index uint32, source Source) (molecule.CellOutput, []byte, error) {
	switch source {
	case SourceOutput:
		if int(index) >= len(h.tx.Outputs) {
			return molecule.CellOutput{}, nil, ErrIndexOutOfBound
		}
		return h.tx.Outputs[index], h.tx.OutputsData[index], nil
	case SourceGroupInput, SourceInput:
		gi, err := h.resolveInputIndex(index, source)
		if err != nil {
			return molecule.CellOutput{}, nil, err
		}
		return h.resolvedInputs[gi], h.resolvedInputsData[gi], nil
	default:
		return molecule.CellOutput{}, nil, fmt.Errorf("vm: source %s has no cells", source)
	}
}

func (h *ReferenceHost) LoadCellByField(index uint32, source Source, field CellField) ([]byte, error) {
	cell, _, err := h.resolveCell(index, source)
	if err != nil {
		return nil, err
	}
	switch field {
	case CellFieldCapacity:
		return cell.CapacityLE(), nil
	case CellFieldType:
		if cell.Type == nil {
			return []byte{}, nil
		}
		return cell.Type.Serialize(), nil
	case CellFieldLock:
		return cell.Lock.Serialize(), nil
	default:
		return nil, fmt.Errorf("vm: unknown cell field %d", field)
	}
}

func (h *ReferenceHost) LoadInputByField(index uint32, source Source, field InputField) ([]byte, error) {
	gi, err := h.resolveInputIndex(index, source)
	if err != nil {
		return nil, err
	}
	input := h.tx.Inputs[gi]
	switch field {
	case InputFieldSince:
		return input.SinceLE(), nil
	case InputFieldOutPoint:
		return input.PreviousOutput.Serialize(), nil
	default:
		return nil, fmt.Errorf("vm: unknown input field %d", field)
	}
}

func (h *ReferenceHost) CalculateInputsLen() (uint64, error) {
	return uint64(len(h.tx.Inputs)), nil
}

// byteLoader adapts an already (or lazily) resolved byte slice into an
// ObjectLoader, serving fixed-size windows of it.
type byteLoader struct {
	resolve func() ([]byte, error)
	data    []byte
	err     error
	done    bool
}

func (b *byteLoader) LoadAt(buf []byte, offset uint64) (int, uint64, error) {
	if !b.done {
		b.data, b.err = b.resolve()
		b.done = true
	}
	if b.err != nil {
		return 0, 0, b.err
	}
	total := uint64(len(b.data))
	if offset > total {
		return 0, total, fmt.Errorf("vm: offset %d beyond object length %d", offset, total)
	}
	n := copy(buf, b.data[offset:])
	return n, total, nil
}

func (h *ReferenceHost) CellLoader(index uint32, source Source) ObjectLoader {
	return &byteLoader{resolve: func() ([]byte, error) {
		cell, _, err := h.resolveCell(index, source)
		if err != nil {
			return nil, err
		}
		return cell.Serialize(), nil
	}}
}

func (h *ReferenceHost) CellDataLoader(index uint32, source Source) ObjectLoader {
	return &byteLoader{resolve: func() ([]byte, error) {
		_, data, err := h.resolveCell(index, source)
		if err != nil {
			return nil, err
		}
		return data, nil
	}}
}

func (h *ReferenceHost) InputLoader(index uint32, source Source) ObjectLoader {
	return &byteLoader{resolve: func() ([]byte, error) {
		gi, err := h.resolveInputIndex(index, source)
		if err != nil {
			return nil, err
		}
		return h.tx.Inputs[gi].Serialize(), nil
	}}
}

var _ HostVM = (*ReferenceHost)(nil)
