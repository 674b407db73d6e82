package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"go.uber.org/zap"

	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sighash"
	"github.com/nervosnetwork/ckb-open-sighash-lock/txmodel"
	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
)

// fixture is the JSON shape cmd/sighash-lock-sim reads: a hand-describable
// transaction plus the script-group and host-adapter inputs lock.VerifyErr
// needs, the operator-tooling counterpart to vm.ReferenceHost's
// constructor arguments (spec §6 names the wire encodings; this names the
// plain JSON an operator would type by hand).
type fixture struct {
	Inputs             []jsonCellInput  `json:"inputs"`
	Outputs            []jsonCellOutput `json:"outputs"`
	OutputsData        []hexBytes       `json:"outputs_data"`
	Witnesses          []hexBytes       `json:"witnesses"`
	ResolvedInputs     []jsonCellOutput `json:"resolved_inputs"`
	ResolvedInputsData []hexBytes       `json:"resolved_inputs_data"`
	GroupInputIndices  []uint32         `json:"group_input_indices"`
	Script             jsonScript       `json:"script"`
	TxHash             hexBytes         `json:"tx_hash"`
	Coverage           []jsonCoverageOp `json:"coverage"`
	PrivateKey         hexBytes         `json:"private_key,omitempty"`
}

type jsonOutPoint struct {
	TxHash hexBytes `json:"tx_hash"`
	Index  uint32   `json:"index"`
}

type jsonCellInput struct {
	Since          uint64       `json:"since"`
	PreviousOutput jsonOutPoint `json:"previous_output"`
}

type jsonScript struct {
	CodeHash hexBytes `json:"code_hash"`
	HashType string   `json:"hash_type"`
	Args     hexBytes `json:"args"`
}

type jsonCellOutput struct {
	Capacity uint64      `json:"capacity"`
	Lock     jsonScript  `json:"lock"`
	Type     *jsonScript `json:"type,omitempty"`
}

type jsonCoverageOp struct {
	Label string `json:"label"`
	Index uint16 `json:"index"`
	Mask  byte   `json:"mask"`
}

// hexBytes decodes/encodes as a "0x"-prefixed hex string in JSON.
type hexBytes []byte

func (h hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(h))
}

func (h *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	*h = b
	return nil
}

func parseHashType(s string) (molecule.HashType, error) {
	switch s {
	case "data", "":
		return molecule.HashTypeData, nil
	case "type":
		return molecule.HashTypeType, nil
	case "data1":
		return molecule.HashTypeData1, nil
	case "data2":
		return molecule.HashTypeData2, nil
	default:
		return 0, fmt.Errorf("unknown hash_type %q", s)
	}
}

func (s jsonScript) toScript() (molecule.Script, error) {
	hashType, err := parseHashType(s.HashType)
	if err != nil {
		return molecule.Script{}, err
	}
	var out molecule.Script
	copy(out.CodeHash[:], s.CodeHash)
	out.HashType = hashType
	out.Args = []byte(s.Args)
	return out, nil
}

func (o jsonCellOutput) toCellOutput() (molecule.CellOutput, error) {
	lock, err := o.Lock.toScript()
	if err != nil {
		return molecule.CellOutput{}, fmt.Errorf("lock: %w", err)
	}
	out := molecule.CellOutput{Capacity: o.Capacity, Lock: lock}
	if o.Type != nil {
		typ, err := o.Type.toScript()
		if err != nil {
			return molecule.CellOutput{}, fmt.Errorf("type: %w", err)
		}
		out.Type = &typ
	}
	return out, nil
}

func (i jsonCellInput) toCellInput() molecule.CellInput {
	var op molecule.OutPoint
	copy(op.TxHash[:], i.PreviousOutput.TxHash)
	op.Index = i.PreviousOutput.Index
	return molecule.CellInput{Since: i.Since, PreviousOutput: op}
}

var labelByName = map[string]sighash.Label{
	"SIGHASH_ALL":      sighash.SighashAll,
	"OUTPUT":           sighash.Output,
	"INPUT_CELL":       sighash.InputCell,
	"INPUT_CELL_SINCE": sighash.InputCellSince,
	"INPUT_OUTPOINT":   sighash.InputOutpoint,
	"END_OF_LIST":      sighash.EndOfList,
}

func (op jsonCoverageOp) toCoverageOp() (sighash.CoverageOp, error) {
	label, ok := labelByName[op.Label]
	if !ok {
		return sighash.CoverageOp{}, fmt.Errorf("unknown coverage label %q", op.Label)
	}
	return sighash.CoverageOp{Label: label, Index: op.Index, Mask: op.Mask}, nil
}

// build decodes the fixture into a txmodel.Transaction, the resolved
// input cells, and the secp256k1 private key (nil if PrivateKey is empty).
func (f fixture) build() (*txmodel.Transaction, []molecule.CellOutput, [][]byte, molecule.Script, [32]byte, *secp256k1.PrivateKey, error) {
	tx := &txmodel.Transaction{
		OutputsData: toByteSlices(f.OutputsData),
		Witnesses:   toByteSlices(f.Witnesses),
	}
	for _, in := range f.Inputs {
		tx.Inputs = append(tx.Inputs, in.toCellInput())
	}
	for _, out := range f.Outputs {
		co, err := out.toCellOutput()
		if err != nil {
			return nil, nil, nil, molecule.Script{}, [32]byte{}, nil, fmt.Errorf("output: %w", err)
		}
		tx.Outputs = append(tx.Outputs, co)
	}

	var resolvedInputs []molecule.CellOutput
	for _, out := range f.ResolvedInputs {
		co, err := out.toCellOutput()
		if err != nil {
			return nil, nil, nil, molecule.Script{}, [32]byte{}, nil, fmt.Errorf("resolved_inputs: %w", err)
		}
		resolvedInputs = append(resolvedInputs, co)
	}
	resolvedInputsData := toByteSlices(f.ResolvedInputsData)

	script, err := f.Script.toScript()
	if err != nil {
		return nil, nil, nil, molecule.Script{}, [32]byte{}, nil, fmt.Errorf("script: %w", err)
	}

	var txHash [32]byte
	copy(txHash[:], f.TxHash)

	var priv *secp256k1.PrivateKey
	if len(f.PrivateKey) > 0 {
		priv = secp256k1.PrivKeyFromBytes(f.PrivateKey)
	}

	return tx, resolvedInputs, resolvedInputsData, script, txHash, priv, nil
}

func toByteSlices(in []hexBytes) [][]byte {
	out := make([][]byte, len(in))
	for i, b := range in {
		out[i] = []byte(b)
	}
	return out
}

// buildHost is build plus the vm.ReferenceHost wrapping the result, the
// shape both the sign and verify subcommands need.
func (f fixture) buildHost(log *zap.SugaredLogger) (*vm.ReferenceHost, *secp256k1.PrivateKey, error) {
	tx, resolvedInputs, resolvedInputsData, script, txHash, priv, err := f.build()
	if err != nil {
		return nil, nil, err
	}
	host, err := vm.NewReferenceHost(tx, resolvedInputs, resolvedInputsData, f.GroupInputIndices, script, txHash, log)
	if err != nil {
		return nil, nil, err
	}
	return host, priv, nil
}

func (f fixture) coverageOps() ([]sighash.CoverageOp, error) {
	var ops []sighash.CoverageOp
	for _, op := range f.Coverage {
		if op.Label == "END_OF_LIST" {
			continue
		}
		co, err := op.toCoverageOp()
		if err != nil {
			return nil, err
		}
		ops = append(ops, co)
	}
	return ops, nil
}

func loadFixture(data []byte) (fixture, error) {
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}
