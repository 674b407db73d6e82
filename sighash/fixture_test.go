package sighash_test

import (
	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/txmodel"
	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
)

// buildFixture returns a small 2-input, 2-output transaction plus a
// ReferenceHost over it with both inputs (0 and 1) in the script group, for
// the coverage interpreter tests.
func buildFixture() (*vm.ReferenceHost, *txmodel.Transaction) {
	lockA := molecule.Script{CodeHash: byte32(0xAA), HashType: molecule.HashTypeType, Args: []byte{1, 2, 3, 4}}
	lockB := molecule.Script{CodeHash: byte32(0xBB), HashType: molecule.HashTypeType, Args: []byte{5, 6, 7, 8}}
	typeA := molecule.Script{CodeHash: byte32(0xCC), HashType: molecule.HashTypeData, Args: []byte{9, 9}}

	prevOut0 := molecule.OutPoint{TxHash: byte32(0x01), Index: 0}
	prevOut1 := molecule.OutPoint{TxHash: byte32(0x02), Index: 1}

	tx := &txmodel.Transaction{
		Inputs: []molecule.CellInput{
			{Since: 0, PreviousOutput: prevOut0},
			{Since: 42, PreviousOutput: prevOut1},
		},
		Outputs: []molecule.CellOutput{
			{Capacity: 1000, Lock: lockA, Type: &typeA},
			{Capacity: 2000, Lock: lockB, Type: nil},
		},
		OutputsData: [][]byte{{0xDE, 0xAD}, {}},
		Witnesses:   [][]byte{{0xF0}, {0xF1}},
	}

	resolvedInputs := []molecule.CellOutput{
		{Capacity: 500, Lock: lockA, Type: nil},
		{Capacity: 600, Lock: lockB, Type: nil},
	}
	resolvedInputsData := [][]byte{{}, {}}

	script := molecule.Script{CodeHash: byte32(0xEE), HashType: molecule.HashTypeType, Args: []byte{1, 2, 3, 4}}
	host, err := vm.NewReferenceHost(tx, resolvedInputs, resolvedInputsData, []uint32{0, 1}, script, byte32(0x77), nil)
	if err != nil {
		panic(err)
	}
	return host, tx
}

func byte32(fill byte) [32]byte {
	var b [32]byte
	for i := range b {
		b[i] = fill
	}
	return b
}
