package lock_test

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/nervosnetwork/ckb-open-sighash-lock/lock"
	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sighash"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sign"
	"github.com/nervosnetwork/ckb-open-sighash-lock/txmodel"
	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
)

func testKey(seed byte) *secp256k1.PrivateKey {
	b := make([]byte, 32)
	for i := range b {
		b[i] = seed
	}
	b[31] = seed + 1
	return secp256k1.PrivKeyFromBytes(b)
}

// minimalTx returns a 1-input, 1-output transaction whose lock script's
// args is priv's pubkey hash, plus the resolved input cell and an empty
// placeholder witness ready for sign.LockBytes to fill in.
func minimalTx(priv *secp256k1.PrivateKey) (*txmodel.Transaction, []molecule.CellOutput, [][]byte, molecule.Script) {
	args := sign.Args(priv)
	script := molecule.Script{HashType: molecule.HashTypeType, Args: args[:]}

	inputCell := molecule.CellOutput{Capacity: 500, Lock: script}
	outputCell := molecule.CellOutput{Capacity: 400, Lock: script}

	tx := &txmodel.Transaction{
		Inputs:      []molecule.CellInput{{Since: 0, PreviousOutput: molecule.OutPoint{Index: 0}}},
		Outputs:     []molecule.CellOutput{outputCell},
		OutputsData: [][]byte{{}},
		Witnesses:   [][]byte{molecule.WitnessArgs{}.Serialize()},
	}
	return tx, []molecule.CellOutput{inputCell}, [][]byte{{}}, script
}

func buildHost(t *testing.T, tx *txmodel.Transaction, resolvedInputs []molecule.CellOutput, resolvedInputsData [][]byte, script molecule.Script, txHash [32]byte) *vm.ReferenceHost {
	host, err := vm.NewReferenceHost(tx, resolvedInputs, resolvedInputsData, []uint32{0}, script, txHash, nil)
	require.NoError(t, err)
	return host
}

// signAndInstall signs tx's host with priv over coverageOps, and writes
// the resulting LockBytes into tx.Witnesses[0], ready for lock.VerifyErr.
func signAndInstall(t *testing.T, priv *secp256k1.PrivateKey, host *vm.ReferenceHost, tx *txmodel.Transaction, coverageOps []sighash.CoverageOp) {
	lockBytes, err := sign.LockBytes(priv, host, coverageOps)
	require.NoError(t, err)
	tx.Witnesses[0] = molecule.WitnessArgs{Lock: lockBytes, HasLock: true}.Serialize()
}

func TestS1Minimal(t *testing.T) {
	priv := testKey(1)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0xAA})

	signAndInstall(t, priv, host, tx, nil)

	require.Equal(t, 0, lock.Verify(host))
}

func TestS2SighashAllDetectsMutation(t *testing.T) {
	priv := testKey(2)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	txHash := [32]byte{0xBB}
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, txHash)

	signAndInstall(t, priv, host, tx, []sighash.CoverageOp{{Label: sighash.SighashAll}})
	require.Equal(t, 0, lock.Verify(host))

	// Same signature, different reported tx hash: the signer committed
	// to the original hash via SIGHASH_ALL, so this must fail.
	mutatedHash := [32]byte{0xCC}
	mutatedHost := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, mutatedHash)
	require.NotEqual(t, 0, lock.Verify(mutatedHost))
}

func TestS3OpenExtensionSucceeds(t *testing.T) {
	priv := testKey(3)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0xDD})

	signAndInstall(t, priv, host, tx, []sighash.CoverageOp{{Label: sighash.Output, Index: 0, Mask: sighash.CellFastPath}})
	require.Equal(t, 0, lock.Verify(host))

	// A third party appends a new output and a new (non-group) input.
	// The signature only covers output 0 and the group's own inputs, so
	// this extension must not invalidate it.
	extendedTx := &txmodel.Transaction{
		Inputs:      append(append([]molecule.CellInput{}, tx.Inputs...), molecule.CellInput{Since: 0, PreviousOutput: molecule.OutPoint{Index: 1}}),
		Outputs:     append(append([]molecule.CellOutput{}, tx.Outputs...), molecule.CellOutput{Capacity: 50, Lock: script}),
		OutputsData: append(append([][]byte{}, tx.OutputsData...), []byte{}),
		Witnesses:   append(append([][]byte{}, tx.Witnesses...), []byte{}),
	}
	extendedResolvedInputs := append(append([]molecule.CellOutput{}, resolvedInputs...), molecule.CellOutput{Capacity: 50, Lock: script})
	extendedResolvedData := append(append([][]byte{}, resolvedInputsData...), []byte{})
	extendedHost := buildHost(t, extendedTx, extendedResolvedInputs, extendedResolvedData, script, [32]byte{0xDD})

	require.Equal(t, 0, lock.Verify(extendedHost))
}

func TestS4ExtensionModifyingCoveredOutputFails(t *testing.T) {
	priv := testKey(4)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0xEE})

	signAndInstall(t, priv, host, tx, []sighash.CoverageOp{{Label: sighash.Output, Index: 0, Mask: sighash.CellFastPath}})
	require.Equal(t, 0, lock.Verify(host))

	mutatedTx := &txmodel.Transaction{
		Inputs:      tx.Inputs,
		Outputs:     []molecule.CellOutput{{Capacity: tx.Outputs[0].Capacity + 1, Lock: script}},
		OutputsData: tx.OutputsData,
		Witnesses:   tx.Witnesses,
	}
	mutatedHost := buildHost(t, mutatedTx, resolvedInputs, resolvedInputsData, script, [32]byte{0xEE})

	code := lock.Verify(mutatedHost)
	require.Equal(t, int(lockerr.PubkeyBlake160Hash), code)
}

func TestS5BadLabelFails(t *testing.T) {
	priv := testKey(5)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0xFF})

	rawLock := append([]byte{0x70, 0x00, 0x00, 0xF0, 0x00, 0x00}, make([]byte, 65)...)
	tx.Witnesses[0] = molecule.WitnessArgs{Lock: rawLock, HasLock: true}.Serialize()

	code := lock.Verify(host)
	require.Equal(t, int(lockerr.InvalidLabel), code)
}

func TestS6WrongKeyFails(t *testing.T) {
	priv := testKey(6)
	wrongKey := testKey(60)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0x11})

	signAndInstall(t, wrongKey, host, tx, nil)
	code := lock.Verify(host)
	require.Equal(t, int(lockerr.PubkeyBlake160Hash), code)
}

func TestS7ArgsWrongSizeFails(t *testing.T) {
	priv := testKey(7)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	script.Args = append(script.Args, script.Args...) // 40 bytes instead of 20
	tx.Outputs[0].Lock = script
	resolvedInputs[0].Lock = script
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0x22})

	signAndInstall(t, priv, host, tx, nil)
	code := lock.Verify(host)
	require.Equal(t, int(lockerr.ArgumentsLen), code)
}

func TestDeterminism(t *testing.T) {
	priv := testKey(8)
	tx, resolvedInputs, resolvedInputsData, script := minimalTx(priv)
	host := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0x33})
	signAndInstall(t, priv, host, tx, []sighash.CoverageOp{{Label: sighash.SighashAll}})

	host2 := buildHost(t, tx, resolvedInputs, resolvedInputsData, script, [32]byte{0x33})
	require.Equal(t, lock.Verify(host), lock.Verify(host2))
}
