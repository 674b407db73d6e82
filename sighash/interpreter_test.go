package sighash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nervosnetwork/ckb-open-sighash-lock/hasher"
	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sighash"
)

func runCoverage(t *testing.T, ops []sighash.CoverageOp) [32]byte {
	host, _ := buildFixture()
	full := append(append([]sighash.CoverageOp{}, ops...), sighash.CoverageOp{Label: sighash.EndOfList})
	buf := []byte{}
	for _, op := range full {
		buf = append(buf, op.Bytes()...)
	}
	h := hasher.New()
	consumed, err := sighash.Run(h, host, buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), consumed)
	return h.Sum()
}

func TestRunEmptyCoverageIsDeterministic(t *testing.T) {
	d1 := runCoverage(t, nil)
	d2 := runCoverage(t, nil)
	require.Equal(t, d1, d2)
}

func TestRunSighashAllAbsorbsTxHash(t *testing.T) {
	withSighashAll := runCoverage(t, []sighash.CoverageOp{{Label: sighash.SighashAll}})
	withoutSighashAll := runCoverage(t, nil)
	require.NotEqual(t, withSighashAll, withoutSighashAll)
}

func TestRunOrderSensitive(t *testing.T) {
	a := runCoverage(t, []sighash.CoverageOp{
		{Label: sighash.Output, Index: 0, Mask: sighash.CellFastPath},
		{Label: sighash.Output, Index: 1, Mask: sighash.CellFastPath},
	})
	b := runCoverage(t, []sighash.CoverageOp{
		{Label: sighash.Output, Index: 1, Mask: sighash.CellFastPath},
		{Label: sighash.Output, Index: 0, Mask: sighash.CellFastPath},
	})
	require.NotEqual(t, a, b)
}

func TestRunCellMaskBitPositionalMapping(t *testing.T) {
	base := runCoverage(t, []sighash.CoverageOp{{Label: sighash.Output, Index: 0, Mask: 0}})

	capOnly := runCoverage(t, []sighash.CoverageOp{{Label: sighash.Output, Index: 0, Mask: sighash.CellCapacity}})
	require.NotEqual(t, base, capOnly, "toggling CAPACITY on a cell with nonzero capacity must change the digest")

	typeArgsOnly := runCoverage(t, []sighash.CoverageOp{{Label: sighash.Output, Index: 0, Mask: sighash.CellTypeArgs}})
	require.NotEqual(t, base, typeArgsOnly, "output 0 has a non-empty type script args field")

	// Output 1 has no type script at all: toggling a type-script bit must
	// be a no-op on the digest since there is nothing to absorb.
	noType := runCoverage(t, []sighash.CoverageOp{{Label: sighash.Output, Index: 1, Mask: 0}})
	noTypeBitSet := runCoverage(t, []sighash.CoverageOp{{Label: sighash.Output, Index: 1, Mask: sighash.CellTypeCodeHash}})
	require.Equal(t, noType, noTypeBitSet, "toggling a type-script bit on a cell with no type script must not change the digest")
}

func TestRunFastPathDiffersFromSumOfFields(t *testing.T) {
	// The fast path absorbs the whole serialized cell then its data,
	// which is NOT the same as absorbing every sub-field individually:
	// the cell's serialized form carries its own table framing
	// (size header, offsets) that per-field absorption never includes.
	fast := runCoverage(t, []sighash.CoverageOp{{Label: sighash.Output, Index: 0, Mask: sighash.CellFastPath}})

	// 0x7F sets every bit EXCEPT the one that makes 0xFF the fast-path
	// sentinel's high bit would be DATA (0x80); omit it here so this
	// really is "every field bit, individually", not the fast path by
	// another name.
	perField := runCoverage(t, []sighash.CoverageOp{{Label: sighash.Output, Index: 0, Mask: sighash.CellCapacity |
		sighash.CellTypeCodeHash | sighash.CellTypeArgs | sighash.CellTypeHashType |
		sighash.CellLockCodeHash | sighash.CellLockArgs | sighash.CellLockHashType}},
	)
	require.NotEqual(t, fast, perField, "fast path absorbs wire serialization, not the concatenation of sub-fields")
}

func TestRunInputOutpointFastPathEqualsWholeInput(t *testing.T) {
	fast := runCoverage(t, []sighash.CoverageOp{{Label: sighash.InputOutpoint, Index: 0, Mask: sighash.OutpointFastPath}})
	again := runCoverage(t, []sighash.CoverageOp{{Label: sighash.InputOutpoint, Index: 0, Mask: sighash.OutpointFastPath}})
	require.Equal(t, fast, again)

	_, tx := buildFixture()
	whole := hasher.New()
	whole.Absorb(tx.Inputs[0].Serialize())
	require.Equal(t, whole.Sum(), fast)
}

func TestRunInputOutpointIndexBitAbsorbsIndexNotTxHash(t *testing.T) {
	indexOnly := runCoverage(t, []sighash.CoverageOp{{Label: sighash.InputOutpoint, Index: 0, Mask: sighash.OutpointIndex}})
	txHashOnly := runCoverage(t, []sighash.CoverageOp{{Label: sighash.InputOutpoint, Index: 0, Mask: sighash.OutpointTxHash}})
	require.NotEqual(t, indexOnly, txHashOnly, "the index bit and the tx_hash bit must absorb different bytes (spec §9's bug fix)")
}

func TestRunInputCellSinceAbsorbsSince(t *testing.T) {
	withSince := runCoverage(t, []sighash.CoverageOp{{Label: sighash.InputCellSince, Index: 1, Mask: 0}})
	withoutSince := runCoverage(t, []sighash.CoverageOp{{Label: sighash.InputCell, Index: 1, Mask: 0}})
	require.NotEqual(t, withSince, withoutSince, "input 1 has a nonzero since value")
}

func TestRunUnterminatedCoverageFailsInvalidLabel(t *testing.T) {
	host, _ := buildFixture()
	h := hasher.New()
	// A single op with no END_OF_LIST after it.
	buf := sighash.CoverageOp{Label: sighash.SighashAll}.Bytes()
	_, err := sighash.Run(h, host, buf)
	require.Error(t, err)
	var lerr *lockerr.Err
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, lockerr.InvalidLabel, lerr.Code)
}

func TestRunUnknownLabelFailsInvalidLabel(t *testing.T) {
	host, _ := buildFixture()
	h := hasher.New()
	bad := sighash.CoverageOp{Label: 0x7, Index: 0, Mask: 0}.Bytes()
	terminator := sighash.CoverageOp{Label: sighash.EndOfList}.Bytes()
	buf := append(bad, terminator...)
	_, err := sighash.Run(h, host, buf)
	require.Error(t, err)
	var lerr *lockerr.Err
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, lockerr.InvalidLabel, lerr.Code)
}

func TestGroupInputPrefixDeterminesDigest(t *testing.T) {
	host, _ := buildFixture()
	h1 := hasher.New()
	require.NoError(t, sighash.GroupInputPrefix(h1, host))
	d1 := h1.Sum()

	host2, _ := buildFixture()
	h2 := hasher.New()
	require.NoError(t, sighash.GroupInputPrefix(h2, host2))
	d2 := h2.Sum()

	require.Equal(t, d1, d2)
}

func TestOpBytesRoundTrip(t *testing.T) {
	op := sighash.CoverageOp{Label: sighash.InputOutpoint, Index: 0xABC, Mask: 0x42}
	b := op.Bytes()
	require.Len(t, b, 3)
	dec, err := sighash.ParseOp(b)
	require.NoError(t, err)
	require.Equal(t, op, dec)
}
