package sign_test

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/nervosnetwork/ckb-open-sighash-lock/sighash"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sign"
	"github.com/nervosnetwork/ckb-open-sighash-lock/verify"
)

func testKey(seed byte) *secp256k1.PrivateKey {
	b := make([]byte, 32)
	for i := range b {
		b[i] = seed
	}
	b[31] = seed + 1
	return secp256k1.PrivKeyFromBytes(b)
}

func TestArgsMatchesBlake160OfCompressedPubkey(t *testing.T) {
	priv := testKey(1)
	got := sign.Args(priv)
	want := verify.Blake160(priv.PubKey().SerializeCompressed())
	require.Equal(t, want, got)
}

func TestCoverageBytesAppendsTerminator(t *testing.T) {
	ops := []sighash.CoverageOp{{Label: sighash.SighashAll}}
	b := sign.CoverageBytes(ops)
	require.Len(t, b, 6)
	last, err := sighash.ParseOp(b[3:6])
	require.NoError(t, err)
	require.Equal(t, sighash.EndOfList, last.Label)
}

func TestSignCompactRoundTripsThroughRecover(t *testing.T) {
	priv := testKey(2)
	var message [32]byte
	for i := range message {
		message[i] = byte(i * 3)
	}
	sig := sign.SignCompact(priv, message)
	require.True(t, sig[64] <= 3)

	pub, err := verify.Recover(message, sig)
	require.NoError(t, err)
	require.Equal(t, priv.PubKey().SerializeCompressed(), pub[:])
}
