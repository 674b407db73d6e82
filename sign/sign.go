// Package sign provides signer-side helpers that build a valid LockBytes
// for a chosen sighash-coverage list and secret key — the inverse of
// sighash+witness+verify. It exists only for tests and
// cmd/sighash-lock-sim's "sign" subcommand: spec.md's explicit Non-goal
// is that the script itself only ever *verifies* (§1), so the lock package
// never imports this package (only its external lock_test package does).
//
// Grounded on ledger/constraint/ed25519_lock.go's
// UnlockParamsBySignatureED25519, the teacher's own signer-side test
// helper for its ed25519 lock, generalized here to recoverable secp256k1
// via github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa.SignCompact (the
// same library verify.Recover uses to undo it).
package sign

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/nervosnetwork/ckb-open-sighash-lock/bufutil"
	"github.com/nervosnetwork/ckb-open-sighash-lock/hasher"
	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sighash"
	"github.com/nervosnetwork/ckb-open-sighash-lock/verify"
	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
	"github.com/nervosnetwork/ckb-open-sighash-lock/witness"
)

// compressedPubkeyHeaderOffset mirrors verify.Recover's convention: the
// decred/btcsuite compact-signature header byte is 27+recid, +4 to mark
// the recovered key as compressed.
const compressedPubkeyHeaderOffset = 27 + 4

// Args returns the 20-byte script argument for priv: the BLAKE2b-160 of
// its compressed public key, the value embedded in the lock script that
// spends priv's cells.
func Args(priv *secp256k1.PrivateKey) [20]byte {
	return verify.Blake160(priv.PubKey().SerializeCompressed())
}

// CoverageBytes re-encodes ops terminated by sighash.EndOfList into its
// canonical wire form — the SighashCoverage prefix of LockBytes, spec §3.
func CoverageBytes(ops []sighash.CoverageOp) []byte {
	full := append(append([]sighash.CoverageOp{}, ops...), sighash.CoverageOp{Label: sighash.EndOfList})
	buf := make([]byte, 0, len(full)*3)
	for _, op := range full {
		buf = append(buf, op.Bytes()...)
	}
	return buf
}

// SignCompact produces spec §3's r(32) ‖ s(32) ‖ recid(1) recoverable
// signature over message, undoing the header-byte convention
// ecdsa.SignCompact uses internally.
func SignCompact(priv *secp256k1.PrivateKey, message [32]byte) [witness.SignatureSize]byte {
	raw := ecdsa.SignCompact(priv, message[:], true)
	var out [witness.SignatureSize]byte
	copy(out[0:32], raw[1:33])
	copy(out[32:64], raw[33:65])
	out[64] = raw[0] - compressedPubkeyHeaderOffset
	return out
}

// LockBytes computes the verifier's digest for coverageOps against host
// (the same way lock.VerifyErr would, minus the final signature check)
// and returns the complete witness lock payload: the coverage array
// followed by priv's signature over that digest, spec §3's LockBytes
// shape.
func LockBytes(priv *secp256k1.PrivateKey, host vm.HostVM, coverageOps []sighash.CoverageOp) ([]byte, error) {
	coverage := CoverageBytes(coverageOps)

	h := hasher.New()
	if err := sighash.GroupInputPrefix(h, host); err != nil {
		return nil, err
	}
	if _, err := sighash.Run(h, host, coverage); err != nil {
		return nil, err
	}

	placeholderWitness, err := firstWitnessWithLock(host, append(append([]byte{}, coverage...), make([]byte, witness.SignatureSize)...))
	if err != nil {
		return nil, err
	}
	message, err := witness.Finalize(h, host, placeholderWitness, len(coverage))
	if err != nil {
		return nil, err
	}

	sig := SignCompact(priv, message)
	return bufutil.Concat(coverage, sig[:]), nil
}

// firstWitnessWithLock re-serializes the current group's first witness
// (as loaded from host) with its lock field replaced by lockBytes, so
// LockBytes can compute the same witness.Finalize digest the verifier
// will later recompute from the signed transaction.
func firstWitnessWithLock(host vm.HostVM, lockBytes []byte) ([]byte, error) {
	raw, err := host.LoadWitness(0, vm.SourceGroupInput)
	if err != nil {
		return nil, err
	}
	wa, err := molecule.ParseWitnessArgs(raw)
	if err != nil {
		return nil, err
	}
	wa.Lock = lockBytes
	wa.HasLock = true
	return wa.Serialize(), nil
}
