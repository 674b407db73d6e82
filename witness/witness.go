// Package witness implements the witness finalization step, spec §4.5:
// after the sighash-coverage array is consumed, the verifier carves the
// signature out of the current group's first witness, zeroes it in
// place, and absorbs every remaining witness the signer's own group owns
// plus the transaction-global "orphan" tail beyond the input count —
// each one length-prefixed — before the digest is finalized.
//
// Grounded on ledger/library/sources.go's essence definition (the
// teacher's own idea of concatenating named transaction regions into the
// thing that gets signed) and ledger/constraint/ed25519_lock.go's pattern
// of carving the signature field out of the unlock payload before
// validating the rest.
package witness

import (
	"github.com/nervosnetwork/ckb-open-sighash-lock/bufutil"
	"github.com/nervosnetwork/ckb-open-sighash-lock/hasher"
	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
)

// SignatureSize is the fixed width of the recoverable-ECDSA signature
// spec §3 carves out of LockBytes's tail.
const SignatureSize = 65

// zeroedFirstWitness returns a copy of the first group witness's bytes with
// the SignatureSize bytes at the tail of its WitnessArgs.Lock field
// (starting at sigOffset, the coverage array's length) overwritten with
// zeros, per spec §4.5 step 1. Every other byte is kept exactly as the
// host handed it over; the witness is not re-encoded.
func zeroedFirstWitness(firstWitness []byte, sigOffset int) ([]byte, error) {
	wa, err := molecule.ParseWitnessArgs(firstWitness)
	if err != nil {
		return nil, lockerr.Wrap(lockerr.Encoding, err)
	}
	if !wa.HasLock {
		return nil, lockerr.New(lockerr.Encoding, "first group witness has no lock field")
	}
	if sigOffset < 0 || sigOffset+SignatureSize > len(wa.Lock) {
		return nil, lockerr.New(lockerr.ArgumentsLen, "signature offset %d out of range for lock bytes of length %d", sigOffset, len(wa.Lock))
	}
	// ParseWitnessArgs has validated the table, so its first offset (bytes
	// 4..8) locates the Lock field, whose content follows its own 4-byte
	// Bytes size header.
	lockStart := int(bufutil.Uint32LE(firstWitness[4:8])) + 4
	zeroed := make([]byte, len(firstWitness))
	copy(zeroed, firstWitness)
	for i := 0; i < SignatureSize; i++ {
		zeroed[lockStart+sigOffset+i] = 0
	}
	return zeroed, nil
}

func absorbLengthPrefixed(h *hasher.Session, data []byte) {
	var lenBuf [8]byte
	bufutil.PutUint64LE(lenBuf[:], uint64(len(data)))
	h.Absorb(lenBuf[:])
	h.Absorb(data)
}

// Finalize absorbs the witness-side tail of the digest and returns the
// finished 32-byte message, per spec §4.5:
//
//  1. the current group's first witness, with its signature field
//     zeroed, length-prefixed;
//  2. every remaining witness in the script group, length-prefixed;
//  3. every transaction-global witness at index >= total input count
//     ("orphan" witnesses bound to no input), length-prefixed;
//  4. Sum() the session.
//
// sigOffset is the byte offset of the signature field within the first
// witness's lock bytes, as returned by sighash.Run (the number of
// coverage-array bytes consumed).
func Finalize(h *hasher.Session, host vm.HostVM, firstWitness []byte, sigOffset int) ([32]byte, error) {
	zeroed, err := zeroedFirstWitness(firstWitness, sigOffset)
	if err != nil {
		return [32]byte{}, err
	}
	absorbLengthPrefixed(h, zeroed)

	for i := uint32(1); ; i++ {
		w, err := host.LoadWitness(i, vm.SourceGroupInput)
		if err == vm.ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return [32]byte{}, wrapHost(err)
		}
		absorbLengthPrefixed(h, w)
	}

	inputsLen, err := host.CalculateInputsLen()
	if err != nil {
		return [32]byte{}, wrapHost(err)
	}
	for i := inputsLen; ; i++ {
		w, err := host.LoadWitnessAt(int(i))
		if err == vm.ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return [32]byte{}, wrapHost(err)
		}
		absorbLengthPrefixed(h, w)
	}

	return h.Sum(), nil
}

func wrapHost(err error) error {
	if le, ok := err.(*lockerr.Err); ok {
		return le
	}
	return lockerr.Wrap(lockerr.Syscall, err)
}
