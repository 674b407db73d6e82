// Package lock wires §4.1-§4.6 together into the single linear
// verification pass spec §2 describes: load the script's own witness
// lock bytes, hash the mandatory group-input prefix, interpret the
// caller-selected sighash coverage, finalize the witness tail, and check
// the recovered signature against the script's embedded argument.
//
// Grounded on ledger/state/validate.go's ValidationContext.Validate(): a
// top-level orchestrator that runs its sub-checks in a fixed sequence and
// translates every internal failure into one outcome.
package lock

import (
	"github.com/nervosnetwork/ckb-open-sighash-lock/bufutil"
	"github.com/nervosnetwork/ckb-open-sighash-lock/hasher"
	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/sighash"
	"github.com/nervosnetwork/ckb-open-sighash-lock/verify"
	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
	"github.com/nervosnetwork/ckb-open-sighash-lock/witness"
)

// minLockBytesSize is the ARGUMENTS_LEN floor of spec §7: a LockBytes of
// at most 65 bytes cannot hold a signature plus any coverage op. Sizes of
// 66 and 67 pass this check and are rejected later by the size equation
// (a terminator-only coverage array plus a signature is 68 bytes).
const minLockBytesSize = 65

// VerifyErr runs the full verification pipeline against host and returns
// nil on success or a *lockerr.Err identifying the first failure, per
// spec §2's linear, no-partial-results control flow. It recovers any
// internal panic (a slice-bounds violation deep in a parser, say) into an
// ENCODING error, mirroring the teacher's
// easyutxo.CatchPanicOrError boundary-recovery habit, so a bug in this
// module surfaces as a typed exit code rather than crashing the host
// process.
func VerifyErr(host vm.HostVM) (err error) {
	err = bufutil.CatchPanicOrError(func() error {
		return run(host)
	})
	if err != nil {
		if _, ok := err.(*lockerr.Err); !ok {
			err = lockerr.Wrap(lockerr.Encoding, err)
		}
	}
	return err
}

// Verify is the host-process-facing entry point, spec §6: "one
// parameterless procedure returning a signed integer". It is a thin
// int-from-error adapter; VerifyErr is where the actual pipeline lives.
func Verify(host vm.HostVM) int {
	return lockerr.Exit(VerifyErr(host))
}

func run(host vm.HostVM) error {
	scriptBytes, err := host.LoadScript()
	if err != nil {
		return wrapHost(err)
	}
	script, err := molecule.ParseScript(scriptBytes)
	if err != nil {
		return lockerr.Wrap(lockerr.Encoding, err)
	}

	firstWitness, err := host.LoadWitness(0, vm.SourceGroupInput)
	if err != nil {
		return wrapHost(err)
	}
	wa, err := molecule.ParseWitnessArgs(firstWitness)
	if err != nil {
		return lockerr.Wrap(lockerr.Encoding, err)
	}
	if !wa.HasLock {
		return lockerr.New(lockerr.Encoding, "first group witness has no lock field")
	}
	lockBytes := wa.Lock
	if len(lockBytes) <= minLockBytesSize {
		return lockerr.New(lockerr.ArgumentsLen, "lock bytes is %d bytes, need more than %d", len(lockBytes), minLockBytesSize)
	}

	h := hasher.New()

	if err := sighash.GroupInputPrefix(h, host); err != nil {
		return err
	}

	coverageLen, err := sighash.Run(h, host, lockBytes)
	if err != nil {
		return err
	}

	if coverageLen+witness.SignatureSize != len(lockBytes) {
		return lockerr.New(lockerr.ArgumentsLen, "lock bytes size %d != 3*ops(%d)+%d", len(lockBytes), coverageLen/3, witness.SignatureSize)
	}
	var sig [witness.SignatureSize]byte
	copy(sig[:], lockBytes[coverageLen:])

	message, err := witness.Finalize(h, host, firstWitness, coverageLen)
	if err != nil {
		return err
	}

	pubkey, err := verify.Recover(message, sig)
	if err != nil {
		return err
	}

	return verify.CheckArgs(script.Args, pubkey)
}

func wrapHost(err error) error {
	if le, ok := err.(*lockerr.Err); ok {
		return le
	}
	return lockerr.Wrap(lockerr.Syscall, err)
}
