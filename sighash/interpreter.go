package sighash

import (
	"github.com/nervosnetwork/ckb-open-sighash-lock/hasher"
	"github.com/nervosnetwork/ckb-open-sighash-lock/lockerr"
	"github.com/nervosnetwork/ckb-open-sighash-lock/molecule"
	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
)

// wrapHost normalizes a host-adapter error into a *lockerr.Err, keeping
// an existing typed code (e.g. ScriptTooLong, WitnessSize) as-is and
// otherwise mapping it to Syscall, spec §7's catch-all for host failures.
func wrapHost(err error) error {
	if err == nil {
		return nil
	}
	if le, ok := err.(*lockerr.Err); ok {
		return le
	}
	return lockerr.Wrap(lockerr.Syscall, err)
}

// GroupInputPrefix absorbs the mandatory anti-replay prefix, spec §4.4:
// every cell input belonging to the executing script's group, each one's
// full serialized CellInput (since, then previous output) absorbed
// verbatim, in group order, independent of
// anything the signer's coverage array chooses. This runs unconditionally
// before the coverage array is interpreted.
func GroupInputPrefix(h *hasher.Session, host vm.HostVM) error {
	for i := uint32(0); ; i++ {
		loader := host.InputLoader(i, vm.SourceGroupInput)
		err := h.AbsorbObject(loader, vm.BufSingleInput)
		if err == vm.ErrIndexOutOfBound {
			return nil
		}
		if err != nil {
			return wrapHost(err)
		}
	}
}

// Run interprets the sighash-coverage array starting at the front of
// lockBytes, absorbing each named component into h, until it reads an
// END_OF_LIST op or runs out of room. It returns the number of bytes of
// lockBytes consumed by the coverage array (spec §4.6's size equation
// needs this to locate the signature that follows).
//
// Per spec §9's Open Question #1 resolution, INPUT_OUTPOINT's index bit
// absorbs the serialized 4-byte little-endian outpoint index, not a
// second read of tx_hash.
func Run(h *hasher.Session, host vm.HostVM, lockBytes []byte) (consumed int, err error) {
	i := 0
	for {
		if i+opSize > len(lockBytes) {
			return 0, lockerr.New(lockerr.InvalidLabel, "coverage array ran past end of lock bytes without END_OF_LIST")
		}
		op, perr := ParseOp(lockBytes[i : i+opSize])
		if perr != nil {
			return 0, perr
		}
		i += opSize

		switch op.Label {
		case EndOfList:
			return i, nil

		case SighashAll:
			txHash, herr := host.LoadTxHash()
			if herr != nil {
				return 0, wrapHost(herr)
			}
			h.Absorb(txHash[:])

		case Output, InputCell, InputCellSince:
			source := vm.SourceOutput
			if op.Label != Output {
				source = vm.SourceInput
			}
			if err := absorbCell(h, host, op, source); err != nil {
				return 0, err
			}
			if op.Label == InputCellSince {
				since, herr := host.LoadInputByField(uint32(op.Index), vm.SourceInput, vm.InputFieldSince)
				if herr != nil {
					return 0, wrapHost(herr)
				}
				h.Absorb(since)
			}

		case InputOutpoint:
			if err := absorbOutpoint(h, host, op); err != nil {
				return 0, err
			}

		default:
			return 0, lockerr.New(lockerr.InvalidLabel, "unknown coverage op label 0x%x", byte(op.Label))
		}
	}
}

func absorbCell(h *hasher.Session, host vm.HostVM, op CoverageOp, source vm.Source) error {
	index := uint32(op.Index)

	if op.Mask == CellFastPath {
		if err := h.AbsorbObject(host.CellLoader(index, source), vm.BufStreamWindow); err != nil {
			return wrapHost(err)
		}
		if err := h.AbsorbObject(host.CellDataLoader(index, source), vm.BufStreamWindow); err != nil {
			return wrapHost(err)
		}
		return nil
	}

	if op.Mask&CellCapacity != 0 {
		cap, err := host.LoadCellByField(index, source, vm.CellFieldCapacity)
		if err != nil {
			return wrapHost(err)
		}
		h.Absorb(cap)
	}

	if op.Mask&(CellTypeCodeHash|CellTypeArgs|CellTypeHashType) != 0 {
		raw, err := host.LoadCellByField(index, source, vm.CellFieldType)
		if err != nil {
			return wrapHost(err)
		}
		if len(raw) > 0 {
			script, perr := molecule.ParseScript(raw)
			if perr != nil {
				return lockerr.Wrap(lockerr.Encoding, perr)
			}
			hashType := byte(script.HashType)
			absorbScript(h, &scriptView{CodeHash: script.CodeHash[:], Args: script.Args, HashType: []byte{hashType}},
				op.Mask, CellTypeCodeHash, CellTypeArgs, CellTypeHashType)
		}
	}

	if op.Mask&(CellLockCodeHash|CellLockArgs|CellLockHashType) != 0 {
		raw, err := host.LoadCellByField(index, source, vm.CellFieldLock)
		if err != nil {
			return wrapHost(err)
		}
		script, perr := molecule.ParseScript(raw)
		if perr != nil {
			return lockerr.Wrap(lockerr.Encoding, perr)
		}
		hashType := byte(script.HashType)
		absorbScript(h, &scriptView{CodeHash: script.CodeHash[:], Args: script.Args, HashType: []byte{hashType}},
			op.Mask, CellLockCodeHash, CellLockArgs, CellLockHashType)
	}

	if op.Mask&CellData != 0 {
		if err := h.AbsorbObject(host.CellDataLoader(index, source), vm.BufStreamWindow); err != nil {
			return wrapHost(err)
		}
	}

	return nil
}

func absorbOutpoint(h *hasher.Session, host vm.HostVM, op CoverageOp) error {
	index := uint32(op.Index)

	if op.Mask == OutpointFastPath {
		if err := h.AbsorbObject(host.InputLoader(index, vm.SourceInput), vm.BufSingleInput); err != nil {
			return wrapHost(err)
		}
		return nil
	}

	if op.Mask&OutpointSince != 0 {
		since, err := host.LoadInputByField(index, vm.SourceInput, vm.InputFieldSince)
		if err != nil {
			return wrapHost(err)
		}
		h.Absorb(since)
	}

	if op.Mask&(OutpointTxHash|OutpointIndex) != 0 {
		raw, err := host.LoadInputByField(index, vm.SourceInput, vm.InputFieldOutPoint)
		if err != nil {
			return wrapHost(err)
		}
		outpoint, perr := molecule.ParseOutPoint(raw)
		if perr != nil {
			return lockerr.Wrap(lockerr.Encoding, perr)
		}
		if op.Mask&OutpointTxHash != 0 {
			h.Absorb(outpoint.TxHash[:])
		}
		if op.Mask&OutpointIndex != 0 {
			h.Absorb(outpoint.IndexLE())
		}
	}

	return nil
}
