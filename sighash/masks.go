package sighash

import "github.com/nervosnetwork/ckb-open-sighash-lock/hasher"

// Cell-mask bits, spec §3, valid for OUTPUT / INPUT_CELL / INPUT_CELL_SINCE.
const (
	CellCapacity     byte = 0x01
	CellTypeCodeHash byte = 0x02
	CellTypeArgs     byte = 0x04
	CellTypeHashType byte = 0x08
	CellLockCodeHash byte = 0x10
	CellLockArgs     byte = 0x20
	CellLockHashType byte = 0x40
	CellData         byte = 0x80

	// CellFastPath absorbs the whole cell and its data verbatim, bypassing
	// every other bit (spec §3's fast path).
	CellFastPath byte = 0xFF
)

// Outpoint-mask bits, spec §3, valid for INPUT_OUTPOINT.
const (
	OutpointTxHash byte = 0x01
	OutpointIndex  byte = 0x02
	OutpointSince  byte = 0x04

	OutpointFastPath byte = 0xFF
)

// absorbScript absorbs the sub-fields of a script selected by mask, in
// ascending bit order (code_hash, then args, then hash_type) — spec §3's
// "declaration order" for a script's mask-selected sub-fields. One helper
// serves both TYPE and LOCK; the caller supplies which three bits mean
// what for its script (spec §9's design note against per-field-kind
// duplication of this logic).
//
// script == nil (an absent type script) absorbs nothing regardless of
// mask, matching invariant that toggling a bit for an empty field never
// changes the digest.
func absorbScript(h *hasher.Session, script *scriptView, mask, codeHashBit, argsBit, hashTypeBit byte) {
	if script == nil {
		return
	}
	if mask&codeHashBit != 0 {
		h.Absorb(script.CodeHash)
	}
	if mask&argsBit != 0 {
		h.Absorb(script.Args)
	}
	if mask&hashTypeBit != 0 {
		h.Absorb(script.HashType)
	}
}

// scriptView is the minimal view absorbScript needs, kept free of a
// molecule import so this file only depends on hasher.
type scriptView struct {
	CodeHash []byte
	Args     []byte
	HashType []byte
}
