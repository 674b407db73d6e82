package txmodel

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Hash computes a deterministic transaction hash over the inputs, outputs
// and outputs-data — witnesses are excluded, matching the real chain's
// rule that the transaction hash commits to everything except witnesses
// (which are exactly what this lock script's signature separately
// commits to, per spec §4.5). This is test/tooling scaffolding: the real
// transaction hash is computed by the host VM and simply reported via
// HostVM.LoadTxHash (spec §1 treats that computation as an external
// collaborator).
func (tx *Transaction) Hash() [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	var lenBuf [8]byte
	writeLen := func(n int) {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(n))
		h.Write(lenBuf[:])
	}
	writeLen(len(tx.Inputs))
	for _, in := range tx.Inputs {
		h.Write(in.Serialize())
	}
	writeLen(len(tx.Outputs))
	for _, out := range tx.Outputs {
		h.Write(out.Serialize())
	}
	writeLen(len(tx.OutputsData))
	for _, d := range tx.OutputsData {
		writeLen(len(d))
		h.Write(d)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
