// Package txmodel defines a plain in-memory transaction shape the
// reference host (vm.ReferenceHost) serves its molecule-encoded views
// from. spec.md only names the wire encodings the host exposes (§6); this
// package supplements that with the concrete structure those encodings
// are serialized out of, the way the teacher keeps a plain-struct
// transaction view (ledger/transaction.go) alongside its lazyslice-tree
// view used for on-chain validation.
package txmodel

import "github.com/nervosnetwork/ckb-open-sighash-lock/molecule"

// Transaction is the in-memory shape of a CKB-style transaction this
// module's reference host serves bounded reads over.
type Transaction struct {
	Inputs      []molecule.CellInput
	Outputs     []molecule.CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte // one slot per input, plus any orphan tail entries
}

// InputsLen returns the number of inputs, spec §4.5's N.
func (tx *Transaction) InputsLen() int { return len(tx.Inputs) }
