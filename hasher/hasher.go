// Package hasher implements the streaming BLAKE2b-256 absorption session
// spec §4.2 describes: an incremental digest plus a windowed object loader
// that hashes arbitrarily large host objects without requiring their full
// bytes ever be resident at once, exactly the algorithm spec §4.2 pins
// down step by step.
//
// Grounded on the teacher's one-shot blake2b.Sum256 usage
// (ledger/state/validate.go) generalized to an incremental hash.Hash
// session, and on lazyslice.Array's buffered-accumulation discipline for
// the windowed-read loop.
package hasher

import (
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/nervosnetwork/ckb-open-sighash-lock/vm"
)

// Session is a single BLAKE2b-256 absorption session. It is initialized
// once and finalized exactly once, per spec §3's digest-state invariant.
type Session struct {
	h        hash.Hash
	finished bool
}

// New starts a fresh digest session.
func New() *Session {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an oversized key, which nil never is.
		panic(err)
	}
	return &Session{h: h}
}

// Absorb appends data to the session.
func (s *Session) Absorb(data []byte) {
	if s.finished {
		panic("hasher: Absorb after Sum")
	}
	s.h.Write(data)
}

// AbsorbObject reads loader in fixed-size windows and absorbs each window,
// per spec §4.2: the first window sizes to min(reported_length, window),
// and subsequent windows re-issue a positioned read at the new offset
// until the object's full reported length has been consumed.
func (s *Session) AbsorbObject(loader vm.ObjectLoader, window int) error {
	buf := make([]byte, window)
	n, total, err := loader.LoadAt(buf, 0)
	if err != nil {
		return err
	}
	absorbed := n
	if uint64(absorbed) > total {
		absorbed = int(total)
	}
	s.Absorb(buf[:absorbed])
	offset := uint64(absorbed)

	for offset < total {
		n, total2, err := loader.LoadAt(buf, offset)
		if err != nil {
			return err
		}
		if total2 != total {
			return fmt.Errorf("hasher: object length changed mid-read (%d -> %d)", total, total2)
		}
		step := n
		if uint64(step) > total-offset {
			step = int(total - offset)
		}
		if step <= 0 {
			return fmt.Errorf("hasher: loader made no progress at offset %d", offset)
		}
		s.Absorb(buf[:step])
		offset += uint64(step)
	}
	return nil
}

// Sum finalizes the session and returns the 32-byte digest. It is an
// error to call Absorb or AbsorbObject afterward.
func (s *Session) Sum() [32]byte {
	s.finished = true
	var out [32]byte
	copy(out[:], s.h.Sum(nil))
	return out
}
