// Package lockerr defines the typed exit codes the lock script verifier
// returns, per the error table in spec §7. Every fatal condition in
// sighash, witness, verify and lock maps to exactly one Code; host-adapter
// failures that are not already an *Err are reported as Syscall.
package lockerr

import "fmt"

// Code is a lock script exit/error code, negative by convention (0 means
// success and is never wrapped in a Code).
type Code int

const (
	ArgumentsLen        Code = -1  // LockBytes.size <= 65, tail mismatch, or Args.size != 20
	Encoding            Code = -2  // molecule schema verification failure, missing WitnessArgs.lock
	Syscall             Code = -3  // host reported an unexpected length (e.g. tx hash != 32)
	SecpParseSignature  Code = -11 // compact signature failed to parse
	SecpRecoverPubkey   Code = -12 // public key recovery failed
	SecpSerializePubkey Code = -13 // compressed serialization of the recovered key failed
	ScriptTooLong       Code = -21 // script bytes exceed 32 KiB
	WitnessSize         Code = -22 // a witness exceeds 32 KiB
	PubkeyBlake160Hash  Code = -31 // recovered pubkey hash != Args
	InvalidLabel        Code = -50 // unknown CoverageOp label, or truncated op
	InvalidMask         Code = -51 // reserved
)

var names = map[Code]string{
	ArgumentsLen:        "ARGUMENTS_LEN",
	Encoding:            "ENCODING",
	Syscall:             "SYSCALL",
	SecpParseSignature:  "SECP_PARSE_SIGNATURE",
	SecpRecoverPubkey:   "SECP_RECOVER_PUBKEY",
	SecpSerializePubkey: "SECP_SERIALIZE_PUBKEY",
	ScriptTooLong:       "SCRIPT_TOO_LONG",
	WitnessSize:         "WITNESS_SIZE",
	PubkeyBlake160Hash:  "PUBKEY_BLAKE160_HASH",
	InvalidLabel:        "INVALID_LABEL",
	InvalidMask:         "INVALID_MASK",
}

// String renders the code's symbolic name, e.g. "INVALID_LABEL(-50)".
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return fmt.Sprintf("%s(%d)", n, int(c))
	}
	return fmt.Sprintf("CODE(%d)", int(c))
}

// Err is an error carrying a Code plus an optional human-readable detail.
type Err struct {
	Code   Code
	Detail string
}

func (e *Err) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// New builds an *Err for the given code with a formatted detail message.
func New(code Code, format string, args ...interface{}) *Err {
	return &Err{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Err for the given code carrying err's message as detail.
// Host-reported errors that don't map to a table entry should still be
// wrapped with the most specific applicable code by the caller; raw host
// codes with no lock-level meaning are returned as-is by Exit, per spec §7
// ("other host error codes are propagated verbatim").
func Wrap(code Code, err error) *Err {
	if err == nil {
		return &Err{Code: code}
	}
	return &Err{Code: code, Detail: err.Error()}
}

// Exit converts err into the signed integer exit code the host VM expects:
// 0 for nil, the wrapped Code for an *Err, or Encoding (-2) as a generic
// catch-all for any other error type, which should not occur if every
// fallible path in this module returns an *Err.
func Exit(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(*Err); ok {
		return int(e.Code)
	}
	return int(Encoding)
}
