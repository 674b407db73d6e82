package molecule

import "fmt"

// HashType enumerates a Script's hash_type byte, per the molecule schema
// `byte` field (spec treats it as an opaque field to absorb, never
// interpreted by this lock script beyond its raw byte).
type HashType byte

const (
	HashTypeData  HashType = 0
	HashTypeType  HashType = 1
	HashTypeData1 HashType = 2
	HashTypeData2 HashType = 4
)

// Script mirrors the molecule Script table: {code_hash: Byte32, hash_type:
// byte, args: Bytes}.
type Script struct {
	CodeHash [32]byte
	HashType HashType
	Args     []byte
}

// ParseScript validates and decodes a serialized molecule Script.
func ParseScript(data []byte) (Script, error) {
	fields, err := parseTable(data, 3)
	if err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	codeHash, hashType, argsField := fields[0], fields[1], fields[2]
	if len(codeHash) != 32 {
		return Script{}, fmt.Errorf("%w: script code_hash is %d bytes, want 32", ErrEncoding, len(codeHash))
	}
	if len(hashType) != 1 {
		return Script{}, fmt.Errorf("%w: script hash_type is %d bytes, want 1", ErrEncoding, len(hashType))
	}
	args, err := ParseBytes(argsField)
	if err != nil {
		return Script{}, fmt.Errorf("parse script args: %w", err)
	}
	var s Script
	copy(s.CodeHash[:], codeHash)
	s.HashType = HashType(hashType[0])
	s.Args = args
	return s, nil
}

// Serialize re-encodes the Script into its canonical molecule wire form,
// used by the coverage interpreter's fast path (mask == 0xFF), which
// absorbs the full serialized cell rather than hand-picked sub-fields.
func (s Script) Serialize() []byte {
	return serializeTable([][]byte{
		s.CodeHash[:],
		{byte(s.HashType)},
		SerializeBytes(s.Args),
	})
}
