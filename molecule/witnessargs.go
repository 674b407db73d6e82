package molecule

import "fmt"

// WitnessArgs mirrors the molecule table WitnessArgs {lock: BytesOpt,
// input_type: BytesOpt, output_type: BytesOpt}. This lock script only ever
// reads Lock; InputType/OutputType are carried for completeness since the
// host's witness wire format always includes them.
type WitnessArgs struct {
	Lock          []byte
	HasLock       bool
	InputType     []byte
	HasInputType  bool
	OutputType    []byte
	HasOutputType bool
}

// ParseWitnessArgs validates and decodes a serialized molecule WitnessArgs.
// A missing Lock field is not a parse failure by itself — callers that
// require a signature must check HasLock and fail ENCODING themselves,
// per spec §7 ("missing lock in WitnessArgs").
func ParseWitnessArgs(data []byte) (WitnessArgs, error) {
	fields, err := parseTable(data, 3)
	if err != nil {
		return WitnessArgs{}, fmt.Errorf("parse witness args: %w", err)
	}
	var wa WitnessArgs
	wa.Lock, wa.HasLock, err = ParseBytesOpt(fields[0])
	if err != nil {
		return WitnessArgs{}, fmt.Errorf("parse witness args lock: %w", err)
	}
	wa.InputType, wa.HasInputType, err = ParseBytesOpt(fields[1])
	if err != nil {
		return WitnessArgs{}, fmt.Errorf("parse witness args input_type: %w", err)
	}
	wa.OutputType, wa.HasOutputType, err = ParseBytesOpt(fields[2])
	if err != nil {
		return WitnessArgs{}, fmt.Errorf("parse witness args output_type: %w", err)
	}
	return wa, nil
}

// Serialize re-encodes the WitnessArgs into its canonical molecule wire
// form, used by sign.LockBytes and by tests to build fixtures.
func (wa WitnessArgs) Serialize() []byte {
	return serializeTable([][]byte{
		SerializeBytesOpt(wa.Lock, wa.HasLock),
		SerializeBytesOpt(wa.InputType, wa.HasInputType),
		SerializeBytesOpt(wa.OutputType, wa.HasOutputType),
	})
}
