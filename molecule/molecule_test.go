package molecule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesRoundTrip(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, []byte("hello"), make([]byte, 300)} {
		enc := SerializeBytes(raw)
		dec, err := ParseBytes(enc)
		require.NoError(t, err)
		require.Equal(t, len(raw), len(dec))
		require.Equal(t, raw, dec)
	}
}

func TestBytesOptRoundTrip(t *testing.T) {
	enc := SerializeBytesOpt([]byte("sig"), true)
	dec, present, err := ParseBytesOpt(enc)
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("sig"), dec)

	dec, present, err = ParseBytesOpt(SerializeBytesOpt(nil, false))
	require.NoError(t, err)
	require.False(t, present)
	require.Nil(t, dec)
}

func TestBytesRejectsBadSize(t *testing.T) {
	_, err := ParseBytes([]byte{1, 0, 0, 0, 1, 2, 3})
	require.ErrorIs(t, err, ErrEncoding)
}

func TestScriptRoundTrip(t *testing.T) {
	s := Script{HashType: HashTypeType, Args: []byte{0xde, 0xad, 0xbe, 0xef}}
	for i := range s.CodeHash {
		s.CodeHash[i] = byte(i)
	}
	enc := s.Serialize()
	dec, err := ParseScript(enc)
	require.NoError(t, err)
	require.Equal(t, s, dec)
}

func TestScriptRejectsTruncatedCodeHash(t *testing.T) {
	s := Script{Args: []byte("x")}
	enc := s.Serialize()
	_, err := ParseScript(enc[:len(enc)-40])
	require.ErrorIs(t, err, ErrEncoding)
}

func TestOutPointRoundTrip(t *testing.T) {
	op := OutPoint{Index: 7}
	for i := range op.TxHash {
		op.TxHash[i] = byte(31 - i)
	}
	enc := op.Serialize()
	dec, err := ParseOutPoint(enc)
	require.NoError(t, err)
	require.Equal(t, op, dec)
	require.Equal(t, []byte{7, 0, 0, 0}, op.IndexLE())
}

func TestWitnessArgsRoundTrip(t *testing.T) {
	wa := WitnessArgs{Lock: []byte("lockbytes"), HasLock: true}
	enc := wa.Serialize()
	dec, err := ParseWitnessArgs(enc)
	require.NoError(t, err)
	require.True(t, dec.HasLock)
	require.Equal(t, wa.Lock, dec.Lock)
	require.False(t, dec.HasInputType)
	require.False(t, dec.HasOutputType)
}
