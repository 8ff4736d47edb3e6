package frame

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	inner := []byte("inner blob")
	tail := []byte(`{"headers":{}}`)

	buf := Encode(inner, tail)
	require.Len(t, buf, 4+len(inner)+len(tail))
	assert.Equal(t, uint32(len(inner)), binary.LittleEndian.Uint32(buf))

	gotInner, gotTail, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, inner, gotInner)
	assert.Equal(t, tail, gotTail)
}

func TestEncode_EmptyInner(t *testing.T) {
	buf := Encode(nil, []byte("tail"))
	gotInner, gotTail, err := Decode(buf)
	require.NoError(t, err)
	assert.Empty(t, gotInner)
	assert.Equal(t, []byte("tail"), gotTail)
}

func TestEncode_EmptyTail(t *testing.T) {
	buf := Encode([]byte{1, 2, 3}, nil)
	gotInner, gotTail, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, gotInner)
	assert.Empty(t, gotTail)
}

func TestDecode_ShorterThanPrefix(t *testing.T) {
	_, _, err := Decode([]byte{1, 2})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_Truncated(t *testing.T) {
	buf := make([]byte, 4+5)
	binary.LittleEndian.PutUint32(buf, 10) // declares more than present
	_, _, err := Decode(buf)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_OverCap(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf, MaxInnerSize+1)
	_, _, err := Decode(buf)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDecode_LargeInner(t *testing.T) {
	// the cap bounds the declared size, not the format
	inner := make([]byte, 1<<20)
	buf := Encode(inner, []byte("{}"))
	gotInner, gotTail, err := Decode(buf)
	require.NoError(t, err)
	assert.Len(t, gotInner, 1<<20)
	assert.Equal(t, []byte("{}"), gotTail)
}
