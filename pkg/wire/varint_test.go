package wire

import (
	"bytes"
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarIntFixtures(t *testing.T) {
	tests := []struct {
		value   int32
		encoded []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{math.MaxInt32, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{math.MinInt32, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tt := range tests {
		got := AppendVarInt(nil, tt.value)
		if !bytes.Equal(got, tt.encoded) {
			t.Errorf("AppendVarInt(%d) = %x, want %x", tt.value, got, tt.encoded)
		}
		if n := VarIntSize(tt.value); n != len(tt.encoded) {
			t.Errorf("VarIntSize(%d) = %d, want %d", tt.value, n, len(tt.encoded))
		}
		v, n, err := DecodeVarInt(tt.encoded)
		require.NoError(t, err)
		if v != tt.value || n != len(tt.encoded) {
			t.Errorf("DecodeVarInt(%x) = (%d, %d), want (%d, %d)", tt.encoded, v, n, tt.value, len(tt.encoded))
		}
	}
}

func TestVarLongFixtures(t *testing.T) {
	tests := []struct {
		value   int64
		encoded []byte
	}{
		{0, []byte{0x00}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
		{math.MinInt64, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		got := AppendVarLong(nil, tt.value)
		if !bytes.Equal(got, tt.encoded) {
			t.Errorf("AppendVarLong(%d) = %x, want %x", tt.value, got, tt.encoded)
		}
		v, n, err := DecodeVarLong(tt.encoded)
		require.NoError(t, err)
		if v != tt.value || n != len(tt.encoded) {
			t.Errorf("DecodeVarLong(%x) = (%d, %d), want (%d, %d)", tt.encoded, v, n, tt.value, len(tt.encoded))
		}
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	roundTrip := func(v int32) bool {
		got, n, err := DecodeVarInt(AppendVarInt(nil, v))
		return err == nil && got == v && n == VarIntSize(v)
	}
	require.NoError(t, quick.Check(roundTrip, &quick.Config{MaxCount: 10000}))
}

func TestVarLongRoundTrip(t *testing.T) {
	roundTrip := func(v int64) bool {
		got, n, err := DecodeVarLong(AppendVarLong(nil, v))
		return err == nil && got == v && n == VarLongSize(v)
	}
	require.NoError(t, quick.Check(roundTrip, &quick.Config{MaxCount: 10000}))
}

func TestDecodeVarIntTooLong(t *testing.T) {
	_, _, err := DecodeVarInt(bytes.Repeat([]byte{0xFF}, 5))
	assert.ErrorIs(t, err, ErrMalformedVarInt)

	// the limit is hit before the missing terminator, so more input never helps
	_, _, err = DecodeVarInt(bytes.Repeat([]byte{0xFF}, 6))
	assert.ErrorIs(t, err, ErrMalformedVarInt)
}

func TestDecodeVarLongTooLong(t *testing.T) {
	_, _, err := DecodeVarLong(bytes.Repeat([]byte{0xFF}, 10))
	assert.ErrorIs(t, err, ErrMalformedVarLong)
}

func TestDecodeVarIntIncomplete(t *testing.T) {
	for _, buf := range [][]byte{nil, {0x80}, {0xFF, 0xFF}, {0xFF, 0xFF, 0xFF, 0xFF}} {
		_, _, err := DecodeVarInt(buf)
		if !assert.ErrorIs(t, err, ErrUnexpectedEOF) {
			t.Logf("input %x", buf)
		}
	}
}
