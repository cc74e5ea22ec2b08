package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "hex string", raw: "0x68656c6c6f", want: "hello"},
		{name: "empty hex", raw: "0x", want: ""},
		{name: "float byte sequence", raw: []any{float64(104), float64(105)}, want: "hi"},
		{name: "json number byte sequence", raw: []any{json.Number("104"), json.Number("105")}, want: "hi"},
		{name: "raw bytes", raw: []byte("abc"), want: "abc"},
		{name: "odd hex", raw: "0x686", want: ""},
		{name: "missing prefix", raw: "hello", want: ""},
		{name: "out of range byte", raw: []any{float64(300)}, want: ""},
		{name: "object", raw: map[string]any{"a": 1}, want: ""},
		{name: "nil", raw: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeText(tt.raw))
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, s := range []string{"", "123 Main St", "456 Oak Ave", "配送先", "émoji 🚚"} {
		assert.Equal(t, s, DecodeText(EncodeText(s)))

		// the same value after a trip through JSON, as a signer would see it
		data, err := json.Marshal(EncodeText(s))
		require.NoError(t, err)
		var wire string
		require.NoError(t, json.Unmarshal(data, &wire))
		assert.Equal(t, s, DecodeText(wire))
	}
}

func TestDecodeNumeric(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want uint64
	}{
		{name: "numeric string", raw: "500", want: 500},
		{name: "padded string", raw: " 42 ", want: 42},
		{name: "json number", raw: json.Number("18446744073709551615"), want: 18446744073709551615},
		{name: "float", raw: float64(1000), want: 1000},
		{name: "int", raw: 7, want: 7},
		{name: "negative int", raw: -1, want: 0},
		{name: "fraction", raw: 1.5, want: 0},
		{name: "garbage", raw: "abc", want: 0},
		{name: "bool", raw: true, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeNumeric(tt.raw))
		})
	}
}

func TestDecodeBool(t *testing.T) {
	assert.True(t, DecodeBool(true))
	assert.True(t, DecodeBool("true"))
	assert.True(t, DecodeBool(json.Number("1")))
	assert.False(t, DecodeBool("0"))
	assert.False(t, DecodeBool("maybe"))
	assert.False(t, DecodeBool(nil))
}

func TestDecodeAddress(t *testing.T) {
	assert.Equal(t, "0xAA", DecodeAddress(" 0xAA "))
	assert.Equal(t, "", DecodeAddress(12))
}

func TestEncodeNumeric(t *testing.T) {
	assert.Equal(t, "500", EncodeNumeric(500))
}
