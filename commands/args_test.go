package commands

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{nil, 0},
		{true, 1},
		{false, 0},
		{int8(-3), -3},
		{uint16(7), 7},
		{int64(1 << 40), 1 << 40},
		{float32(1.5), 1.5},
		{"", 0},
		{"  ", 0},
		{"12", 12},
		{" 12\n", 12},
		{"-4", -4},
		{"2.5", 2.5},
		{"1e3", 1000},
		{"0x10", 16},
		{"0o17", 15},
		{"0b101", 5},
		{[]byte("3"), 3},
		{"1e400", math.Inf(1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toNumber(tt.in), "%#v", tt.in)
	}

	for _, in := range []any{"abc", "12abc", []byte("x"), struct{}{}, []int{1}} {
		assert.True(t, math.IsNaN(toNumber(in)), "%#v", in)
	}
}

func TestToText(t *testing.T) {
	assert.Equal(t, "", toText(nil))
	assert.Equal(t, "STORE", toText("STORE"))
	assert.Equal(t, "STORE", toText([]byte("STORE")))
	assert.Equal(t, "42", toText(42))
	assert.Equal(t, "2.5", toText(2.5))
	assert.Equal(t, "true", toText(true))
}

func TestEqualToken(t *testing.T) {
	assert.True(t, equalToken("streams", "STREAMS"))
	assert.True(t, equalToken("StReAmS", "STREAMS"))
	assert.False(t, equalToken("stream", "STREAMS"))
	assert.False(t, equalToken("STOREDIST", "STORE"))
}

func TestExternalKeyNameLength(t *testing.T) {
	assert.Equal(t, 6, externalKeyNameLength("hash:*->field"))
	assert.Equal(t, 2, externalKeyNameLength([]byte("gk")))
	assert.Equal(t, 0, externalKeyNameLength("->f"))
	assert.Equal(t, 3, externalKeyNameLength(123))
	assert.Equal(t, 0, externalKeyNameLength(nil))
}

func TestExternalKeyNameLengthCountsBytes(t *testing.T) {
	// Slot hashing works on the raw key bytes.
	assert.Equal(t, 8, externalKeyNameLength("ключ->f"))
	assert.Equal(t, 8, externalKeyNameLength([]byte("ключ->f")))
	assert.Equal(t, 4, externalKeyNameLength("😀->f"))
	assert.Equal(t, 6, externalKeyNameLength("héllo"))
}

func TestArgs(t *testing.T) {
	args, err := Args([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, args)

	args, err = Args([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, args)

	args, err = Args([]any(nil))
	require.NoError(t, err)
	assert.Empty(t, args)

	for _, in := range []any{nil, "ab", []byte("ab"), 1} {
		_, err := Args(in)
		assert.ErrorIs(t, err, ErrInvalidArguments, "%#v", in)
	}
}
