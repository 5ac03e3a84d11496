package felt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromIntCanonicalisesNegative(t *testing.T) {
	f := FromInt64(-2)
	want := new(big.Int).Sub(Prime, big.NewInt(2))
	assert.Equal(t, want, f.ToBigInt())
}

func TestRoundTripUint64(t *testing.T) {
	f := FromUint64(1764)
	got, err := f.ToUint64()
	require.NoError(t, err)
	assert.EqualValues(t, 1764, got)
}

func TestToInt64NegativeRoundTrip(t *testing.T) {
	f := FromInt64(-42)
	got, err := f.ToInt64()
	require.NoError(t, err)
	assert.EqualValues(t, -42, got)
}

func TestToUint64Overflow(t *testing.T) {
	f := FromInt64(-1)
	_, err := f.ToUint64()
	assert.Error(t, err)
}

func TestHexRoundTrip(t *testing.T) {
	f := FromUint64(42)
	hex := f.ToHex()
	assert.Equal(t, "0x2a", hex)
	parsed, err := FromHexOrDecimal(hex)
	require.NoError(t, err)
	assert.True(t, f.Equal(parsed))
}

func TestFromHexOrDecimalDecimal(t *testing.T) {
	parsed, err := FromHexOrDecimal("1764")
	require.NoError(t, err)
	assert.True(t, FromUint64(1764).Equal(parsed))
}

func TestBytesBERoundTrip(t *testing.T) {
	f := FromUint64(0x0102030405)
	b := f.ToBytesBE()
	assert.Len(t, b, 32)
	back := FromBytesBESlice(b[:])
	assert.True(t, f.Equal(back))
}

func TestZeroHex(t *testing.T) {
	assert.Equal(t, "0x0", Zero().ToHex())
}
