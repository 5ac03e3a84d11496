package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reilabs/cairo-hints-go/schema"
)

func sqrtConfiguration() *schema.Configuration {
	cfg := schema.New()
	cfg.Messages["Request"] = []schema.Field{{Name: "n", Ty: schema.Primitive(schema.U64)}}
	cfg.Messages["Response"] = []schema.Field{{Name: "n", Ty: schema.Primitive(schema.U64)}}
	cfg.Services["SqrtOracle"] = schema.Service{
		Methods: map[string]schema.MethodDeclaration{
			"sqrt": {Input: schema.Message("Request"), Output: schema.Message("Response")},
		},
	}
	return cfg
}

func TestSerializeDeserializeSqrtRequest(t *testing.T) {
	cfg := sqrtConfiguration()
	ty := schema.Message("Request")

	felts, err := Serialize(cfg, ty, map[string]any{"n": uint64(42)})
	require.NoError(t, err)
	require.Len(t, felts, 1)

	got, rest, err := Deserialize(cfg, ty, felts)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, map[string]any{"n": uint64(42)}, got)
}

func TestOptionRoundTripPresentAndAbsent(t *testing.T) {
	cfg := schema.New()
	cfg.Messages["Inner"] = []schema.Field{{Name: "inner", Ty: schema.Primitive(schema.U32)}}
	ty := schema.OptionOf(schema.Message("Inner"))

	present, err := Serialize(cfg, ty, map[string]any{"inner": uint64(7)})
	require.NoError(t, err)
	// tag(U64=0) + inner(U32) = 2 felts.
	require.Len(t, present, 2)
	gotPresent, rest, err := Deserialize(cfg, ty, present)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, map[string]any{"inner": uint32(7)}, gotPresent)

	absent, err := Serialize(cfg, ty, nil)
	require.NoError(t, err)
	require.Len(t, absent, 1)
	gotAbsent, rest, err := Deserialize(cfg, ty, absent)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Nil(t, gotAbsent)
}

func TestArrayRoundTrip(t *testing.T) {
	cfg := schema.New()
	ty := schema.ArrayOf(schema.Primitive(schema.I32))

	felts, err := Serialize(cfg, ty, []any{int64(1), int64(-2), int64(3)})
	require.NoError(t, err)
	require.Len(t, felts, 4) // length + 3 elements

	got, rest, err := Deserialize(cfg, ty, felts)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, []any{int32(1), int32(-2), int32(3)}, got)
}

func TestByteArrayBoundaryAt31Bytes(t *testing.T) {
	// Exactly one full word, no pending bytes: last_row_length == 0 branch.
	s := make([]byte, 31)
	for i := range s {
		s[i] = byte('a' + i%26)
	}
	roundTripByteArray(t, string(s))
}

func TestByteArrayBoundaryAt32Bytes(t *testing.T) {
	// One full word plus one pending byte.
	s := make([]byte, 32)
	for i := range s {
		s[i] = byte('a' + i%26)
	}
	roundTripByteArray(t, string(s))
}

func TestByteArrayShortString(t *testing.T) {
	roundTripByteArray(t, "lorem")
}

func TestByteArrayEmptyString(t *testing.T) {
	roundTripByteArray(t, "")
}

func TestByteArrayMultipleFields(t *testing.T) {
	cfg := schema.New()
	cfg.Messages["Strings"] = []schema.Field{
		{Name: "a", Ty: schema.Primitive(schema.ByteArray)},
		{Name: "b", Ty: schema.Primitive(schema.ByteArray)},
		{Name: "c", Ty: schema.Primitive(schema.ByteArray)},
	}
	ty := schema.Message("Strings")
	value := map[string]any{
		"a": "lorem",
		"b": "this is a somewhat longer string that overflows a single felt",
		"c": "dolor",
	}

	felts, err := Serialize(cfg, ty, value)
	require.NoError(t, err)
	got, rest, err := Deserialize(cfg, ty, felts)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, value, got)
}

func roundTripByteArray(t *testing.T, s string) {
	t.Helper()
	cfg := schema.New()
	ty := schema.Primitive(schema.ByteArray)

	felts, err := Serialize(cfg, ty, s)
	require.NoError(t, err)
	got, rest, err := Deserialize(cfg, ty, felts)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, s, got)
}

func TestEnumSerializesAsI32(t *testing.T) {
	cfg := schema.New()
	ty := schema.Enum("Color")

	felts, err := Serialize(cfg, ty, int64(2))
	require.NoError(t, err)
	require.Len(t, felts, 1)

	got, rest, err := Deserialize(cfg, ty, felts)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, int32(2), got)
}

func TestFelt252RoundTripHex(t *testing.T) {
	cfg := schema.New()
	ty := schema.Primitive(schema.Felt252)

	felts, err := Serialize(cfg, ty, "0x2a")
	require.NoError(t, err)
	require.Len(t, felts, 1)

	got, rest, err := Deserialize(cfg, ty, felts)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, "0x2a", got)
}

func TestBoolRoundTrip(t *testing.T) {
	cfg := schema.New()
	ty := schema.Primitive(schema.Bool)

	for _, b := range []bool{true, false} {
		felts, err := Serialize(cfg, ty, b)
		require.NoError(t, err)
		got, rest, err := Deserialize(cfg, ty, felts)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, b, got)
	}
}
