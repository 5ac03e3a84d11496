package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqrtOracleConfiguration() *Configuration {
	cfg := New()
	cfg.Messages["Request"] = []Field{{Name: "n", Ty: Primitive(U64)}}
	cfg.Messages["Response"] = []Field{{Name: "n", Ty: Primitive(U64)}}
	cfg.Services["SqrtOracle"] = Service{
		Methods: map[string]MethodDeclaration{
			"sqrt": {Input: Message("Request"), Output: Message("Response")},
		},
	}
	return cfg
}

func TestFieldTypeJSONRoundTrip(t *testing.T) {
	cases := []FieldType{
		Primitive(U32),
		Primitive(ByteArray),
		Message("Request"),
		Enum("Color"),
		OptionOf(Message("Inner")),
		ArrayOf(Primitive(I32)),
	}
	for _, ty := range cases {
		data, err := json.Marshal(ty)
		require.NoError(t, err)
		var got FieldType
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, ty, got)
	}
}

func TestValidateResolvesReferences(t *testing.T) {
	cfg := sqrtOracleConfiguration()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnresolvedMessage(t *testing.T) {
	cfg := New()
	cfg.Messages["Request"] = []Field{{Name: "x", Ty: Message("Missing")}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsSelectorCollision(t *testing.T) {
	cfg := sqrtOracleConfiguration()
	cfg.Services["OtherOracle"] = Service{
		Methods: map[string]MethodDeclaration{
			"sqrt": {Input: Message("Request"), Output: Message("Response")},
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDirectRecursion(t *testing.T) {
	cfg := New()
	cfg.Messages["Node"] = []Field{{Name: "next", Ty: Message("Node")}}
	assert.Error(t, cfg.Validate())
}

func TestValidateAllowsRecursionThroughOption(t *testing.T) {
	cfg := New()
	cfg.Messages["Node"] = []Field{{Name: "next", Ty: OptionOf(Message("Node"))}}
	assert.NoError(t, cfg.Validate())
}

func TestFindMethod(t *testing.T) {
	cfg := sqrtOracleConfiguration()
	md, ok := cfg.FindMethod("sqrt")
	require.True(t, ok)
	assert.Equal(t, Message("Response"), md.Output)

	_, ok = cfg.FindMethod("missing")
	assert.False(t, ok)
}

func TestDefaultPollingConfig(t *testing.T) {
	pc := DefaultPollingConfig()
	assert.Equal(t, 30, pc.MaxAttempts)
	assert.Equal(t, 2, pc.PollingIntervalS)
	assert.Equal(t, 10, pc.RequestTimeoutS)
	assert.Equal(t, 60, pc.OverallTimeoutS)
}

func TestEffectivePollingConfigDefault(t *testing.T) {
	sc := ServerConfig{ServerURL: "http://localhost:3000"}
	assert.Equal(t, DefaultPollingConfig(), sc.EffectivePollingConfig())
}
