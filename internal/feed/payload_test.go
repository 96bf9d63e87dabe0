package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantType  Payload
		wantItems int
	}{
		{"wrapped", `{"data":[{"title":"a"},{"title":"b"},3]}`, Wrapped{}, 2},
		{"bare list", `[{"title":"a"},"x",{"title":"b"}]`, List{}, 2},
		{"single object", `{"title":"a","notes":"b"}`, Single{}, 1},
		{"data not a list", `{"data":{"title":"a"}}`, Single{}, 1},
		{"empty list", `[]`, List{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePayload([]byte(tt.raw))
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
			assert.Len(t, p.Items(), tt.wantItems)
		})
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	_, err := DecodePayload([]byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodePayload([]byte(`"just a string"`))
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize(42.0))
	assert.Len(t, Normalize([]any{map[string]any{"a": 1.0}}), 1)
}

func TestItemAccessors(t *testing.T) {
	it := Item{
		"title":            "",
		"versionProductName": "Android",
		"versionTimestamp": 1712345678.0,
		"asString":         "1712345679",
		"bad":              "n/a",
		"flag":             true,
		"nested":           map[string]any{"k": "v"},
	}

	assert.Equal(t, "Android", it.First("title", "versionProductName"))
	assert.Equal(t, "", it.First("missing"))
	assert.Equal(t, "android", it.Lower("versionProductName"))
	assert.Equal(t, int64(1712345678), it.Int64("versionTimestamp"))
	assert.Equal(t, int64(1712345679), it.Int64("asString"))
	assert.Equal(t, int64(0), it.Int64("bad"))
	assert.Equal(t, "1712345678", it.String("versionTimestamp"))
	assert.Equal(t, "true", it.String("flag"))
	assert.Equal(t, `{"k":"v"}`, it.String("nested"))
}

func TestItemFirst_EmptyByType(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{"numeric zero skipped", Item{"a": 0.0, "b": "next"}, "next"},
		{"bool false skipped", Item{"a": false, "b": "next"}, "next"},
		{"nil and blank skipped", Item{"a": nil, "b": "", "c": "next"}, "next"},
		{"string zero kept", Item{"a": "0", "b": "next"}, "0"},
		{"string false kept", Item{"a": "false", "b": "next"}, "false"},
		{"nonzero number kept", Item{"a": 7.0, "b": "next"}, "7"},
		{"true kept", Item{"a": true, "b": "next"}, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.First("a", "b", "c"))
		})
	}
}
