package json

import (
	stdjson "encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   int               `json:"id"`
	Name string            `json:"name"`
	Tags []string          `json:"tags,omitempty"`
	Meta map[string]string `json:"meta,omitempty"`
}

func TestMarshalMatchesStdlib(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "struct", in: payload{ID: 1, Name: "svc", Tags: []string{"a", "b"}}},
		{name: "map keys sorted", in: map[string]any{"z": 1, "a": "x", "m": nil}},
		{name: "html escaped", in: map[string]string{"q": "<a&b>"}},
		{name: "nil", in: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			require.NoError(t, err)
			want, err := stdjson.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
		})
	}
}

func TestUnmarshal(t *testing.T) {
	var p payload
	require.NoError(t, Unmarshal([]byte(`{"id":7,"name":"x","meta":{"k":"v"}}`), &p))
	assert.Equal(t, 7, p.ID)
	assert.Equal(t, "v", p.Meta["k"])

	assert.Error(t, Unmarshal([]byte(`{"id":`), &p))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"a":[1,2,3]}`)))
	assert.False(t, Valid([]byte(`{"a":`)))
}

func TestDecoderUseNumber(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"n":12345678901234567890}`))
	dec.UseNumber()

	var out map[string]any
	require.NoError(t, dec.Decode(&out))
	n, ok := out["n"].(stdjson.Number)
	require.True(t, ok, "expected json.Number, got %T", out["n"])
	assert.Equal(t, "12345678901234567890", n.String())
}
