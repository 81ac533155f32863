package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func asCodes(s string) []any {
	out := make([]any, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = float64(s[i])
	}
	return out
}

func TestText_PlainString(t *testing.T) {
	require.Equal(t, "Will BTC close above 100k?", Text("Will BTC close above 100k?"))
}

func TestText_ByteArray(t *testing.T) {
	require.Equal(t, "hello world?", Text(asCodes("hello world?")))
	require.Equal(t, "hello world?", Text([]byte("hello world?")))
}

func TestText_HexInBytes(t *testing.T) {
	// "57696c6c2045544820666c69703f" is hex for "Will ETH flip?" — the double
	// encoding older contract versions produced.
	require.Equal(t, "Will ETH flip?", Text("57696c6c2045544820666c69703f"))
	require.Equal(t, "Will ETH flip?", Text(asCodes("57696c6c2045544820666c69703f")))
	require.Equal(t, "Will ETH flip?", Text("0x57696c6c2045544820666c69703f"))
}

func TestText_ShortHexIsPlainText(t *testing.T) {
	// All hex digits but below the plausibility threshold: real text.
	require.Equal(t, "cafe", Text("cafe"))
	require.Equal(t, "2024", Text("2024"))
}

func TestText_NeverErrors(t *testing.T) {
	require.Equal(t, Placeholder, Text(nil))
	require.Equal(t, Placeholder, Text(42))
	require.Equal(t, Placeholder, Text(""))
	require.Equal(t, Placeholder, Text([]any{float64(300)}))  // not a byte
	require.Equal(t, Placeholder, Text([]any{"x"}))           // wrong element type
	require.Equal(t, Placeholder, Text(string([]byte{0xff}))) // invalid UTF-8
}

func TestText_HexDecodingToInvalidUTF8FallsBack(t *testing.T) {
	// Looks like hex, but decodes to invalid UTF-8: keep the literal string.
	require.Equal(t, "fffefffefffefffe", Text("fffefffefffefffe"))
}

func TestOptionalBool(t *testing.T) {
	v := OptionalBool(true)
	require.NotNil(t, v)
	require.True(t, *v)

	v = OptionalBool(map[string]any{"some": false})
	require.NotNil(t, v)
	require.False(t, *v)

	v = OptionalBool(map[string]any{"fields": map[string]any{"some": true}})
	require.NotNil(t, v)
	require.True(t, *v)

	require.Nil(t, OptionalBool(nil))
	require.Nil(t, OptionalBool(map[string]any{}))
	require.Nil(t, OptionalBool(map[string]any{"some": "yes"}))
	require.Nil(t, OptionalBool("true"))
}
