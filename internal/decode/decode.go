// Package decode turns raw on-ledger field encodings into typed values. The
// ledger stores text as byte arrays whose contents are sometimes themselves a
// hex encoding of the real UTF-8 bytes (double encoding from older contract
// versions), so Text runs a fallback chain: byte array -> ASCII string ->
// optional hex pass -> plain text. Nothing in this package returns an error;
// malformed input degrades to Placeholder so one bad record can never unwind
// an aggregation pass.
package decode

import (
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
)

// Placeholder is returned whenever a value cannot be decoded into readable
// text.
const Placeholder = "[unreadable]"

// minHexLen is the shortest ASCII string considered a plausible hex encoding.
// Shorter all-hex strings ("cafe", "2024") are overwhelmingly real text.
const minHexLen = 16

// Text decodes a raw ledger field into readable text. It accepts the shapes
// the JSON-RPC layer produces for byte arrays: a string, a []byte, or a
// []any of numbers (one ASCII code each).
func Text(v any) string {
	switch raw := v.(type) {
	case nil:
		return Placeholder
	case string:
		return fromASCII(raw)
	case []byte:
		return fromASCII(string(raw))
	case []any:
		buf := make([]byte, 0, len(raw))
		for _, el := range raw {
			n, ok := asByte(el)
			if !ok {
				return Placeholder
			}
			buf = append(buf, n)
		}
		return fromASCII(string(buf))
	default:
		return Placeholder
	}
}

// fromASCII applies the hex fallback: when the first-stage string looks like
// a hex encoding, decode it and keep the result if it is valid UTF-8;
// otherwise the first-stage string already is the text.
func fromASCII(s string) string {
	if s == "" {
		return Placeholder
	}
	if looksHex(s) {
		if decoded := common.FromHex(s); len(decoded) > 0 && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	if !utf8.ValidString(s) {
		return Placeholder
	}
	return s
}

// looksHex reports whether s is long enough and entirely hex digits (an
// optional 0x prefix allowed) to plausibly be hex-encoded bytes.
func looksHex(s string) bool {
	body := s
	if len(body) >= 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		body = body[2:]
	}
	if len(body) < minHexLen || len(body)%2 != 0 {
		return false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// asByte coerces a JSON-decoded array element into a single byte.
func asByte(v any) (byte, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > 255 || n != float64(int(n)) {
			return 0, false
		}
		return byte(n), true
	case int:
		if n < 0 || n > 255 {
			return 0, false
		}
		return byte(n), true
	case int64:
		if n < 0 || n > 255 {
			return 0, false
		}
		return byte(n), true
	default:
		return 0, false
	}
}

// OptionalBool unwraps the ledger's optional-boolean encoding: either a bare
// bool, or a present/absent wrapper of the form {"some": b} (absent maps to
// nil, as does anything malformed).
func OptionalBool(v any) *bool {
	switch raw := v.(type) {
	case bool:
		b := raw
		return &b
	case map[string]any:
		inner, ok := raw["some"]
		if !ok {
			// Some RPC encodings nest the wrapper one level down.
			if fields, ok := raw["fields"].(map[string]any); ok {
				return OptionalBool(fields)
			}
			return nil
		}
		if b, ok := inner.(bool); ok {
			v := b
			return &v
		}
		return nil
	default:
		return nil
	}
}
