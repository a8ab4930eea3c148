package grammar

import "strings"

// Normalize returns the canonical lookup key for a raw identifier.
// Quotes around the name are dropped and every \XX hex escape becomes its
// byte, so `@"a\2eb"` and `@a.b` share a key. The sigil is kept.
func Normalize(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	sigil := raw[:1]
	body := raw[1:]
	if len(raw) >= 3 && raw[1] == '"' && raw[len(raw)-1] == '"' {
		body = raw[2 : len(raw)-1]
	}
	return sigil + unescape(body)
}

// RemoveTrailing strips one occurrence of trail from the end of s.
func RemoveTrailing(s, trail string) string {
	return strings.TrimSuffix(s, trail)
}

// LabelKey turns a label token (with or without its colon) into the local key
// used by branch targets.
func LabelKey(token string) string {
	return Normalize(string(SigilLocal) + RemoveTrailing(token, ":"))
}

// IsLocal reports whether a normalized key is function scoped.
func IsLocal(key string) bool {
	return key != "" && key[0] == SigilLocal
}

func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			sb.WriteByte(hexVal(s[i+1])<<4 | hexVal(s[i+2]))
			i += 2
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
