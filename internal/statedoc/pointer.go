package statedoc

import (
	"strconv"
	"strings"
)

// Pointer is a parsed JSON pointer (RFC 6901): a sequence of decoded
// reference tokens. Tokens index into lists when numeric and key into maps
// otherwise; "-" is the append token and is only legal as the final token
// of an add.
type Pointer []string

// ParsePointer splits and decodes a pointer string. A string without a
// leading slash is treated as a single token, matching the upstream
// patch producer.
func ParsePointer(s string) Pointer {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return Pointer{decodeToken(s)}
	}
	parts := strings.Split(s, "/")[1:]
	out := make(Pointer, len(parts))
	for i, p := range parts {
		out[i] = decodeToken(p)
	}
	return out
}

func decodeToken(t string) string {
	t = strings.ReplaceAll(t, "~1", "/")
	return strings.ReplaceAll(t, "~0", "~")
}

func encodeToken(t string) string {
	t = strings.ReplaceAll(t, "~", "~0")
	return strings.ReplaceAll(t, "/", "~1")
}

// String re-encodes the pointer, mostly for log lines.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range p {
		b.WriteByte('/')
		b.WriteString(encodeToken(t))
	}
	return b.String()
}

// index reports whether a token is a non-negative list index.
func index(token string) (int, bool) {
	i, err := strconv.Atoi(token)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// isIndexLike reports whether a token would address a list position.
func isIndexLike(token string) bool {
	if token == "-" {
		return true
	}
	_, ok := index(token)
	return ok
}
