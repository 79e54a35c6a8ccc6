package script

import (
	"fmt"
	"strings"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

const hexDigits = "0123456789ABCDEF"

// bare reports whether s can be written without quotes.
func bare(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == ',', c == '*', c == '-':
		default:
			return false
		}
	}
	return true
}

// Quote renders s as a script token. Values made only of letters, digits
// and "_,*-" are left bare; everything else becomes a double quoted string
// in which quotes, backslashes, "$" and "?" are escaped and control or
// non-ASCII bytes are written as \HH.
func Quote(s string) string {
	if bare(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"', c == '\\', c == '$', c == '?':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			b.WriteByte('\\')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote reverses Quote. Bare tokens are returned unchanged. Besides \HH
// it accepts the single letter escapes the device itself writes.
func Unquote(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	if len(s) < 2 || !strings.HasSuffix(s, `"`) {
		return "", parseErrorf("unterminated string %s", s)
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' {
			return "", parseErrorf("unescaped quote in %s", s)
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", parseErrorf("dangling escape in %s", s)
		}
		e := body[i]
		switch e {
		case '"', '\\', '$', '?':
			b.WriteByte(e)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '_':
			b.WriteByte(' ')
		case 'a':
			b.WriteByte(0x07)
		case 'b':
			b.WriteByte(0x08)
		case 'f':
			b.WriteByte(0x0c)
		case 'v':
			b.WriteByte(0x0b)
		case '\n':
			// line continuation inside a string
		default:
			if i+1 >= len(body) {
				return "", parseErrorf("bad escape in %s", s)
			}
			hi, okHi := unhex(e)
			lo, okLo := unhex(body[i+1])
			if !okHi || !okLo {
				return "", parseErrorf("bad escape \\%c in %s", e, s)
			}
			b.WriteByte(hi<<4 | lo)
			i++
		}
	}
	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

func parseErrorf(format string, args ...any) error {
	return nxerrors.New(nxerrors.KindParse, fmt.Errorf(format, args...))
}
