// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/jdom/internal/escape"
	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	buf := escape.AppendQuote(append(make([]byte, 0, len(src)+2), '"'), mem.S(src))
	return string(append(buf, '"'))
}

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Invalid escapes are replaced by the Unicode replacement rune. Unquote
// reports an error for an incomplete escape sequence.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}

// FormatFloat renders f as the text of a JSON number with the given
// precision in bits (32 or 64). The result always reads back as a
// floating-point value: if the shortest representation has neither a decimal
// point nor an exponent, ".0" is appended.
func FormatFloat(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// LooksNumeric reports whether text has the shape of a number: it begins
// with a sign, a decimal point, or a decimal digit, and consists only of the
// characters "0123456789+-.eE". Text that looks numeric is parsed as a number when it
// appears unquoted; if it does not parse, it is treated as a string.
func LooksNumeric(text mem.RO) bool {
	if text.Len() == 0 {
		return false
	}
	if c := text.At(0); c != '-' && c != '+' && c != '.' && (c < '0' || c > '9') {
		return false
	}
	for i := 0; i < text.Len(); i++ {
		switch c := text.At(i); {
		case c >= '0' && c <= '9', c == '+', c == '-', c == '.', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return true
}

// IsLiteral reports whether text is one of the unquoted literal words
// "true", "false", or "null".
func IsLiteral(text mem.RO) bool {
	return text.EqualString("true") || text.EqualString("false") || text.EqualString("null")
}
