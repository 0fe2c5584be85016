// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote encodes a string to escape characters for inclusion in a JSON string.
// The enclosing quotation marks are not added.
func Quote(src mem.RO) []byte { return AppendQuote(make([]byte, 0, src.Len()), src) }

// AppendQuote appends the escaped form of src to buf and returns the result.
func AppendQuote(buf []byte, src mem.RO) []byte {
	putByte := func(bs ...byte) { buf = append(buf, bs...) }

	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if r < utf8.RuneSelf {
			if r < ' ' {
				if b := controlEsc[r]; b != 0 {
					putByte('\\', b)
				} else {
					putByte('\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
				}
			} else if r == '\\' || r == '"' {
				putByte('\\', byte(r))
			} else {
				putByte(byte(r))
			}
			src = src.SliceFrom(n)
			continue
		}

		switch r {
		case '\ufffd': // replacement rune
			buf = append(buf, `\ufffd`...)
		case '\u2028': // line separator
			buf = append(buf, `\u2028`...)
		case '\u2029': // paragraph separator
			buf = append(buf, `\u2029`...)
		default:
			buf = utf8.AppendRune(buf, r)
		}

		src = src.SliceFrom(n)
	}
	return buf
}

// NeedsQuote reports whether src contains any byte that Quote would escape.
func NeedsQuote(src mem.RO) bool {
	for i := 0; i < src.Len(); i++ {
		if b := src.At(i); b < ' ' || b == '\\' || b == '"' || b >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
