// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"fmt"
	"strings"

	"github.com/creachadair/jdom/internal/escape"
	"go4.org/mem"
)

// OutputType selects how names and string values are quoted in output.
type OutputType int

const (
	// Standard output is strict JSON: all names and strings are quoted.
	Standard OutputType = iota

	// Scripting output leaves names unquoted when they are identifiers
	// matching [A-Za-z_$][A-Za-z0-9_$]*. String values are quoted.
	Scripting

	// Minimal output leaves names and string values unquoted whenever the
	// unquoted text reads back as the same string.
	Minimal
)

var outputStr = [...]string{Standard: "json", Scripting: "javascript", Minimal: "minimal"}

func (o OutputType) String() string {
	if o < 0 || int(o) >= len(outputStr) {
		return fmt.Sprintf("OutputType(%d)", int(o))
	}
	return outputStr[o]
}

// ParseOutputType returns the OutputType named by s. It accepts the names
// reported by OutputType.String, and the aliases "standard", "js", and
// "scripting". Case is not significant.
func ParseOutputType(s string) (OutputType, error) {
	switch strings.ToLower(s) {
	case "json", "standard":
		return Standard, nil
	case "javascript", "js", "scripting":
		return Scripting, nil
	case "minimal":
		return Minimal, nil
	}
	return Standard, fmt.Errorf("unknown output type %q", s)
}

// QuoteName returns the text of an object member name in this output style.
func (o OutputType) QuoteName(name string) string { return string(o.AppendName(nil, name)) }

// QuoteValue returns the text of a string value in this output style.
func (o OutputType) QuoteValue(s string) string { return string(o.AppendValue(nil, s)) }

// AppendName appends the text of an object member name to buf.
func (o OutputType) AppendName(buf []byte, name string) []byte {
	switch o {
	case Scripting:
		if isIdent(name) {
			return append(buf, name...)
		}
	case Minimal:
		if isBareText(name) {
			return append(buf, name...)
		}
	}
	return appendQuoted(buf, name)
}

// AppendValue appends the text of a string value to buf.
func (o OutputType) AppendValue(buf []byte, s string) []byte {
	if o == Minimal && IsBare(s) {
		return append(buf, s...)
	}
	return appendQuoted(buf, s)
}

// IsBare reports whether s can be written as an unquoted value and read back
// as the same string. Text that would read as a literal or that looks like a
// number is not bare.
func IsBare(s string) bool {
	m := mem.S(s)
	return isBareText(s) && !IsLiteral(m) && !LooksNumeric(m)
}

// isBareText reports whether s would scan as a single unquoted token with
// exactly the text of s.
func isBareText(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c <= ' ', c == '"', c == '\\', c >= 0x7f:
			return false
		case isDelim(c):
			return false
		case c == '/' && i+1 < len(s) && (s[i+1] == '/' || s[i+1] == '*'):
			return false
		}
	}
	return true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c == '$', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func appendQuoted(buf []byte, s string) []byte {
	buf = append(buf, '"')
	if m := mem.S(s); escape.NeedsQuote(m) {
		buf = escape.AppendQuote(buf, m)
	} else {
		buf = append(buf, s...)
	}
	return append(buf, '"')
}
