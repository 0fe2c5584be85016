// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"io"

	"github.com/creachadair/jdom/internal/escape"
	"go4.org/mem"
)

// Token is the type of a lexical token in the input grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	String               // quoted string
	Bare                 // unquoted token: a literal, a number, or a bare string
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	String:  "string",
	Bare:    "unquoted token",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// A Scanner reads lexical tokens from an input buffer. Each call to Next
// advances the scanner to the next token, or reports an error.
//
// Whitespace (space, tab, CR, LF), line comments (// ...) and block comments
// (/* ... */) are skipped between tokens.
type Scanner struct {
	src mem.RO
	tok Token
	err error

	pos, end int // start and end offsets of current token
}

// NewScanner constructs a new lexical scanner that consumes input from src.
func NewScanner(src mem.RO) *Scanner { return &Scanner{src: src} }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF. Any other error has concrete
// type *ParseError.
func (s *Scanner) Next() error {
	s.err = nil
	s.tok = Invalid
	if err := s.skipSpace(); err != nil {
		return err
	}
	s.pos = s.end
	if s.end >= s.src.Len() {
		return s.setErr(io.EOF)
	}

	ch := s.src.At(s.end)
	if t, ok := selfDelim(ch); ok {
		s.end++
		s.tok = t
		return nil
	}
	if ch == '"' {
		return s.scanString()
	}
	return s.scanBare()
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns a view of the undecoded text of the current token. String
// tokens include their quotation marks.
func (s *Scanner) Text() mem.RO { return s.src.Slice(s.pos, s.end) }

// Unquote returns the decoded text of the current token. For a String token
// the quotes are removed and escapes are decoded; any other token is returned
// as written.
func (s *Scanner) Unquote() (string, error) {
	if s.tok != String {
		return s.Text().StringCopy(), nil
	}
	dec, err := escape.Unquote(s.src.Slice(s.pos+1, s.end-1))
	if err != nil {
		return "", s.Errorf("%v", err)
	}
	return string(dec), nil
}

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: lineColAt(s.src, s.pos),
		Last:  lineColAt(s.src, s.end),
	}
}

// Errorf returns a *ParseError describing a problem at the start of the
// current token. After Next reports io.EOF, the current token is positioned
// at the end of the input.
func (s *Scanner) Errorf(msg string, args ...any) *ParseError {
	return newParseError(s.src, s.pos, msg, args...)
}

func (s *Scanner) skipSpace() error {
	n := s.src.Len()
	for s.end < n {
		ch := s.src.At(s.end)
		if isSpace(ch) {
			s.end++
			continue
		}
		if ch != '/' || s.end+1 >= n {
			return nil
		}
		switch s.src.At(s.end + 1) {
		case '/': // line comment to LF
			i := mem.IndexByte(s.src.SliceFrom(s.end), '\n')
			if i < 0 {
				s.end = n
			} else {
				s.end += i + 1
			}
		case '*': // block comment
			i := mem.Index(s.src.SliceFrom(s.end+2), mem.S("*/"))
			if i < 0 {
				return s.fail(s.end, "unterminated block comment")
			}
			s.end += i + 4
		default:
			return nil
		}
	}
	return nil
}

func (s *Scanner) scanString() error {
	n := s.src.Len()
	i := s.end + 1
	for i < n {
		switch ch := s.src.At(i); ch {
		case '"':
			s.end = i + 1
			s.tok = String
			return nil
		case '\\':
			if i+1 >= n {
				return s.fail(s.pos, "unterminated string")
			}
			switch esc := s.src.At(i + 1); esc {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				i += 2
			case 'u':
				if i+6 > n {
					return s.fail(i, "incomplete Unicode escape")
				}
				if _, err := escape.ParseHex4(s.src.Slice(i+2, i+6)); err != nil {
					return s.fail(i, "invalid Unicode escape: %v", err)
				}
				i += 6
			default:
				return s.fail(i, "invalid %q after escape", esc)
			}
		default:
			i++
		}
	}

	// Reaching the end of input inside a string is an error; the partial text
	// is reported rather than discarded.
	return s.fail(s.pos, "unterminated string %q", truncate(s.src.SliceFrom(s.pos).StringCopy(), 16))
}

func (s *Scanner) scanBare() error {
	n := s.src.Len()
	i := s.end
	for i < n {
		ch := s.src.At(i)
		if isSpace(ch) || isDelim(ch) || ch == '"' {
			break
		} else if ch == '/' && i+1 < n && (s.src.At(i+1) == '/' || s.src.At(i+1) == '*') {
			break // a comment ends the token
		}
		i++
	}
	s.end = i
	s.tok = Bare
	return nil
}

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) fail(off int, msg string, args ...any) error {
	return s.setErr(newParseError(s.src, off, msg, args...))
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isDelim(ch byte) bool {
	switch ch {
	case '{', '}', '[', ']', ',', ':':
		return true
	}
	return false
}

var self = [...]Token{
	'{': LBrace, '}': RBrace, '[': LSquare, ']': RSquare, ',': Comma, ':': Colon,
}

func selfDelim(ch byte) (Token, bool) {
	if int(ch) < len(self) && self[ch] != Invalid {
		return self[ch], true
	}
	return Invalid, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
