// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/creachadair/jdom"
	"go4.org/mem"
)

// Parse reads all of r and parses it as a single value. See ParseBytes.
func Parse(r io.Reader) (*Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseString parses text as a single value. See ParseBytes.
func ParseString(text string) (*Value, error) { return parse(mem.S(text)) }

// ParseBytes parses data as a single value and returns the root of its
// tree. The input must contain exactly one value, optionally surrounded by
// whitespace and comments. Syntax errors have concrete type *jdom.ParseError.
//
// The parser is not recursive: the depth of nesting in the input is limited
// only by available memory.
func ParseBytes(data []byte) (*Value, error) { return parse(mem.B(data)) }

// parseState enumerates the positions of the parser in the grammar.
type parseState byte

const (
	wantRoot      parseState = iota // a value at the top level
	wantEnd                         // the end of input after the top value
	wantKey                         // a member name or "}"
	wantColon                       // the ":" after a member name
	wantMember                      // the value of a member
	afterMember                     // ",", "}", or the next member name
	wantElement                     // an array element or "]"
	afterElement                    // ",", "]", or the next element
)

// A parser holds the state of a single parse. Containers are linked into
// their parent when opened, so the frame stack holds only the containers
// whose closing bracket has not yet been seen.
type parser struct {
	s     *jdom.Scanner
	stk   []*Value
	state parseState
	name  string // pending member name
	root  *Value
}

func parse(src mem.RO) (*Value, error) {
	p := &parser{s: jdom.NewScanner(src)}
	for {
		err := p.s.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if err := p.step(p.s.Token()); err != nil {
			return nil, err
		}
	}

	// Reaching here, the scanner is positioned at the end of the input.
	if n := len(p.stk); n != 0 {
		return nil, p.s.Errorf("unexpected end of input in %s", p.stk[n-1].kind)
	} else if p.root == nil {
		return nil, p.s.Errorf("no value found")
	}
	return p.root, nil
}

func (p *parser) step(tok jdom.Token) error {
	switch p.state {
	case wantRoot, wantMember:
		return p.value(tok)

	case wantEnd:
		return p.s.Errorf("unexpected %v after the end of the value", tok)

	case wantKey:
		if tok == jdom.RBrace {
			return p.pop()
		}
		return p.key(tok, jdom.String, jdom.Bare, jdom.RBrace)

	case wantColon:
		if tok != jdom.Colon {
			return p.unexpected(tok, jdom.Colon)
		}
		p.state = wantMember
		return nil

	case afterMember:
		switch tok {
		case jdom.Comma:
			p.state = wantKey
			return nil
		case jdom.RBrace:
			return p.pop()
		}
		return p.key(tok, jdom.Comma, jdom.RBrace, jdom.String, jdom.Bare)

	case wantElement:
		if tok == jdom.RSquare {
			return p.pop()
		}
		return p.value(tok)

	case afterElement:
		switch tok {
		case jdom.Comma:
			p.state = wantElement
			return nil
		case jdom.RSquare:
			return p.pop()
		}
		return p.value(tok)
	}
	panic(fmt.Sprintf("invalid parser state %d", p.state))
}

// key handles a member name in an object.
func (p *parser) key(tok jdom.Token, want ...jdom.Token) error {
	if tok != jdom.String && tok != jdom.Bare {
		return p.unexpected(tok, want...)
	}
	name, err := p.s.Unquote()
	if err != nil {
		return err
	}
	p.name = name
	p.state = wantColon
	return nil
}

// value handles the first token of a value.
func (p *parser) value(tok jdom.Token) error {
	span := p.s.Span()
	var v *Value
	switch tok {
	case jdom.LBrace:
		v = NewObject()
	case jdom.LSquare:
		v = NewArray()
	case jdom.String:
		s, err := p.s.Unquote()
		if err != nil {
			return err
		}
		v = NewString(s)
	case jdom.Bare:
		v = classify(p.s.Text().StringCopy())
	default:
		return p.s.Errorf("unexpected %v, expected a value", tok)
	}
	v.pos, v.end = span.Pos, span.End

	if n := len(p.stk); n == 0 {
		p.root = v
	} else {
		top := p.stk[n-1]
		if top.kind == Object {
			v.Name = p.name
			p.name = ""
		}
		top.link(v)
	}
	if v.IsContainer() {
		p.push(v)
	} else {
		p.settle()
	}
	return nil
}

func (p *parser) push(v *Value) {
	p.stk = append(p.stk, v)
	if v.kind == Object {
		p.state = wantKey
	} else {
		p.state = wantElement
	}
}

// pop closes the innermost container at the current token.
func (p *parser) pop() error {
	n := len(p.stk)
	p.stk[n-1].end = p.s.Span().End
	p.stk = p.stk[:n-1]
	p.settle()
	return nil
}

// settle sets the state after a complete value.
func (p *parser) settle() {
	if n := len(p.stk); n == 0 {
		p.state = wantEnd
	} else if p.stk[n-1].kind == Object {
		p.state = afterMember
	} else {
		p.state = afterElement
	}
}

func (p *parser) unexpected(got jdom.Token, want ...jdom.Token) error {
	return p.s.Errorf("%s", tokLabel(want, got))
}

// classify constructs the value denoted by the text of an unquoted token.
func classify(text string) *Value {
	switch text {
	case "true":
		return NewBool(true)
	case "false":
		return NewBool(false)
	case "null":
		return NewNull()
	}
	if jdom.LooksNumeric(mem.S(text)) {
		if strings.ContainsAny(text, ".eE") {
			if f, err := strconv.ParseFloat(text, 64); err == nil {
				v := NewDouble(f)
				if keepText(text) {
					v.str = text
				}
				return v
			}
		} else if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			v := NewLong(n)
			if keepText(text) {
				v.str = text
			}
			return v
		}
	}
	return NewString(text)
}

// keepText reports whether the source text of a parsed number can be written
// back out as a JSON number. Text with a leading "+" or a bare decimal point
// (".5", "1.") is rewritten in canonical form instead.
func keepText(text string) bool {
	if text[0] == '-' {
		text = text[1:]
	}
	if text == "" || text[0] < '0' || text[0] > '9' {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '.' && (i+1 == len(text) || text[i+1] < '0' || text[i+1] > '9') {
			return false
		}
	}
	return true
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []jdom.Token, got jdom.Token) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("unexpected %v", got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, last)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}
