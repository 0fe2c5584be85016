// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package dom defines a mutable document tree for JSON values, and a parser
// that constructs trees from the lenient JSON dialect of package jdom.
//
// Every node of a tree is a *Value. Objects and arrays keep their children
// as a doubly-linked list, so members retain their source order, duplicate
// names are preserved, and nodes can be added or removed in place. Member
// names are stored on the child node itself.
//
// Numbers carry both an integer and a floating-point payload, so reading a
// number as either kind is always possible; the payload matching the kind of
// the node is exact. The source text of a parsed number is kept, and is used
// in preference to a formatted value on output.
package dom

import (
	"fmt"
	"math"
	"strconv"

	"github.com/creachadair/jdom"
)

// Kind enumerates the kinds of values represented by a *Value.
type Kind byte

// Constants defining the valid Kind values.
const (
	Null   Kind = iota // the literal null
	Bool               // the literal true or false
	Long               // an integer number
	Double             // a floating-point number
	String             // a string
	Array              // an ordered list of values
	Object             // an ordered list of named members
)

var kindStr = [...]string{
	Null: "null", Bool: "bool", Long: "long", Double: "double",
	String: "string", Array: "array", Object: "object",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindStr[k]
}

// A Value is a node in a document tree. The zero value is a null.
type Value struct {
	// Name is the member name of v in its enclosing object, or "".
	Name string

	kind Kind
	str  string  // String payload, or the source text of a number
	lng  int64   // Long payload; the truncation of dbl for a Double
	dbl  float64 // Double payload; the conversion of lng for a Long
	ok   bool    // Bool payload

	// Tree links.
	parent, child, last, prev, next *Value
	size                            int

	pos, end int // source location, if parsed
}

// NewObject returns a new empty object.
func NewObject() *Value { return &Value{kind: Object} }

// NewArray returns a new empty array.
func NewArray() *Value { return &Value{kind: Array} }

// NewString returns a new string value.
func NewString(s string) *Value { return &Value{kind: String, str: s} }

// NewLong returns a new integer value.
func NewLong(n int64) *Value { return &Value{kind: Long, lng: n, dbl: float64(n)} }

// NewDouble returns a new floating-point value.
func NewDouble(f float64) *Value { return &Value{kind: Double, dbl: f, lng: truncate(f)} }

// NewBool returns a new Boolean value.
func NewBool(ok bool) *Value { return &Value{kind: Bool, ok: ok} }

// NewNull returns a new null value.
func NewNull() *Value { return &Value{kind: Null} }

// NewNumber returns a new number value parsed from text. The result is a
// Double if text contains ".", "e", or "E", otherwise a Long. The text is
// retained and used on output. NewNumber reports an error if text does not
// have the shape of a number or does not parse.
func NewNumber(text string) (*Value, error) {
	v := classify(text)
	if !v.IsNumber() {
		return nil, fmt.Errorf("invalid number %q", text)
	}
	return v, nil
}

func truncate(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	return int64(f)
}

// Kind reports the kind of v.
func (v *Value) Kind() Kind { return v.kind }

// IsObject reports whether v is an object.
func (v *Value) IsObject() bool { return v.kind == Object }

// IsArray reports whether v is an array.
func (v *Value) IsArray() bool { return v.kind == Array }

// IsContainer reports whether v is an object or an array.
func (v *Value) IsContainer() bool { return v.kind == Object || v.kind == Array }

// IsString reports whether v is a string.
func (v *Value) IsString() bool { return v.kind == String }

// IsNumber reports whether v is a number of either kind.
func (v *Value) IsNumber() bool { return v.kind == Long || v.kind == Double }

// IsBool reports whether v is a Boolean.
func (v *Value) IsBool() bool { return v.kind == Bool }

// IsNull reports whether v is null.
func (v *Value) IsNull() bool { return v.kind == Null }

// IsScalar reports whether v is a string, number, Boolean, or null.
func (v *Value) IsScalar() bool { return !v.IsContainer() }

// NumberText returns the text of a number value: the source text if v was
// parsed or constructed from text, otherwise a canonical rendering of its
// payload. It returns "" if v is not a number.
func (v *Value) NumberText() string {
	switch {
	case v.kind == Long && v.str == "":
		return strconv.FormatInt(v.lng, 10)
	case v.kind == Double && v.str == "":
		return jdom.FormatFloat(v.dbl, 64)
	case v.IsNumber():
		return v.str
	}
	return ""
}

// Span reports the location of v in the source it was parsed from. The span
// of a value not created by the parser is empty.
func (v *Value) Span() jdom.Span { return jdom.Span{Pos: v.pos, End: v.end} }

// Parent returns the container holding v, or nil if v is a root.
func (v *Value) Parent() *Value { return v.parent }

// First returns the first child of v, or nil.
func (v *Value) First() *Value { return v.child }

// Last returns the last child of v, or nil.
func (v *Value) Last() *Value { return v.last }

// Next returns the next sibling of v, or nil.
func (v *Value) Next() *Value { return v.next }

// Prev returns the previous sibling of v, or nil.
func (v *Value) Prev() *Value { return v.prev }

// Len returns the number of children of v. It is 0 for a scalar.
func (v *Value) Len() int { return v.size }
