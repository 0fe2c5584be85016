// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"fmt"

	"go4.org/mem"
)

// nearBytes is the maximum number of bytes of context captured on either
// side of the location of a parse error.
const nearBytes = 32

// ParseError is the concrete type of errors reported for malformed input.
// A parse error is fatal to the parse that reported it.
type ParseError struct {
	Location LineCol // where the error occurred
	Offset   int     // byte offset of the error, 0-based
	Near     string  // up to nearBytes of input on either side of Offset
	Message  string  // a description of the problem
}

// Error satisfies the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("at %s: %s near %q", e.Location, e.Message, e.Near)
}

func newParseError(src mem.RO, off int, msg string, args ...any) *ParseError {
	off = min(max(off, 0), src.Len())
	lo, hi := max(off-nearBytes, 0), min(off+nearBytes, src.Len())
	return &ParseError{
		Location: lineColAt(src, off),
		Offset:   off,
		Near:     src.Slice(lo, hi).StringCopy(),
		Message:  fmt.Sprintf(msg, args...),
	}
}
