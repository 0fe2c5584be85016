// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jdom implements the lexical layer of a lenient JSON dialect, and a
// writer for its three output styles.
//
// # Dialect
//
// The input grammar accepted by this package is a superset of JSON:
//
//   - Line comments (// ...) and block comments (/* ... */) are skipped
//     wherever whitespace is allowed.
//   - Commas between members and elements are optional, and a trailing comma
//     is permitted before a closing bracket.
//   - Object names and string values may be written without quotation marks.
//     An unquoted token runs until whitespace, one of the characters {}[],:"
//     or the start of a comment.
//
// An unquoted token is classified by its text: the words true, false, and
// null are literals; a token that begins with "-" or a digit and contains
// only the characters "0123456789+-.eE" is a number if it parses as one; and
// anything else is a string.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for the dialect. Construct a
// scanner from a buffer and call its Next method to iterate over the tokens:
//
//	s := jdom.NewScanner(mem.B(input))
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// has concrete type *jdom.ParseError, which records the line and column of
// the problem along with a bounded window of the surrounding input.
//
// # Writing
//
// The Writer type emits values as text in one of the output styles described
// by OutputType. The tree in package dom and the codec in package codec both
// render through a Writer.
package jdom
