// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors reported by the codec.
type ErrorKind byte

// Constants defining the valid ErrorKind values.
const (
	KindFieldAccess    ErrorKind = iota + 1 // a value could not be read or stored
	KindTypeResolution                      // a type tag names no known type
	KindSchema                              // the input does not fit the target type
	KindCycle                               // a value refers to itself
	KindDepth                               // nesting exceeds the depth limit
	KindCustom                              // a custom encoding reported an error
)

var kindStr = [...]string{
	KindFieldAccess:    "field access",
	KindTypeResolution: "type resolution",
	KindSchema:         "schema",
	KindCycle:          "cycle",
	KindDepth:          "depth",
	KindCustom:         "custom",
}

func (k ErrorKind) String() string {
	if k == 0 || int(k) >= len(kindStr) {
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
	return kindStr[k]
}

// Sentinel errors for each ErrorKind, for use with errors.Is.
var (
	ErrFieldAccess    = errors.New("field access error")
	ErrTypeResolution = errors.New("type resolution error")
	ErrSchema         = errors.New("schema error")
	ErrCycle          = errors.New("cycle error")
	ErrDepth          = errors.New("depth limit exceeded")
	ErrCustom         = errors.New("custom encoding error")
)

var kindErr = [...]error{
	KindFieldAccess:    ErrFieldAccess,
	KindTypeResolution: ErrTypeResolution,
	KindSchema:         ErrSchema,
	KindCycle:          ErrCycle,
	KindDepth:          ErrDepth,
	KindCustom:         ErrCustom,
}

// Error is the concrete type of errors reported by encoding and decoding.
// The Trace records the path from the root of the value to the location of
// the error, for example ".items[3].name".
type Error struct {
	Kind  ErrorKind
	Trace string
	Err   error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Trace == "" {
		return fmt.Sprintf("codec: %v error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("codec: %v error at %s: %v", e.Kind, e.Trace, e.Err)
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel error for the kind of e.
func (e *Error) Is(target error) bool {
	return int(e.Kind) < len(kindErr) && kindErr[e.Kind] == target
}

func errorf(kind ErrorKind, msg string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(msg, args...)}
}

// traced prefixes seg to the trace of err. An error that is not an *Error is
// wrapped as a KindCustom error.
func traced(err error, seg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: KindCustom, Trace: seg, Err: err}
	}
	return &Error{Kind: e.Kind, Trace: seg + e.Trace, Err: e.Err}
}

func fieldSeg(name string) string { return "." + name }

func indexSeg(i int) string { return fmt.Sprintf("[%d]", i) }
