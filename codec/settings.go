// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"cmp"

	"github.com/creachadair/jdom"
	"github.com/go-kit/log"
)

// DefaultTypeKey is the member name used for type tags when Settings.TypeKey
// is empty.
const DefaultTypeKey = "class"

// NoTypeKey as the value of Settings.TypeKey disables type tags entirely.
const NoTypeKey = "-"

// DefaultMaxDepth is the nesting limit used when Settings.MaxDepth is zero.
const DefaultMaxDepth = 10000

// Settings control the behavior of a Codec.
// A zero value is ready for use with default settings.
type Settings struct {
	// TypeKey is the name of the member that carries the type tag of an
	// object whose type differs from its declared type. If empty,
	// DefaultTypeKey is used. If NoTypeKey, no tags are written or read.
	TypeKey string

	// OutputType selects how names and strings are quoted in output.
	OutputType jdom.OutputType

	// IgnoreUnknownFields, if true, skips input members that match no field
	// of the target struct. Otherwise an unknown member is a schema error.
	IgnoreUnknownFields bool

	// IgnoreDeprecated, if true, omits fields tagged "deprecated" on output,
	// and skips them on input unless ReadDeprecated is also set.
	IgnoreDeprecated bool

	// ReadDeprecated, if true, reads fields tagged "deprecated" even when
	// IgnoreDeprecated is set.
	ReadDeprecated bool

	// EnumOrdinals, if true, writes enum values as their ordinal numbers
	// rather than their names.
	EnumOrdinals bool

	// NoElision, if true, writes every struct field. By default a field whose
	// value equals its value in a freshly constructed instance is omitted.
	NoElision bool

	// SortFields, if true, writes struct fields ordered by name rather than
	// in declaration order.
	SortFields bool

	// QuoteLongValues, if true, writes integer values as strings.
	QuoteLongValues bool

	// MaxDepth limits the nesting depth of values on input and output.
	// If zero, DefaultMaxDepth is used.
	MaxDepth int

	// Logger, if set, receives debug events for input that is skipped.
	Logger log.Logger
}

func (s Settings) typeKey() string { return cmp.Or(s.TypeKey, DefaultTypeKey) }

func (s Settings) tagsEnabled() bool { return s.TypeKey != NoTypeKey }

func (s Settings) maxDepth() int { return cmp.Or(s.MaxDepth, DefaultMaxDepth) }

func (s Settings) logger() log.Logger {
	if s.Logger == nil {
		return log.NewNopLogger()
	}
	return s.Logger
}
