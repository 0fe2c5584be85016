// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"fmt"

	"go4.org/mem"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

// lineColAt computes the line and column of offset off in src by counting
// the newlines that precede it.
func lineColAt(src mem.RO, off int) LineCol {
	off = min(off, src.Len())
	lc := LineCol{Line: 1}
	start := 0
	for {
		i := mem.IndexByte(src.Slice(start, off), '\n')
		if i < 0 {
			break
		}
		lc.Line++
		start += i + 1
	}
	lc.Column = off - start
	return lc
}

func (loc Location) String() string {
	if loc.First.Line == loc.Last.Line {
		return fmt.Sprintf("%d:%d-%d", loc.First.Line, loc.First.Column, loc.Last.Column)
	}
	return fmt.Sprintf("%s-%s", loc.First, loc.Last)
}
