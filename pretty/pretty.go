// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package pretty renders document trees as indented, human-readable text.
//
// A container whose children are all scalars is rendered on a single line
// when it fits within the column budget:
//
//	{ name: x, size: 3 }
//
// Other containers are rendered one child per line, indented by one tab per
// level of nesting. Fitting is decided speculatively: the single-line form is
// rendered, and discarded in favor of the multi-line form if it grows past
// the budget.
package pretty

import (
	"cmp"
	"io"
	"strings"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/dom"
)

// DefaultColumns is the single-line column budget used when
// Settings.SingleLineColumns is zero.
const DefaultColumns = 60

// Settings carries the settings for pretty-printing values.
// A zero value is ready for use with default settings.
type Settings struct {
	// OutputType selects how names and strings are quoted.
	OutputType jdom.OutputType

	// SingleLineColumns is the maximum length of a container rendered on a
	// single line, measured from its opening bracket. If zero, DefaultColumns
	// is used. If negative, containers are never rendered on a single line.
	SingleLineColumns int

	// WrapNumericArrays, if true, allows an array whose elements are all
	// numbers to be split across lines. By default such an array is kept on
	// a single line regardless of its length.
	WrapNumericArrays bool
}

func (s Settings) columns() int { return cmp.Or(s.SingleLineColumns, DefaultColumns) }

// String renders v as pretty-printed text with the given settings.
func String(v *dom.Value, s Settings) string {
	p := &printer{set: s, cols: s.columns()}
	p.value(v, 0)
	return string(p.buf)
}

// Format renders v as pretty-printed text to w with the given settings. The
// output is identical to that of String. Text is written to w as each line is
// settled, so only a bounded amount is buffered.
func Format(w io.Writer, v *dom.Value, s Settings) error {
	p := &printer{set: s, cols: s.columns(), w: w}
	p.value(v, 0)
	p.flush()
	return p.err
}

type printer struct {
	set  Settings
	cols int

	buf  []byte
	spec int       // number of speculative renderings in progress
	w    io.Writer // if nil, output accumulates in buf
	err  error
}

// flush writes the buffered output to the underlying writer, if there is one
// and no speculative rendering is pending.
func (p *printer) flush() {
	if p.w == nil || p.spec != 0 || len(p.buf) == 0 {
		return
	}
	if p.err == nil {
		_, p.err = p.w.Write(p.buf)
	}
	p.buf = p.buf[:0]
}

func (p *printer) value(v *dom.Value, depth int) {
	switch v.Kind() {
	case dom.Object, dom.Array:
		p.container(v, depth)
	case dom.String:
		s, _ := v.AsString()
		p.buf = p.set.OutputType.AppendValue(p.buf, s)
	case dom.Long, dom.Double:
		p.buf = append(p.buf, v.NumberText()...)
	case dom.Bool:
		ok, _ := v.AsBool()
		if ok {
			p.buf = append(p.buf, "true"...)
		} else {
			p.buf = append(p.buf, "false"...)
		}
	default:
		p.buf = append(p.buf, "null"...)
	}
}

func (p *printer) container(v *dom.Value, depth int) {
	open, close := byte('['), byte(']')
	if v.IsObject() {
		open, close = '{', '}'
	}
	if v.Len() == 0 {
		p.buf = append(p.buf, open, close)
		return
	}

	if p.cols >= 0 && isFlat(v) {
		// Numeric arrays are exempt from the budget unless wrapping is enabled.
		wrap := v.IsObject() || p.set.WrapNumericArrays || !isNumeric(v)
		start := len(p.buf)
		p.spec++
		ok := p.singleLine(v, open, close, start, wrap)
		p.spec--
		if ok {
			return
		}
		p.buf = p.buf[:start]
	}
	p.multiLine(v, open, close, depth)
}

// singleLine renders v on one line, reporting false if the rendering exceeded
// the column budget before it was complete.
func (p *printer) singleLine(v *dom.Value, open, close byte, start int, wrap bool) bool {
	p.buf = append(p.buf, open, ' ')
	for c := range v.Children() {
		if v.IsObject() {
			p.name(c.Name)
		}
		p.value(c, 0)
		if c.Next() != nil {
			p.buf = append(p.buf, ',')
		}
		p.buf = append(p.buf, ' ')
		if wrap && len(p.buf)-start > p.cols {
			return false
		}
	}
	p.buf = append(p.buf, close)
	return true
}

func (p *printer) multiLine(v *dom.Value, open, close byte, depth int) {
	comma := p.set.OutputType != jdom.Minimal
	p.buf = append(p.buf, open, '\n')
	for c := range v.Children() {
		p.indent(depth + 1)
		if v.IsObject() {
			p.name(c.Name)
		}
		p.value(c, depth+1)
		if comma && c.Next() != nil {
			p.buf = append(p.buf, ',')
		}
		p.buf = append(p.buf, '\n')
		p.flush()
	}
	p.indent(depth)
	p.buf = append(p.buf, close)
}

func (p *printer) name(name string) {
	p.buf = p.set.OutputType.AppendName(p.buf, name)
	p.buf = append(p.buf, ':', ' ')
}

func (p *printer) indent(depth int) {
	p.buf = append(p.buf, strings.Repeat("\t", depth)...)
}

// isFlat reports whether v has no children that are containers.
func isFlat(v *dom.Value) bool {
	for c := range v.Children() {
		if c.IsContainer() {
			return false
		}
	}
	return true
}

// isNumeric reports whether v has only number children.
func isNumeric(v *dom.Value) bool {
	for c := range v.Children() {
		if !c.IsNumber() {
			return false
		}
	}
	return true
}
