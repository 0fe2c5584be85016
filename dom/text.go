// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"io"
	"strings"

	"github.com/creachadair/jdom"
)

// Emit writes v as a value to w. Member names are written for the children
// of an object, and ignored for the children of an array.
func (v *Value) Emit(w *jdom.Writer) error {
	switch v.kind {
	case Object:
		w.Object()
		for c := range v.Children() {
			w.Name(c.Name)
			if err := c.Emit(w); err != nil {
				return err
			}
		}
		return w.Pop()
	case Array:
		w.Array()
		for c := range v.Children() {
			if err := c.Emit(w); err != nil {
				return err
			}
		}
		return w.Pop()
	case String:
		return w.String(v.str)
	case Long:
		if v.str == "" {
			return w.Long(v.lng)
		}
		return w.Number(v.str)
	case Double:
		return w.Number(v.NumberText())
	case Bool:
		return w.Bool(v.ok)
	default:
		return w.Null()
	}
}

// WriteText writes v to w as compact text in the given output style.
func (v *Value) WriteText(w io.Writer, ot jdom.OutputType) error {
	jw := jdom.NewWriter(w)
	jw.SetOutputType(ot)
	if err := v.Emit(jw); err != nil {
		return err
	}
	return jw.Close()
}

// Text returns v as compact text in the given output style.
func (v *Value) Text(ot jdom.OutputType) string {
	var sb strings.Builder
	v.WriteText(&sb, ot) // writes to a strings.Builder do not fail
	return sb.String()
}

// JSON returns v as compact standard JSON text.
func (v *Value) JSON() string { return v.Text(jdom.Standard) }

// String returns v as compact standard JSON text. It implements fmt.Stringer.
func (v *Value) String() string { return v.JSON() }
