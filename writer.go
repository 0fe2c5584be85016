// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"errors"
	"io"
	"strconv"
)

// A Writer emits a sequence of values as compact text. Separators between
// members and elements are added automatically.
//
// The first error reported by a method of the Writer is sticky: all later
// calls report the same error without writing anything.
type Writer struct {
	w          io.Writer
	ot         OutputType
	quoteLongs bool
	buf        []byte

	stk   []wframe
	named bool // a member name has been written without its value
	err   error
}

type wframe struct {
	array   bool // whether the container is an array
	started bool // whether any member or element has been written
}

// NewWriter constructs a Writer that writes Standard output to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// SetOutputType sets the output style for subsequent writes.
func (w *Writer) SetOutputType(ot OutputType) { w.ot = ot }

// SetQuoteLongValues sets whether integer values written by Long are quoted
// as strings. This is useful for consumers that cannot represent all 64-bit
// integers exactly.
func (w *Writer) SetQuoteLongValues(quote bool) { w.quoteLongs = quote }

// OutputType reports the current output style of w.
func (w *Writer) OutputType() OutputType { return w.ot }

// Err reports the sticky error of w, if any.
func (w *Writer) Err() error { return w.err }

// Depth reports the number of containers currently open.
func (w *Writer) Depth() int { return len(w.stk) }

// Object begins a new object. It must be followed eventually by a matching
// call to Pop.
func (w *Writer) Object() error { return w.open('{', false) }

// Array begins a new array. It must be followed eventually by a matching
// call to Pop.
func (w *Writer) Array() error { return w.open('[', true) }

// Pop ends the innermost open object or array.
func (w *Writer) Pop() error {
	if w.err != nil {
		return w.err
	}
	if len(w.stk) == 0 {
		return w.fail(errors.New("pop without an open object or array"))
	} else if w.named {
		return w.fail(errors.New("member name without a value"))
	}
	top := w.stk[len(w.stk)-1]
	w.stk = w.stk[:len(w.stk)-1]
	if top.array {
		return w.emit(']')
	}
	return w.emit('}')
}

// Name writes the name of an object member. The next value written is the
// value of that member.
func (w *Writer) Name(name string) error {
	if w.err != nil {
		return w.err
	}
	if len(w.stk) == 0 || w.stk[len(w.stk)-1].array {
		return w.fail(errors.New("member name outside an object"))
	} else if w.named {
		return w.fail(errors.New("member name without a value"))
	}
	top := &w.stk[len(w.stk)-1]
	w.buf = w.buf[:0]
	if top.started {
		w.buf = append(w.buf, ',')
	}
	top.started = true
	w.buf = w.ot.AppendName(w.buf, name)
	w.buf = append(w.buf, ':')
	w.named = true
	return w.flush()
}

// String writes a string value.
func (w *Writer) String(s string) error {
	if err := w.begin(); err != nil {
		return err
	}
	w.buf = w.ot.AppendValue(w.buf, s)
	return w.flush()
}

// Long writes an integer value.
func (w *Writer) Long(n int64) error {
	if err := w.begin(); err != nil {
		return err
	}
	if w.quoteLongs {
		w.buf = append(w.buf, '"')
		w.buf = strconv.AppendInt(w.buf, n, 10)
		w.buf = append(w.buf, '"')
	} else {
		w.buf = strconv.AppendInt(w.buf, n, 10)
	}
	return w.flush()
}

// Uint writes an unsigned integer value. Like Long, it is quoted when long
// values are quoted.
func (w *Writer) Uint(n uint64) error {
	if err := w.begin(); err != nil {
		return err
	}
	if w.quoteLongs {
		w.buf = append(w.buf, '"')
		w.buf = strconv.AppendUint(w.buf, n, 10)
		w.buf = append(w.buf, '"')
	} else {
		w.buf = strconv.AppendUint(w.buf, n, 10)
	}
	return w.flush()
}

// Double writes a floating-point value. See FormatFloat.
func (w *Writer) Double(f float64) error { return w.Number(FormatFloat(f, 64)) }

// Number writes the text of a number value verbatim. The caller is
// responsible for ensuring text is a valid number.
func (w *Writer) Number(text string) error {
	if err := w.begin(); err != nil {
		return err
	}
	w.buf = append(w.buf, text...)
	return w.flush()
}

// Bool writes a Boolean value.
func (w *Writer) Bool(ok bool) error {
	if err := w.begin(); err != nil {
		return err
	}
	w.buf = strconv.AppendBool(w.buf, ok)
	return w.flush()
}

// Null writes a null value.
func (w *Writer) Null() error {
	if err := w.begin(); err != nil {
		return err
	}
	w.buf = append(w.buf, "null"...)
	return w.flush()
}

// Close ends all open objects and arrays, and reports the sticky error of w,
// if any. A member name still awaiting its value is given a null value.
func (w *Writer) Close() error {
	if w.named {
		w.Null()
	}
	for len(w.stk) != 0 && w.err == nil {
		w.Pop()
	}
	return w.err
}

// begin prepares to write a value, resetting the buffer and adding any
// separator required.
func (w *Writer) begin() error {
	if w.err != nil {
		return w.err
	}
	w.buf = w.buf[:0]
	if len(w.stk) == 0 {
		return nil
	}
	top := &w.stk[len(w.stk)-1]
	if !top.array {
		if !w.named {
			return w.fail(errors.New("object member without a name"))
		}
		w.named = false
		return nil
	}
	if top.started {
		w.buf = append(w.buf, ',')
	}
	top.started = true
	return nil
}

func (w *Writer) open(ch byte, array bool) error {
	if err := w.begin(); err != nil {
		return err
	}
	w.stk = append(w.stk, wframe{array: array})
	w.buf = append(w.buf, ch)
	return w.flush()
}

func (w *Writer) emit(ch byte) error {
	w.buf = append(w.buf[:0], ch)
	return w.flush()
}

func (w *Writer) flush() error {
	if _, err := w.w.Write(w.buf); err != nil {
		return w.fail(err)
	}
	return nil
}

func (w *Writer) fail(err error) error {
	w.err = err
	return err
}
