// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jdom_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jdom"
)

func TestWriter(t *testing.T) {
	tests := []struct {
		name   string
		ot     jdom.OutputType
		quote  bool
		render func(w *jdom.Writer)
		want   string
	}{
		{"Scalar", jdom.Standard, false, func(w *jdom.Writer) { w.Long(25) }, `25`},
		{"EmptyObject", jdom.Standard, false, func(w *jdom.Writer) { w.Object(); w.Pop() }, `{}`},
		{"EmptyArray", jdom.Standard, false, func(w *jdom.Writer) { w.Array(); w.Pop() }, `[]`},
		{"Array", jdom.Standard, false, func(w *jdom.Writer) {
			w.Array()
			w.Long(1)
			w.Double(2)
			w.String("three")
			w.Bool(true)
			w.Null()
			w.Number("6.02e23")
			w.Pop()
		}, `[1,2.0,"three",true,null,6.02e23]`},
		{"Object", jdom.Standard, false, func(w *jdom.Writer) {
			w.Object()
			w.Name("a")
			w.Long(1)
			w.Name("b")
			w.Array()
			w.Object()
			w.Pop()
			w.Pop()
			w.Name("c")
			w.String("x")
			w.Pop()
		}, `{"a":1,"b":[{}],"c":"x"}`},
		{"Scripting", jdom.Scripting, false, func(w *jdom.Writer) {
			w.Object()
			w.Name("key")
			w.String("value")
			w.Name("two words")
			w.String("v")
			w.Pop()
		}, `{key:"value","two words":"v"}`},
		{"Minimal", jdom.Minimal, false, func(w *jdom.Writer) {
			w.Object()
			w.Name("key")
			w.String("value")
			w.Name("n")
			w.String("123")
			w.Pop()
		}, `{key:value,n:"123"}`},
		{"QuoteLongs", jdom.Standard, true, func(w *jdom.Writer) {
			w.Array()
			w.Long(9007199254740993)
			w.Uint(18446744073709551615)
			w.Double(1.5)
			w.Pop()
		}, `["9007199254740993","18446744073709551615",1.5]`},
		{"Uint", jdom.Standard, false, func(w *jdom.Writer) {
			w.Uint(18446744073709551615)
		}, `18446744073709551615`},
		{"Close", jdom.Standard, false, func(w *jdom.Writer) {
			w.Object()
			w.Name("a")
			w.Array()
			w.Long(1)
			w.Close()
		}, `{"a":[1]}`},
		{"CloseDanglingName", jdom.Standard, false, func(w *jdom.Writer) {
			w.Object()
			w.Name("a")
			w.Close()
		}, `{"a":null}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var sb strings.Builder
			w := jdom.NewWriter(&sb)
			w.SetOutputType(test.ot)
			w.SetQuoteLongValues(test.quote)
			test.render(w)
			if err := w.Close(); err != nil {
				t.Fatalf("Close: unexpected error: %v", err)
			}
			if got := sb.String(); got != test.want {
				t.Errorf("Output: got %#q, want %#q", got, test.want)
			}
		})
	}
}

func TestWriter_errors(t *testing.T) {
	tests := []struct {
		name   string
		render func(w *jdom.Writer) error
	}{
		{"PopEmpty", func(w *jdom.Writer) error { return w.Pop() }},
		{"NameOutsideObject", func(w *jdom.Writer) error { return w.Name("x") }},
		{"NameInArray", func(w *jdom.Writer) error { w.Array(); return w.Name("x") }},
		{"ValueWithoutName", func(w *jdom.Writer) error { w.Object(); return w.Long(1) }},
		{"NameTwice", func(w *jdom.Writer) error { w.Object(); w.Name("a"); return w.Name("b") }},
		{"PopAfterName", func(w *jdom.Writer) error { w.Object(); w.Name("a"); return w.Pop() }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var sb strings.Builder
			w := jdom.NewWriter(&sb)
			err := test.render(w)
			if err == nil {
				t.Fatal("Got nil, want error")
			}
			// Errors are sticky.
			if got := w.Null(); got != err {
				t.Errorf("Null after error: got %v, want %v", got, err)
			}
			if got := w.Close(); got != err {
				t.Errorf("Close after error: got %v, want %v", got, err)
			}
		})
	}
}

type failWriter struct{ n int }

var errFull = errors.New("device full")

func (f *failWriter) Write(data []byte) (int, error) {
	if f.n < len(data) {
		return 0, errFull
	}
	f.n -= len(data)
	return len(data), nil
}

func TestWriter_ioError(t *testing.T) {
	w := jdom.NewWriter(&failWriter{n: 3})
	w.Array()
	w.Long(1)
	w.Long(2) // ",2" exceeds the limit
	if err := w.Close(); !errors.Is(err, errFull) {
		t.Errorf("Close: got %v, want %v", err, errFull)
	}
}
