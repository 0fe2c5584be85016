// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package codec converts between Go values and JSON text using reflection.
//
// Struct values are written as objects whose members are the exported fields
// of the struct. Fields whose values equal those of a freshly constructed
// instance are omitted, so a type's defaults (see Defaulter and
// Registry.SetFactory) need not appear in the output. When the dynamic type
// of a value differs from its declared type, for example a struct stored in
// an interface field, the object records the type in a tag member:
//
//	{class: example.com/shapes.Circle, radius: 2}
//
// Values that are not written as objects carry their tag in a wrapper:
//
//	{class: int, value: 5}
//
// Types control their own encoding by implementing Marshaler and
// Unmarshaler, or by registering a Serializer. Types implementing
// json.Marshaler and json.Unmarshaler are encoded with those methods.
package codec

import (
	"bytes"
	"io"
	"reflect"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/dom"
	"github.com/creachadair/jdom/pretty"
	"github.com/creachadair/mds/mapset"
)

// A Codec encodes and decodes Go values. A Codec is safe for concurrent use
// by multiple goroutines.
type Codec struct {
	reg *Registry
	set Settings
}

// New constructs a Codec using the given registry and settings. If r == nil,
// a new empty Registry is used.
func New(r *Registry, s Settings) *Codec {
	if r == nil {
		r = NewRegistry()
	}
	return &Codec{reg: r, set: s}
}

// Registry returns the type registry used by c.
func (c *Codec) Registry() *Registry { return c.reg }

// Settings returns the settings used by c.
func (c *Codec) Settings() Settings { return c.set }

func (c *Codec) encoder(w io.Writer) *Encoder {
	jw := jdom.NewWriter(w)
	jw.SetOutputType(c.set.OutputType)
	jw.SetQuoteLongValues(c.set.QuoteLongValues)
	return &Encoder{c: c, w: jw, log: c.set.logger(), seen: make(mapset.Set[visit])}
}

func (c *Codec) decoder() *Decoder { return &Decoder{c: c, log: c.set.logger()} }

// Marshal encodes v as JSON text. The declared type of v is its own type, so
// the outermost value carries no type tag.
func (c *Codec) Marshal(v any) (string, error) {
	return c.MarshalType(v, reflect.TypeOf(v), nil)
}

// MarshalType encodes v as JSON text, treating declared as the declared type
// of v and elem as the declared element type of a container.
func (c *Codec) MarshalType(v any, declared, elem reflect.Type) (string, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf, v, declared, elem); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write encodes v as JSON text to w, with the declared types as for
// MarshalType.
func (c *Codec) Write(w io.Writer, v any, declared, elem reflect.Type) error {
	e := c.encoder(w)
	if err := e.write(reflect.ValueOf(v), declared, elem); err != nil {
		return err
	}
	return e.w.Close()
}

// Tree encodes v and returns the resulting document tree.
func (c *Codec) Tree(v any) (*dom.Value, error) {
	text, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	return dom.ParseString(text)
}

// PrettyPrint encodes v and formats the result with the given settings.
func (c *Codec) PrettyPrint(v any, s pretty.Settings) (string, error) {
	root, err := c.Tree(v)
	if err != nil {
		return "", err
	}
	return pretty.String(root, s), nil
}

// Unmarshal parses text and decodes it into the value pointed to by ptr.
// Fields of a struct that are absent from the input take the values of a
// freshly constructed instance.
func (c *Codec) Unmarshal(text string, ptr any) error {
	root, err := dom.ParseString(text)
	if err != nil {
		return err
	}
	return c.ReadInto(root, ptr)
}

// ReadInto decodes node into the value pointed to by ptr.
func (c *Codec) ReadInto(node *dom.Value, ptr any) error {
	return c.decoder().ReadInto(node, ptr)
}

// Read decodes node as a value of type t, whose declared element type is
// elem. If node carries a type tag, the tagged type must be assignable to t.
func (c *Codec) Read(t, elem reflect.Type, node *dom.Value) (any, error) {
	return c.decoder().ReadValue(node, t, elem)
}

// FromJSON parses text and decodes it as a value of type T.
func FromJSON[T any](c *Codec, text string) (T, error) {
	var out T
	err := c.Unmarshal(text, &out)
	return out, err
}
