// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"cmp"
	"encoding"
	"reflect"
	"slices"
	"strconv"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/dom"
	"github.com/creachadair/mds/mapset"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
)

// An Encoder writes Go values as JSON text. Marshaler and Serializer
// implementations receive an Encoder to write their contents.
type Encoder struct {
	c     *Codec
	w     *jdom.Writer
	log   log.Logger
	seen  mapset.Set[visit]
	depth int
}

// visit identifies a reference value on the current encoding path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// Writer returns the underlying text writer.
func (e *Encoder) Writer() *jdom.Writer { return e.w }

// Registry returns the type registry in use by e.
func (e *Encoder) Registry() *Registry { return e.c.reg }

// WriteValue writes v, whose declared type is declared and whose declared
// element type (for containers) is elem. Either may be nil if unknown. A
// type tag is written if the declared type differs from the type of v.
func (e *Encoder) WriteValue(v any, declared, elem reflect.Type) error {
	return e.write(reflect.ValueOf(v), declared, elem)
}

// WriteField writes a member of the current object named name with value v.
// The declared type of the member is the type of v.
func (e *Encoder) WriteField(name string, v any) error {
	return e.WriteFieldType(name, v, reflect.TypeOf(v), nil)
}

// WriteFieldType writes a member of the current object named name with value
// v, whose declared type and element type are declared and elem.
func (e *Encoder) WriteFieldType(name string, v any, declared, elem reflect.Type) error {
	if err := e.w.Name(name); err != nil {
		return err
	}
	return traced(e.write(reflect.ValueOf(v), declared, elem), fieldSeg(name))
}

// WriteFields writes the fields of v, which must be a struct or a pointer to
// a struct, as members of the current object. It is intended for use by
// MarshalJDOM methods that add members to the default encoding.
func (e *Encoder) WriteFields(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errorf(KindFieldAccess, "cannot write fields of %T", v)
	}
	return e.fields(rv)
}

// WriteObjectStart opens an object for a value of type actual. If actual
// differs from the declared type, the type tag for actual is written as the
// first member.
func (e *Encoder) WriteObjectStart(actual, declared reflect.Type) error {
	var tag reflect.Type
	if actual != declared {
		tag = actual
	}
	return e.objectStart(tag)
}

// WriteObjectEnd closes the object opened by WriteObjectStart.
func (e *Encoder) WriteObjectEnd() error { return e.w.Pop() }

// write encodes v with the given declared type. A nil declared type is never
// equal to the type of v.
func (e *Encoder) write(v reflect.Value, declared, elem reflect.Type) error {
	if v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return e.w.Null()
	}
	var tag reflect.Type
	if declared != v.Type() {
		tag = v.Type()
	}
	return e.encode(v, tag, elem)
}

// encode writes v. If tag != nil, the output records that v has type tag.
func (e *Encoder) encode(v reflect.Value, tag, elem reflect.Type) error {
	e.depth++
	defer func() { e.depth-- }()
	if limit := e.c.set.maxDepth(); e.depth > limit {
		return errorf(KindDepth, "value nesting exceeds %d levels", limit)
	}

	t := v.Type()
	switch t.Kind() {
	case reflect.Interface:
		return e.write(v, t, elem)
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return e.w.Null()
		}
		if t.Kind() != reflect.Slice || v.Len() != 0 {
			key := visit{ptr: v.Pointer(), typ: t, len: lenOf(v)}
			if e.seen.Has(key) {
				return errorf(KindCycle, "value of type %v refers to itself", t)
			}
			e.seen.Add(key)
			defer e.seen.Remove(key)
		}
	}

	names := e.c.reg.EnumNames(t)
	if isScalar(t.Kind()) && names == nil {
		return e.wrapped(tag, func() error { return e.scalar(v) })
	}

	if m, ok := asIface[Marshaler](v); ok {
		if err := e.objectStart(tag); err != nil {
			return err
		}
		if err := m.MarshalJDOM(e); err != nil {
			return traced(err, "")
		}
		return e.w.Pop()
	}
	if s := e.c.reg.Serializer(t); s != nil {
		declared := t
		if tag != nil {
			declared = nil
		}
		return traced(s.WriteJDOM(e, v.Interface(), declared), "")
	}
	if m, ok := asIface[json.Marshaler](v); ok {
		return e.interop(m, tag)
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return e.wrapped(tag, func() error { return e.array(v, elem) })
	case reflect.Map:
		return e.wrapped(tag, func() error { return e.object(v, elem) })
	case reflect.Pointer:
		return e.encode(v.Elem(), tag, elem)
	case reflect.Struct:
		if m, ok := asIface[Mapping](v); ok {
			return e.wrapped(tag, func() error { return e.mapping(m, elem) })
		}
		if err := e.objectStart(tag); err != nil {
			return err
		}
		if err := e.fields(v); err != nil {
			return err
		}
		return e.w.Pop()
	}
	if names != nil {
		return e.wrapped(tag, func() error { return e.enum(v, names) })
	}
	return errorf(KindFieldAccess, "cannot encode a value of type %v", t)
}

// objectStart opens an object, with a type tag if tag != nil.
func (e *Encoder) objectStart(tag reflect.Type) error {
	if err := e.w.Object(); err != nil {
		return err
	}
	if tag == nil || !e.c.set.tagsEnabled() {
		return nil
	}
	e.w.Name(e.c.set.typeKey())
	return e.w.String(e.c.reg.Tag(tag))
}

// wrapped calls f to write a value. If tag != nil, the value is written as
// the "value" member of an object carrying the tag.
func (e *Encoder) wrapped(tag reflect.Type, f func() error) error {
	if tag == nil || !e.c.set.tagsEnabled() {
		return f()
	}
	if err := e.objectStart(tag); err != nil {
		return err
	}
	e.w.Name("value")
	if err := f(); err != nil {
		return err
	}
	return e.w.Pop()
}

func (e *Encoder) scalar(v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		return e.w.String(v.String())
	case reflect.Bool:
		return e.w.Bool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.w.Long(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.w.Uint(v.Uint())
	case reflect.Float32:
		return e.w.Number(jdom.FormatFloat(v.Float(), 32))
	default:
		return e.w.Double(v.Float())
	}
}

func (e *Encoder) enum(v reflect.Value, names []string) error {
	var ord int64
	if v.CanInt() {
		ord = v.Int()
	} else {
		ord = int64(v.Uint())
	}
	if e.c.set.EnumOrdinals {
		return e.w.Long(ord)
	} else if ord < 0 || ord >= int64(len(names)) {
		return errorf(KindFieldAccess, "no name for %v value %d", v.Type(), ord)
	}
	return e.w.String(names[ord])
}

func (e *Encoder) array(v reflect.Value, elem reflect.Type) error {
	if err := e.w.Array(); err != nil {
		return err
	}
	declElem := cmp.Or(elem, v.Type().Elem())
	for i := range v.Len() {
		if err := e.write(v.Index(i), declElem, nil); err != nil {
			return traced(err, indexSeg(i))
		}
	}
	return e.w.Pop()
}

func (e *Encoder) object(v reflect.Value, elem reflect.Type) error {
	type entry struct {
		key string
		val reflect.Value
	}
	var entries []entry
	for it := v.MapRange(); it.Next(); {
		key, err := keyString(it.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{key, it.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.key, b.key) })

	if err := e.w.Object(); err != nil {
		return err
	}
	declElem := cmp.Or(elem, v.Type().Elem())
	for _, ent := range entries {
		e.w.Name(ent.key)
		if err := e.write(ent.val, declElem, nil); err != nil {
			return traced(err, fieldSeg(ent.key))
		}
	}
	return e.w.Pop()
}

func (e *Encoder) mapping(m Mapping, elem reflect.Type) error {
	if err := e.w.Object(); err != nil {
		return err
	}
	declElem := cmp.Or(elem, m.EntryType())
	var err error
	m.Range(func(key string, val any) bool {
		e.w.Name(key)
		err = traced(e.write(reflect.ValueOf(val), declElem, nil), fieldSeg(key))
		return err == nil
	})
	if err != nil {
		return err
	}
	return e.w.Pop()
}

// fields writes the fields of struct v as members of the current object,
// omitting those whose values match a fresh instance of the type.
func (e *Encoder) fields(v reflect.Value) error {
	t := v.Type()
	fields := e.c.reg.Fields(t)
	if e.c.set.SortFields {
		fields = slices.SortedFunc(slices.Values(fields), func(a, b *FieldMetadata) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}
	var defaults []reflect.Value
	if !e.c.set.NoElision {
		defaults = e.c.reg.defaultsOf(t)
	}
	for _, f := range fields {
		if f.Deprecated && e.c.set.IgnoreDeprecated {
			level.Debug(e.log).Log("msg", "skipping deprecated field", "type", t, "field", f.Name)
			continue
		}
		fv, ok := f.Value(v)
		if !ok {
			continue
		}
		if defaults != nil && defaults[f.pos].IsValid() && sameValue(fv, defaults[f.pos]) {
			continue
		}
		e.w.Name(f.Name)
		if err := e.write(fv, f.Type, f.ElemType); err != nil {
			return traced(err, fieldSeg(f.Name))
		}
	}
	return nil
}

// interop writes the JSON encoding of m produced by its MarshalJSON method.
func (e *Encoder) interop(m json.Marshaler, tag reflect.Type) error {
	data, err := json.Marshal(m)
	if err != nil {
		return &Error{Kind: KindCustom, Err: err}
	}
	node, err := dom.ParseBytes(data)
	if err != nil {
		return &Error{Kind: KindCustom, Err: err}
	}
	return e.wrapped(tag, func() error { return node.Emit(e.w) })
}

// sameValue reports whether a and b are deeply equal, comparing the elements
// of slices and arrays individually so that nil and empty slices match.
func sameValue(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := range a.Len() {
			if !sameValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

// asIface reports whether v or a pointer to v implements T, and if so
// returns v as a T. A value that is not addressable is copied.
func asIface[T any](v reflect.Value) (T, bool) {
	it := reflect.TypeFor[T]()
	if v.Type().Implements(it) {
		return v.Interface().(T), true
	} else if v.Kind() != reflect.Pointer && reflect.PointerTo(v.Type()).Implements(it) {
		if v.CanAddr() {
			return v.Addr().Interface().(T), true
		}
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p.Interface().(T), true
	}
	var zero T
	return zero, false
}

// keyString returns the object member name for map key k.
func keyString(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := asIface[encoding.TextMarshaler](k); ok {
		text, err := tm.MarshalText()
		if err != nil {
			return "", &Error{Kind: KindCustom, Err: err}
		}
		return string(text), nil
	}
	switch {
	case k.CanInt():
		return strconv.FormatInt(k.Int(), 10), nil
	case k.CanUint():
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", errorf(KindFieldAccess, "unsupported map key type %v", k.Type())
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func lenOf(v reflect.Value) int {
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 0
}
