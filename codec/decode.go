// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/creachadair/jdom/dom"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
)

// A Decoder reads Go values from a dom.Value tree. Unmarshaler and
// Serializer implementations receive a Decoder to read their contents.
type Decoder struct {
	c     *Codec
	log   log.Logger
	depth int
}

// Registry returns the type registry in use by d.
func (d *Decoder) Registry() *Registry { return d.c.reg }

// ReadValue decodes node as a value of type t, whose declared element type
// (for containers) is elem. If node carries a type tag, the tagged type must
// be assignable to t.
func (d *Decoder) ReadValue(node *dom.Value, t, elem reflect.Type) (any, error) {
	dst := reflect.New(t).Elem()
	if err := d.decode(node, dst, elem); err != nil {
		return nil, err
	}
	return dst.Interface(), nil
}

// ReadInto decodes node into the value pointed to by ptr.
func (d *Decoder) ReadInto(node *dom.Value, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errorf(KindFieldAccess, "target must be a non-nil pointer, got %T", ptr)
	}
	return d.decode(node, rv.Elem(), nil)
}

// ReadField decodes the member of the object node called name into the value
// pointed to by ptr. If node has no such member, ptr is not modified.
func (d *Decoder) ReadField(node *dom.Value, name string, ptr any) error {
	c := node.Get(name)
	if c == nil {
		return nil
	}
	return traced(d.ReadInto(c, ptr), fieldSeg(name))
}

// ReadFields decodes the members of the object node into the fields of the
// struct pointed to by ptr. Fields with no corresponding member are not
// modified. It is intended for use by UnmarshalJDOM methods.
func (d *Decoder) ReadFields(node *dom.Value, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errorf(KindFieldAccess, "target must be a pointer to a struct, got %T", ptr)
	}
	return d.fields(node, rv.Elem())
}

// decode decodes node into dst, which must be settable. A type tag on node
// takes precedence over the type of dst.
func (d *Decoder) decode(node *dom.Value, dst reflect.Value, elem reflect.Type) error {
	d.depth++
	defer func() { d.depth-- }()
	if limit := d.c.set.maxDepth(); d.depth > limit {
		return errorf(KindDepth, "input nesting exceeds %d levels", limit)
	}
	if node != nil && node.IsObject() && d.c.set.tagsEnabled() {
		if tag := d.tagOf(node); tag != nil {
			if done, err := d.tagged(node, tag, dst, elem); done || err != nil {
				return err
			}
		}
	}
	return d.decodeAs(node, dst, elem)
}

// tagOf returns the type tag member of the object node, or nil.
func (d *Decoder) tagOf(node *dom.Value) *dom.Value {
	key := d.c.set.typeKey()
	for c := range node.Children() {
		if c.Name == key && c.IsString() {
			return c
		}
	}
	return nil
}

// tagged decodes an object carrying a type tag into dst. It reports false if
// the object should instead be decoded as an ordinary object.
func (d *Decoder) tagged(node, tag *dom.Value, dst reflect.Value, elem reflect.Type) (bool, error) {
	name, _ := tag.AsString()
	t := dst.Type()
	rt, err := d.c.reg.TypeForTag(name)
	if err != nil {
		if d.plain(t, tag.Name) {
			return false, nil
		}
		return true, traced(err, fieldSeg(tag.Name))
	}

	payload := node
	if d.c.reg.wrapped(rt) {
		payload = nil
		for c := range node.Children() {
			if c.Name == "value" {
				payload = c
				break
			}
		}
	}

	if payload == nil && d.plain(t, tag.Name) {
		return false, nil
	}

	switch {
	case rt == t:
		return true, d.decodeAs(payload, dst, elem)

	case t.Kind() == reflect.Interface:
		if !rt.Implements(t) {
			return true, errorf(KindTypeResolution, "type %v does not implement %v", rt, t)
		}
		tmp := d.c.reg.New(rt)
		if err := d.decodeAs(payload, tmp, nil); err != nil {
			return true, err
		}
		dst.Set(tmp)
		return true, nil

	case t.Kind() == reflect.Pointer && t.Elem() == rt:
		if dst.IsNil() {
			dst.Set(reflect.New(rt))
		}
		return true, d.decodeAs(payload, dst.Elem(), elem)

	case rt.Kind() == reflect.Pointer && rt.Elem() == t:
		return true, d.decodeAs(payload, dst, elem)
	}
	if d.plain(t, tag.Name) {
		return false, nil
	}
	return true, errorf(KindTypeResolution, "type %q cannot be stored in %v", name, t)
}

// plain reports whether an object whose type key names a type that cannot be
// stored in t may instead be an ordinary value of type t: a map, or a struct
// with a field of the same name as the key.
func (d *Decoder) plain(t reflect.Type, key string) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map:
		return true
	case reflect.Struct:
		return d.c.reg.field(t, key) != nil
	}
	return false
}

// decodeAs decodes node into dst according to the type of dst, ignoring any
// type tag on node.
func (d *Decoder) decodeAs(node *dom.Value, dst reflect.Value, elem reflect.Type) error {
	t := dst.Type()
	if node == nil || node.IsNull() {
		dst.SetZero()
		return nil
	}
	if t.Kind() == reflect.Interface {
		return d.natural(node, dst)
	}

	names := d.c.reg.EnumNames(t)
	if isScalar(t.Kind()) && names == nil {
		return d.scalar(node, dst)
	}

	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(unmarshalerType) {
		if t.Kind() == reflect.Struct {
			dst.Set(d.c.reg.New(t))
		}
		return traced(dst.Addr().Interface().(Unmarshaler).UnmarshalJDOM(d, node), "")
	}
	if s := d.c.reg.Serializer(t); s != nil {
		out, err := s.ReadJDOM(d, node, t)
		if err != nil {
			return traced(err, "")
		}
		return store(dst, out)
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(jsonUnmarshalerType) {
		if err := json.Unmarshal([]byte(node.JSON()), dst.Addr().Interface()); err != nil {
			return &Error{Kind: KindCustom, Err: err}
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(d.c.reg.New(t))
		}
		return d.decode(node, dst.Elem(), elem)
	case reflect.Slice:
		return d.slice(node, dst, elem)
	case reflect.Array:
		return d.array(node, dst, elem)
	case reflect.Map:
		return d.object(node, dst, elem)
	case reflect.Struct:
		dst.Set(d.c.reg.New(t))
		if implements(t, mappingType) {
			return d.mapping(node, dst.Addr().Interface().(Mapping), elem)
		}
		return d.fields(node, dst)
	}
	if names != nil {
		return d.enum(node, dst, names)
	}
	return errorf(KindFieldAccess, "cannot decode into a value of type %v", t)
}

// store sets dst to out, which must have the type of dst or be a pointer to
// a value of that type.
func store(dst reflect.Value, out any) error {
	ov := reflect.ValueOf(out)
	switch {
	case !ov.IsValid():
		dst.SetZero()
	case ov.Type().AssignableTo(dst.Type()):
		dst.Set(ov)
	case ov.Kind() == reflect.Pointer && ov.Type().Elem() == dst.Type() && !ov.IsNil():
		dst.Set(ov.Elem())
	default:
		return errorf(KindFieldAccess, "value of type %T cannot be stored in %v", out, dst.Type())
	}
	return nil
}

// natural decodes node into the interface value dst using the natural Go
// type for its kind.
func (d *Decoder) natural(node *dom.Value, dst reflect.Value) error {
	var out any
	switch node.Kind() {
	case dom.Object:
		m := make(map[string]any, node.Len())
		for c := range node.Children() {
			var v any
			if err := d.decode(c, reflect.ValueOf(&v).Elem(), nil); err != nil {
				return traced(err, fieldSeg(c.Name))
			}
			m[c.Name] = v
		}
		out = m
	case dom.Array:
		vs := make([]any, node.Len())
		i := 0
		for c := range node.Children() {
			if err := d.decode(c, reflect.ValueOf(&vs[i]).Elem(), nil); err != nil {
				return traced(err, indexSeg(i))
			}
			i++
		}
		out = vs
	case dom.Long:
		out, _ = node.AsLong()
	case dom.Double:
		out, _ = node.AsDouble()
	case dom.Bool:
		out, _ = node.AsBool()
	default:
		out, _ = node.AsString()
	}
	ov := reflect.ValueOf(out)
	if !ov.Type().AssignableTo(dst.Type()) {
		return errorf(KindFieldAccess, "cannot store %v in %v without a type tag", node.Kind(), dst.Type())
	}
	dst.Set(ov)
	return nil
}

func (d *Decoder) scalar(node *dom.Value, dst reflect.Value) error {
	t := dst.Type()
	if node.IsContainer() {
		return errorf(KindFieldAccess, "cannot store %v in %v", node.Kind(), t)
	}
	fail := func(err error) error {
		return &Error{Kind: KindFieldAccess, Err: fmt.Errorf("cannot store %v in %v: %w", node.Kind(), t, err)}
	}
	switch t.Kind() {
	case reflect.String:
		s, err := node.AsString()
		if err != nil {
			return fail(err)
		}
		dst.SetString(s)

	case reflect.Bool:
		b, err := node.AsBool()
		if err != nil {
			return fail(err)
		}
		dst.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := node.AsLong()
		if err != nil {
			return fail(err)
		} else if dst.OverflowInt(n) {
			return fail(fmt.Errorf("value %d out of range", n))
		}
		dst.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var u uint64
		if node.IsString() {
			s, _ := node.AsString()
			v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return fail(err)
			}
			u = v
		} else {
			n, err := node.AsLong()
			if err != nil {
				return fail(err)
			} else if n < 0 {
				return fail(fmt.Errorf("value %d out of range", n))
			}
			u = uint64(n)
		}
		if dst.OverflowUint(u) {
			return fail(fmt.Errorf("value %d out of range", u))
		}
		dst.SetUint(u)

	default:
		f, err := node.AsDouble()
		if err != nil {
			return fail(err)
		} else if dst.OverflowFloat(f) {
			return fail(fmt.Errorf("value %g out of range", f))
		}
		dst.SetFloat(f)
	}
	return nil
}

func (d *Decoder) enum(node *dom.Value, dst reflect.Value, names []string) error {
	t := dst.Type()
	set := func(ord int64) error {
		if ord < 0 || ord >= int64(len(names)) {
			return errorf(KindFieldAccess, "ordinal %d out of range for %v", ord, t)
		}
		if dst.CanInt() {
			dst.SetInt(ord)
		} else {
			dst.SetUint(uint64(ord))
		}
		return nil
	}
	switch {
	case node.IsString():
		s, _ := node.AsString()
		for i, name := range names {
			if name == s {
				return set(int64(i))
			}
		}
		for i, name := range names {
			if strings.EqualFold(name, s) {
				return set(int64(i))
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return set(n)
		}
		return errorf(KindFieldAccess, "unknown %v value %q", t, s)
	case node.IsNumber():
		n, _ := node.AsLong()
		return set(n)
	}
	return errorf(KindFieldAccess, "cannot store %v in %v", node.Kind(), t)
}

// element decodes node into dst, an element of a container whose declared
// element type is elem. When dst is an interface and the node carries no
// type tag, elem supplies the concrete type.
func (d *Decoder) element(node *dom.Value, dst reflect.Value, elem reflect.Type) error {
	if elem != nil && elem != dst.Type() && dst.Kind() == reflect.Interface &&
		elem.Kind() != reflect.Interface && elem.AssignableTo(dst.Type()) &&
		!(node.IsObject() && d.c.set.tagsEnabled() && d.tagOf(node) != nil) {
		tmp := d.c.reg.New(elem)
		if err := d.decode(node, tmp, nil); err != nil {
			return err
		}
		dst.Set(tmp)
		return nil
	}
	return d.decode(node, dst, nil)
}

func (d *Decoder) slice(node *dom.Value, dst reflect.Value, elem reflect.Type) error {
	t := dst.Type()
	if !node.IsArray() {
		return errorf(KindSchema, "expected array for %v, got %v", t, node.Kind())
	}
	out := reflect.MakeSlice(t, node.Len(), node.Len())
	i := 0
	for c := range node.Children() {
		if err := d.element(c, out.Index(i), elem); err != nil {
			return traced(err, indexSeg(i))
		}
		i++
	}
	dst.Set(out)
	return nil
}

func (d *Decoder) array(node *dom.Value, dst reflect.Value, elem reflect.Type) error {
	t := dst.Type()
	if !node.IsArray() {
		return errorf(KindSchema, "expected array for %v, got %v", t, node.Kind())
	} else if node.Len() > t.Len() {
		return errorf(KindSchema, "%d elements do not fit in %v", node.Len(), t)
	}
	dst.SetZero()
	i := 0
	for c := range node.Children() {
		if err := d.element(c, dst.Index(i), elem); err != nil {
			return traced(err, indexSeg(i))
		}
		i++
	}
	return nil
}

func (d *Decoder) object(node *dom.Value, dst reflect.Value, elem reflect.Type) error {
	t := dst.Type()
	if !node.IsObject() {
		return errorf(KindSchema, "expected object for %v, got %v", t, node.Kind())
	}
	out := reflect.MakeMapWithSize(t, node.Len())
	for c := range node.Children() {
		key, err := parseKey(c.Name, t.Key())
		if err != nil {
			return traced(err, fieldSeg(c.Name))
		}
		val := reflect.New(t.Elem()).Elem()
		if err := d.element(c, val, elem); err != nil {
			return traced(err, fieldSeg(c.Name))
		}
		out.SetMapIndex(key, val)
	}
	dst.Set(out)
	return nil
}

func (d *Decoder) mapping(node *dom.Value, m Mapping, elem reflect.Type) error {
	if !node.IsObject() {
		return errorf(KindSchema, "expected object for %T, got %v", m, node.Kind())
	}
	et := m.EntryType()
	for c := range node.Children() {
		val := reflect.New(et).Elem()
		if err := d.element(c, val, elem); err != nil {
			return traced(err, fieldSeg(c.Name))
		}
		if err := m.Put(c.Name, val.Interface()); err != nil {
			return traced(err, fieldSeg(c.Name))
		}
	}
	return nil
}

// fields decodes the members of the object node into the fields of the
// struct dst.
func (d *Decoder) fields(node *dom.Value, dst reflect.Value) error {
	t := dst.Type()
	if !node.IsObject() {
		return errorf(KindSchema, "expected object for %v, got %v", t, node.Kind())
	}
	fields := d.c.reg.Fields(t)
	seen := make([]bool, len(fields))
	for c := range node.Children() {
		f := d.c.reg.field(t, c.Name)
		if f == nil {
			if d.c.set.tagsEnabled() && c.Name == d.c.set.typeKey() {
				continue
			} else if d.c.set.IgnoreUnknownFields {
				level.Debug(d.log).Log("msg", "ignoring unknown field", "type", t, "field", c.Name, "at", c.Trace())
				continue
			}
			return &Error{Kind: KindSchema, Trace: fieldSeg(c.Name), Err: fmt.Errorf("unknown field %q in %v", c.Name, t)}
		}
		if f.Deprecated && d.c.set.IgnoreDeprecated && !d.c.set.ReadDeprecated {
			level.Debug(d.log).Log("msg", "skipping deprecated field", "type", t, "field", f.Name)
			continue
		}
		seen[f.pos] = true
		if err := d.decode(c, f.settable(dst), f.ElemType); err != nil {
			return traced(err, fieldSeg(c.Name))
		}
	}
	for _, f := range fields {
		if f.Required && !seen[f.pos] {
			return &Error{Kind: KindSchema, Trace: fieldSeg(f.Name), Err: errors.New("missing required field")}
		}
	}
	return nil
}

// parseKey converts an object member name to a map key of type kt.
func parseKey(name string, kt reflect.Type) (reflect.Value, error) {
	key := reflect.New(kt).Elem()
	if kt.Kind() == reflect.String {
		key.SetString(name)
		return key, nil
	}
	if tu, ok := key.Addr().Interface().(encoding.TextUnmarshaler); ok {
		if err := tu.UnmarshalText([]byte(name)); err != nil {
			return key, &Error{Kind: KindCustom, Err: err}
		}
		return key, nil
	}
	switch {
	case key.CanInt():
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil || key.OverflowInt(n) {
			return key, errorf(KindFieldAccess, "invalid %v key %q", kt, name)
		}
		key.SetInt(n)
	case key.CanUint():
		n, err := strconv.ParseUint(name, 10, 64)
		if err != nil || key.OverflowUint(n) {
			return key, errorf(KindFieldAccess, "invalid %v key %q", kt, name)
		}
		key.SetUint(n)
	default:
		return key, errorf(KindFieldAccess, "unsupported map key type %v", kt)
	}
	return key, nil
}
