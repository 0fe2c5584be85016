// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"reflect"
	"sync"
	"time"

	"github.com/creachadair/jdom/dom"
	"golang.org/x/exp/constraints"
)

// A Registry records what the codec knows about types: the tags used to name
// them in output, their field metadata and default values, enum names, and
// custom serializers. A Registry is safe for concurrent use. Metadata for a
// type is computed the first time it is needed and does not change.
type Registry struct {
	mu        sync.RWMutex
	fields    map[reflect.Type][]*FieldMetadata
	defaults  map[reflect.Type][]reflect.Value
	serial    map[reflect.Type]Serializer
	tags      map[reflect.Type]string
	types     map[string]reflect.Type // tags and full type names
	enums     map[reflect.Type][]string
	factories map[reflect.Type]func() any
}

var builtinTypes = []reflect.Type{
	reflect.TypeFor[bool](),
	reflect.TypeFor[string](),
	reflect.TypeFor[int](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[uintptr](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[time.Time](),
	reflect.TypeFor[time.Duration](),
	anyType,
}

// NewRegistry constructs a new empty Registry. The names of the built-in
// scalar types, and of time.Time and time.Duration, are known to every
// registry.
func NewRegistry() *Registry {
	r := &Registry{
		fields:    make(map[reflect.Type][]*FieldMetadata),
		defaults:  make(map[reflect.Type][]reflect.Value),
		serial:    make(map[reflect.Type]Serializer),
		tags:      make(map[reflect.Type]string),
		types:     make(map[string]reflect.Type),
		enums:     make(map[reflect.Type][]string),
		factories: make(map[reflect.Type]func() any),
	}
	r.Register(builtinTypes...)
	r.types["interface {}"] = anyType
	return r
}

// Register records the full names of the given types, so that tags written
// by other registries can be resolved to them.
func (r *Registry) Register(types ...reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		r.types[TypeName(t)] = t
	}
}

// AddTag records tag as the name of type t in output. The full name of t is
// also registered, so input using either name resolves to t.
func (r *Registry) AddTag(tag string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[t] = tag
	r.types[tag] = t
	r.types[TypeName(t)] = t
}

// Tag returns the name used for type t in output: its tag, if one was added,
// otherwise its full type name. Tag registers the full name of t.
func (r *Registry) Tag(t reflect.Type) string {
	r.mu.RLock()
	tag, ok := r.tags[t]
	r.mu.RUnlock()
	if ok {
		return tag
	}
	name := TypeName(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; !ok {
		r.types[name] = t
	}
	return name
}

// TypeForTag returns the type named by tag, which is either a tag added by
// AddTag or the full name of a known type. Composite names built from known
// names ("[]T", "[N]T", "map[K]V", "*T") are resolved structurally. If tag
// does not name a known type, the error has kind KindTypeResolution.
func (r *Registry) TypeForTag(tag string) (reflect.Type, error) {
	r.mu.RLock()
	t, ok := r.types[tag]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}
	t, err := r.resolveComposite(tag)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[tag] = t
	return t, nil
}

// SetSerializer registers s to encode and decode values of type t. A nil s
// removes any serializer for t.
//
// Types whose kind is a string, boolean, integer, or floating-point scalar
// are always written and read as scalars, so a serializer registered for
// such a type (for example, type Celsius float64) is not consulted. Wrap the
// scalar in a struct to give it a custom encoding.
func (r *Registry) SetSerializer(t reflect.Type, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s == nil {
		delete(r.serial, t)
	} else {
		r.serial[t] = s
	}
}

// Serializer returns the serializer registered for t, or nil.
func (r *Registry) Serializer(t reflect.Type) Serializer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.serial[t]
}

// SetFactory registers f to construct fresh instances of type t. The value
// returned by f must have type t or *T. Fresh instances are used as the
// starting point for decoding, and as the defaults against which fields are
// compared for elision on output.
func (r *Registry) SetFactory(t reflect.Type, f func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = f
	delete(r.defaults, t)
}

// RegisterEnum records the names of the values of the integer type T, in
// order of their ordinal values starting from zero. Values of T are written
// by name, and read by name or ordinal.
func RegisterEnum[T constraints.Integer](r *Registry, names ...string) {
	t := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[t] = append([]string(nil), names...)
	r.types[TypeName(t)] = t
}

// EnumNames returns the names registered for enum type t, or nil if t is not
// an enum type.
func (r *Registry) EnumNames(t reflect.Type) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enums[t]
}

// New returns a settable fresh instance of type t. If a factory is registered
// for t it is used; otherwise the instance is the zero value, with maps
// allocated and pointers pointing to fresh instances of their element type.
// If *T has a SetDefaults method, it is called on the new instance.
func (r *Registry) New(t reflect.Type) reflect.Value {
	r.mu.RLock()
	f := r.factories[t]
	r.mu.RUnlock()

	out := reflect.New(t).Elem()
	if f != nil {
		switch v := reflect.ValueOf(f()); {
		case !v.IsValid():
			// use the zero value
		case v.Type() == t:
			out.Set(v)
			return out
		case v.Kind() == reflect.Pointer && v.Type().Elem() == t && !v.IsNil():
			out.Set(v.Elem())
			return out
		}
	}
	switch t.Kind() {
	case reflect.Map:
		out.Set(reflect.MakeMap(t))
	case reflect.Pointer:
		out.Set(r.New(t.Elem()).Addr())
		return out
	}
	if d, ok := out.Addr().Interface().(Defaulter); ok {
		d.SetDefaults()
	}
	return out
}

// defaultsOf returns the values of the fields of a fresh instance of struct
// type t, indexed by field position. An invalid entry means the field is not
// reachable in the fresh instance.
func (r *Registry) defaultsOf(t reflect.Type) []reflect.Value {
	r.mu.RLock()
	vals, ok := r.defaults[t]
	r.mu.RUnlock()
	if ok {
		return vals
	}

	inst := r.New(t)
	fields := r.Fields(t)
	vals = make([]reflect.Value, len(fields))
	for _, f := range fields {
		if fv, ok := f.Value(inst); ok {
			vals[f.pos] = fv
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.defaults[t]; ok {
		return prev
	}
	r.defaults[t] = vals
	return vals
}

// wrapped reports whether a value of type t is written under a "value" key
// when it carries a type tag, rather than as members of the tagged object.
func (r *Registry) wrapped(t reflect.Type) bool {
	for {
		if implements(t, marshalerType) || r.Serializer(t) != nil {
			return false
		} else if implements(t, jsonMarshalerType) {
			return true
		}
		if t.Kind() != reflect.Pointer {
			break
		}
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		return implements(t, mappingType)
	}
	return true
}

// A Defaulter is a type that initializes its own default values.
// The codec calls SetDefaults on each fresh instance it constructs.
type Defaulter interface {
	SetDefaults()
}

// A Marshaler is a type that writes its own encoding. When MarshalJDOM is
// called, an object has been opened for the value (including its type tag,
// if required); MarshalJDOM writes the members of the object.
type Marshaler interface {
	MarshalJDOM(e *Encoder) error
}

// An Unmarshaler is a type that reads its own encoding from the object node
// produced by its MarshalJDOM method.
type Unmarshaler interface {
	UnmarshalJDOM(d *Decoder, node *dom.Value) error
}

// A Serializer encodes and decodes values of a type registered with
// SetSerializer.
type Serializer interface {
	// WriteJDOM writes v, whose declared type is declared. The declared type
	// is nil if it is unknown. To write a type tag when the declared type
	// differs from the type of v, use Encoder.WriteObjectStart.
	WriteJDOM(e *Encoder, v any, declared reflect.Type) error

	// ReadJDOM returns the value of type t encoded by node.
	ReadJDOM(d *Decoder, node *dom.Value, t reflect.Type) (any, error)
}

// Funcs adapts a pair of functions to the Serializer interface for values of
// type T. Funcs does not write type tags.
type Funcs[T any] struct {
	Write func(e *Encoder, v T) error
	Read  func(d *Decoder, node *dom.Value) (T, error)
}

// WriteJDOM implements part of the Serializer interface.
func (f Funcs[T]) WriteJDOM(e *Encoder, v any, _ reflect.Type) error { return f.Write(e, v.(T)) }

// ReadJDOM implements part of the Serializer interface.
func (f Funcs[T]) ReadJDOM(d *Decoder, node *dom.Value, _ reflect.Type) (any, error) {
	return f.Read(d, node)
}

// SetSerializerFor registers f as the serializer for type T in r. As with
// SetSerializer, f is not used if T has a scalar kind.
func SetSerializerFor[T any](r *Registry, f Funcs[T]) { r.SetSerializer(reflect.TypeFor[T](), f) }
