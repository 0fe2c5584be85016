// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"cmp"
	"reflect"
	"slices"
	"strings"
)

// FieldMetadata describes a struct field as seen by the codec.
type FieldMetadata struct {
	Name       string              // the name of the field in JSON
	Field      reflect.StructField // the Go field
	Index      []int               // index path from the outermost struct
	Type       reflect.Type        // declared type of the field
	ElemType   reflect.Type        // declared element type, or nil
	Deprecated bool                // tagged "deprecated"
	Required   bool                // tagged "required"

	pos int // offset in the field list of the struct
}

// Value returns the value of f in the struct v. It reports false if f is
// promoted through an embedded pointer that is nil.
func (f *FieldMetadata) Value(v reflect.Value) (reflect.Value, bool) {
	for i, x := range f.Index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// settable returns the value of f in the addressable struct v, allocating
// any nil embedded pointers along the way.
func (f *FieldMetadata) settable(v reflect.Value) reflect.Value {
	for i, x := range f.Index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// Fields returns the field metadata for struct type t, in declaration order
// with the fields of embedded structs first. It returns nil if t is not a
// struct type. The result must not be modified.
func (r *Registry) Fields(t reflect.Type) []*FieldMetadata {
	if t.Kind() != reflect.Struct {
		return nil
	}
	r.mu.RLock()
	fs, ok := r.fields[t]
	r.mu.RUnlock()
	if ok {
		return fs
	}

	fs = buildFields(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.fields[t]; ok {
		return prev
	}
	r.fields[t] = fs
	return fs
}

// field returns the metadata for the field of t called name, matching
// exactly first and then without regard to case. It returns nil if no field
// matches.
func (r *Registry) field(t reflect.Type, name string) *FieldMetadata {
	fs := r.Fields(t)
	for _, f := range fs {
		if f.Name == name {
			return f
		}
	}
	for _, f := range fs {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

type fieldCand struct {
	*FieldMetadata
	depth  int
	tagged bool
}

func buildFields(t reflect.Type) []*FieldMetadata {
	var cands []fieldCand
	var walk func(t reflect.Type, index []int, depth int, seen []reflect.Type)
	walk = func(t reflect.Type, index []int, depth int, seen []reflect.Type) {
		// Embedded structs first, so that base fields precede their extensions.
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.Anonymous || !sf.IsExported() {
				continue
			}
			name, _, skip := parseTag(sf)
			st := sf.Type
			if st.Kind() == reflect.Pointer {
				st = st.Elem()
			}
			if skip || name != "" || st.Kind() != reflect.Struct || slices.Contains(seen, st) {
				continue
			}
			walk(st, append(slices.Clip(index), i), depth+1, append(slices.Clip(seen), st))
		}
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name, opts, skip := parseTag(sf)
			if skip {
				continue
			} else if sf.Anonymous && name == "" {
				st := sf.Type
				if st.Kind() == reflect.Pointer {
					st = st.Elem()
				}
				if st.Kind() == reflect.Struct {
					continue // walked above
				}
			}
			cands = append(cands, fieldCand{
				FieldMetadata: &FieldMetadata{
					Name:       cmp.Or(name, sf.Name),
					Field:      sf,
					Index:      append(slices.Clip(index), i),
					Type:       sf.Type,
					ElemType:   elemType(sf.Type),
					Deprecated: slices.Contains(opts, "deprecated"),
					Required:   slices.Contains(opts, "required"),
				},
				depth:  depth,
				tagged: name != "",
			})
		}
	}
	walk(t, nil, 0, []reflect.Type{t})

	// Resolve duplicate names: the shallowest field wins; among fields at the
	// same depth a single tagged field wins, otherwise the name is dropped.
	byName := make(map[string][]fieldCand)
	for _, c := range cands {
		byName[c.Name] = append(byName[c.Name], c)
	}
	var out []*FieldMetadata
	for _, c := range cands {
		if winner(byName[c.Name]) == c.FieldMetadata {
			c.pos = len(out)
			out = append(out, c.FieldMetadata)
		}
	}
	return out
}

func winner(cs []fieldCand) *FieldMetadata {
	if len(cs) == 1 {
		return cs[0].FieldMetadata
	}
	least := slices.MinFunc(cs, func(a, b fieldCand) int { return cmp.Compare(a.depth, b.depth) }).depth
	var top, tagged []fieldCand
	for _, c := range cs {
		if c.depth == least {
			top = append(top, c)
			if c.tagged {
				tagged = append(tagged, c)
			}
		}
	}
	if len(top) == 1 {
		return top[0].FieldMetadata
	} else if len(tagged) == 1 {
		return tagged[0].FieldMetadata
	}
	return nil
}

// parseTag parses the jdom struct tag of sf. It reports skip if the field is
// excluded with "-".
func parseTag(sf reflect.StructField) (name string, opts []string, skip bool) {
	tag, ok := sf.Tag.Lookup("jdom")
	if !ok {
		return "", nil, false
	} else if tag == "-" {
		return "", nil, true
	}
	name, rest, _ := strings.Cut(tag, ",")
	if rest != "" {
		opts = strings.Split(rest, ",")
	}
	return name, opts, false
}

// elemType reports the declared element type of a container type t, or nil
// if t is not a container.
func elemType(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return t.Elem()
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct && t.Implements(mappingType) {
			return reflect.New(t.Elem()).Interface().(Mapping).EntryType()
		}
	case reflect.Struct:
		if reflect.PointerTo(t).Implements(mappingType) {
			return reflect.New(t).Interface().(Mapping).EntryType()
		}
	}
	return nil
}
