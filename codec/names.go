// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	anyType             = reflect.TypeFor[any]()
	marshalerType       = reflect.TypeFor[Marshaler]()
	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	mappingType         = reflect.TypeFor[Mapping]()
	jsonMarshalerType   = reflect.TypeFor[json.Marshaler]()
	jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()
)

// implements reports whether t or *t implements the interface type it.
func implements(t, it reflect.Type) bool {
	return t.Implements(it) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(it))
}

// TypeName returns the full name of t. Named types are written as their
// package path and name, for example "github.com/foo/bar.Baz"; predeclared
// types by their name alone. Unnamed composite types are named by
// construction from their components, for example "map[string][]int".
func TypeName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), TypeName(t.Elem()))
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "any"
		}
	}
	return t.String()
}

// resolveComposite resolves a composite type name built from known names.
func (r *Registry) resolveComposite(name string) (reflect.Type, error) {
	fail := func() (reflect.Type, error) {
		return nil, errorf(KindTypeResolution, "unknown type %q", name)
	}
	switch {
	case strings.HasPrefix(name, "*"):
		et, err := r.TypeForTag(name[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(et), nil

	case strings.HasPrefix(name, "[]"):
		et, err := r.TypeForTag(name[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(et), nil

	case strings.HasPrefix(name, "map["):
		end := closeBracket(name, 3)
		if end < 0 {
			return fail()
		}
		kt, err := r.TypeForTag(name[4:end])
		if err != nil {
			return nil, err
		} else if !kt.Comparable() {
			return fail()
		}
		vt, err := r.TypeForTag(name[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(kt, vt), nil

	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		if end < 0 {
			return fail()
		}
		n, err := strconv.Atoi(name[1:end])
		if err != nil || n < 0 {
			return fail()
		}
		et, err := r.TypeForTag(name[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(n, et), nil
	}
	return fail()
}

// closeBracket returns the offset of the "]" matching the "[" at offset pos
// of s, or -1.
func closeBracket(s string, pos int) int {
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
