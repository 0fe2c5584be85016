// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"iter"
	"reflect"
	"slices"
)

// A Mapping is a struct-based map type that the codec reads and writes as a
// JSON object, in the order reported by Range. The codec uses a pointer to
// the struct, so methods should have pointer receivers.
type Mapping interface {
	// EntryType reports the declared type of the values in the mapping.
	// It must not depend on the contents of the receiver.
	EntryType() reflect.Type

	// Len reports the number of entries in the mapping.
	Len() int

	// Range calls f for each entry in order, until f returns false.
	Range(f func(key string, val any) bool)

	// Put adds or replaces the entry for key.
	Put(key string, val any) error
}

// OrderedMap is a map from strings to values of type V that preserves the
// order in which keys were first added. A zero OrderedMap is empty and ready
// for use. OrderedMap implements Mapping.
type OrderedMap[V any] struct {
	keys []string
	vals map[string]V
}

// NewOrderedMap constructs an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] { return new(OrderedMap[V]) }

// Len reports the number of entries in m.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get reports the value for key and whether it is present.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Set adds or replaces the value for key. A new key is added at the end.
func (m *OrderedMap[V]) Set(key string, val V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = val
}

// Delete removes key from m, and reports whether it was present.
func (m *OrderedMap[V]) Delete(key string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.vals[key]; !ok {
		return false
	}
	delete(m.vals, key)
	m.keys = slices.DeleteFunc(m.keys, func(s string) bool { return s == key })
	return true
}

// Keys returns a copy of the keys of m in order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates over the entries of m in order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// EntryType implements part of the Mapping interface.
func (*OrderedMap[V]) EntryType() reflect.Type { return reflect.TypeFor[V]() }

// Range implements part of the Mapping interface.
func (m *OrderedMap[V]) Range(f func(string, any) bool) {
	for k, v := range m.All() {
		if !f(k, v) {
			return
		}
	}
}

// Put implements part of the Mapping interface.
func (m *OrderedMap[V]) Put(key string, val any) error {
	if val == nil {
		var zero V
		m.Set(key, zero)
		return nil
	}
	v, ok := val.(V)
	if !ok {
		return errorf(KindFieldAccess, "value of type %T does not fit %v", val, reflect.TypeFor[V]())
	}
	m.Set(key, v)
	return nil
}
