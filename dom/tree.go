// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"iter"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is reported by the Require methods when the requested child
// does not exist.
var ErrNotFound = errors.New("value not found")

// ErrKind is reported by conversions that do not apply to the kind of the
// value.
var ErrKind = errors.New("wrong kind of value")

// AddChild appends c to the children of v and returns v. It panics if v is
// not a container, or if c already belongs to a container or is an ancestor
// of v.
func (v *Value) AddChild(c *Value) *Value {
	if !v.IsContainer() {
		panic("dom: add child to a " + v.kind.String())
	} else if c.parent != nil {
		panic("dom: child already has a parent")
	}
	for p := v; p != nil; p = p.parent {
		if p == c {
			panic("dom: child is an ancestor of its parent")
		}
	}
	v.link(c)
	return v
}

// link appends c to the children of v without checking preconditions.
func (v *Value) link(c *Value) {
	c.parent = v
	c.prev = v.last
	c.next = nil
	if v.last == nil {
		v.child = c
	} else {
		v.last.next = c
	}
	v.last = c
	v.size++
}

// AddMember sets the name of c and appends it to v. It returns v.
// See AddChild for the conditions under which it panics.
func (v *Value) AddMember(name string, c *Value) *Value {
	c.Name = name
	return v.AddChild(c)
}

// Children returns an iterator over the children of v in order. It is safe
// to detach the current child during iteration.
func (v *Value) Children() iter.Seq[*Value] {
	return func(yield func(*Value) bool) {
		for c := v.child; c != nil; {
			next := c.next
			if !yield(c) {
				return
			}
			c = next
		}
	}
}

// Members returns an iterator over the names and values of the children of
// v in order.
func (v *Value) Members() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		for c := range v.Children() {
			if !yield(c.Name, c) {
				return
			}
		}
	}
}

// At returns the child of v at index i, or nil if there is no such child.
// A negative index counts backward from the end.
func (v *Value) At(i int) *Value {
	if i < 0 {
		i += v.size
	}
	if i < 0 || i >= v.size {
		return nil
	}
	if i > v.size/2 {
		c := v.last
		for j := v.size - 1; j > i; j-- {
			c = c.prev
		}
		return c
	}
	c := v.child
	for ; i > 0; i-- {
		c = c.next
	}
	return c
}

// Get returns the first child of v whose name matches name without regard
// to case, or nil if there is none. An exact match is preferred.
func (v *Value) Get(name string) *Value {
	for c := v.child; c != nil; c = c.next {
		if c.Name == name {
			return c
		}
	}
	for c := v.child; c != nil; c = c.next {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Has reports whether v has a child matching name. See Get.
func (v *Value) Has(name string) bool { return v.Get(name) != nil }

// Require returns the child of v matching name, as Get, or reports an error
// wrapping ErrNotFound.
func (v *Value) Require(name string) (*Value, error) {
	if c := v.Get(name); c != nil {
		return c, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "no member %q in %s at %q", name, v.kind, v.Trace())
}

// RequireAt returns the child of v at index i, as At, or reports an error
// wrapping ErrNotFound.
func (v *Value) RequireAt(i int) (*Value, error) {
	if c := v.At(i); c != nil {
		return c, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "no index %d in %s of length %d at %q", i, v.kind, v.size, v.Trace())
}

// Remove detaches and returns the first child of v matching name, or returns
// nil if there is none. See Get.
func (v *Value) Remove(name string) *Value {
	c := v.Get(name)
	if c != nil {
		c.Detach()
	}
	return c
}

// RemoveAt detaches and returns the child of v at index i, or returns nil if
// there is no such child. See At.
func (v *Value) RemoveAt(i int) *Value {
	c := v.At(i)
	if c != nil {
		c.Detach()
	}
	return c
}

// Detach removes v from its parent, if any, and returns v. The name of v is
// not changed.
func (v *Value) Detach() *Value {
	p := v.parent
	if p == nil {
		return v
	}
	if v.prev == nil {
		p.child = v.next
	} else {
		v.prev.next = v.next
	}
	if v.next == nil {
		p.last = v.prev
	} else {
		v.next.prev = v.prev
	}
	p.size--
	v.parent, v.prev, v.next = nil, nil, nil
	return v
}

// Clear detaches all the children of v.
func (v *Value) Clear() {
	for c := range v.Children() {
		c.Detach()
	}
}

// Root returns the outermost container holding v, or v itself.
func (v *Value) Root() *Value {
	for v.parent != nil {
		v = v.parent
	}
	return v
}
