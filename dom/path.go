// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/creachadair/jdom"
)

// Trace returns a path from the root of the tree containing v to v, for
// example ".items[3].name". The trace of a root is "". Member names that
// contain path punctuation or are empty are quoted: `."a.b"`.
//
// The result can be resolved back to v with Find.
func (v *Value) Trace() string {
	var segs []string
	for c := v; c.parent != nil; c = c.parent {
		segs = append(segs, c.traceStep())
	}
	slices.Reverse(segs)
	return strings.Join(segs, "")
}

func (v *Value) traceStep() string {
	if v.parent.kind == Array {
		i := 0
		for c := v.parent.child; c != v; c = c.next {
			i++
		}
		return "[" + strconv.Itoa(i) + "]"
	}
	if nameRE.MatchString(v.Name) {
		return "." + v.Name
	}
	return "." + jdom.Quote(v.Name)
}

// Find resolves a trace of the form returned by Trace, starting from v. A
// leading "$" is permitted and ignored. Index steps may be negative, to
// count backward from the end of an array.
func Find(v *Value, trace string) (*Value, error) {
	s, _ := strings.CutPrefix(trace, "$")
	cur := v
	for s != "" {
		key, rest, err := parseStep(s)
		if err != nil {
			return nil, fmt.Errorf("invalid trace at %q: %w", s, err)
		}
		next, err := Path(cur, key)
		if err != nil {
			return nil, err
		}
		cur, s = next, rest
	}
	return cur, nil
}

func parseStep(s string) (key any, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "."); ok {
		if m := nameRE.FindString(t); m != "" {
			return m, t[len(m):], nil
		}
		if m := quoteRE.FindString(t); m != "" {
			name, err := jdom.Unquote(m)
			if err != nil {
				return nil, s, err
			}
			return string(name), t[len(m):], nil
		}
		return nil, s, errors.New("invalid name")
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		m := indexRE.FindString(t)
		if m == "" {
			return nil, s, errors.New("invalid index")
		}
		u, ok := strings.CutPrefix(t[len(m):], "]")
		if !ok {
			return nil, s, errors.New("missing close bracket")
		}
		i, err := strconv.Atoi(m)
		if err != nil {
			return nil, s, err
		}
		return i, u, nil
	}
	return nil, s, errors.New("invalid path step")
}

var (
	nameRE  = regexp.MustCompile(`^[^.\["\\]+`)
	indexRE = regexp.MustCompile(`^-?\d+`)
	quoteRE = regexp.MustCompile(`^"(?:[^"\\]|\\.)*"`)
)

// Path traverses a sequence of path elements downward from v, and returns
// the resulting value or an error. Each element of the path must be one of:
//
//   - string: the name of a member of an object (see Get)
//   - int: the index of an array element (see At)
//   - func(*Value) (*Value, error): a custom traversal step
//
// A string element may also select the child of an array by name, if its
// children are named. Negative indices count backward from the end.
func Path(v *Value, path ...any) (*Value, error) {
	cur := v
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			if !cur.IsContainer() {
				return nil, fmt.Errorf("cannot traverse %s at %q with %q", cur.kind, cur.Trace(), t)
			}
			next, err := cur.Require(t)
			if err != nil {
				return nil, err
			}
			cur = next
		case int:
			if !cur.IsContainer() {
				return nil, fmt.Errorf("cannot traverse %s at %q with %d", cur.kind, cur.Trace(), t)
			}
			next, err := cur.RequireAt(t)
			if err != nil {
				return nil, err
			}
			cur = next
		case func(*Value) (*Value, error):
			next, err := t(cur)
			if err != nil {
				return nil, err
			}
			cur = next
		default:
			return nil, fmt.Errorf("invalid path element %T", elt)
		}
	}
	return cur, nil
}
