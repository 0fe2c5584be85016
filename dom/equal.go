// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package dom

// Equal reports whether a and b are structurally equal: they have the same
// kind and payload, and their children are pairwise equal with the same
// names in the same order. The names of a and b themselves, and the source
// text of numbers, are not compared.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.size != b.size {
		return false
	}
	switch a.kind {
	case String:
		return a.str == b.str
	case Long:
		return a.lng == b.lng
	case Double:
		return a.dbl == b.dbl
	case Bool:
		return a.ok == b.ok
	case Null:
		return true
	}
	for ca, cb := a.child, b.child; ca != nil; ca, cb = ca.next, cb.next {
		if (a.kind == Object && ca.Name != cb.Name) || !Equal(ca, cb) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of v, detached from any parent. The name of the
// copy is the name of v.
func Copy(v *Value) *Value {
	out := &Value{
		Name: v.Name, kind: v.kind, str: v.str, lng: v.lng, dbl: v.dbl, ok: v.ok,
		pos: v.pos, end: v.end,
	}
	for c := range v.Children() {
		out.link(Copy(c))
	}
	return out
}
