// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package dom_test

import (
	"errors"
	"testing"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/dom"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func names(v *dom.Value) []string {
	var out []string
	for c := range v.Children() {
		out = append(out, c.Name)
	}
	return out
}

func TestBuild(t *testing.T) {
	v := dom.NewObject().
		AddMember("a", dom.NewLong(1)).
		AddMember("b", dom.NewArray().AddChild(dom.NewString("x")).AddChild(dom.NewDouble(2))).
		AddMember("c", dom.NewBool(false)).
		AddMember("d", dom.NewNull())
	if got, want := v.JSON(), `{"a":1,"b":["x",2.0],"c":false,"d":null}`; got != want {
		t.Errorf("JSON: got %s, want %s", got, want)
	}
	if v.Len() != 4 {
		t.Errorf("Len: got %d, want 4", v.Len())
	}
	b := v.Get("b")
	if b.Parent() != v || b.Prev() != v.First() || b.Next() != v.At(2) {
		t.Error("Links of b are not consistent")
	}
	if v.Last() != v.Get("d") {
		t.Errorf("Last: got %v, want d", v.Last())
	}
	if got := b.At(1).Root(); got != v {
		t.Errorf("Root: got %v, want %v", got, v)
	}
}

func TestNewNumber(t *testing.T) {
	v, err := dom.NewNumber("1.0")
	if err != nil {
		t.Fatalf("NewNumber: unexpected error: %v", err)
	}
	if v.Kind() != dom.Double || v.NumberText() != "1.0" {
		t.Errorf("NewNumber(1.0): got %v %q", v.Kind(), v.NumberText())
	}
	if v, err := dom.NewNumber("12"); err != nil || v.Kind() != dom.Long {
		t.Errorf("NewNumber(12): got %v, %v; want long", v, err)
	}
	for _, bad := range []string{"", "x", "1-2", "true"} {
		if v, err := dom.NewNumber(bad); err == nil {
			t.Errorf("NewNumber(%q): got %v, want error", bad, v)
		}
	}
}

func TestGet(t *testing.T) {
	v := mustParse(t, `{Key: 1, key: 2, other: 3}`)
	tests := []struct {
		name string
		want int64
	}{
		{"key", 2},
		{"Key", 1},
		{"KEY", 1},
		{"OTHER", 3},
	}
	for _, test := range tests {
		c := v.Get(test.name)
		if c == nil {
			t.Errorf("Get(%q): not found", test.name)
			continue
		}
		if n, _ := c.AsLong(); n != test.want {
			t.Errorf("Get(%q): got %d, want %d", test.name, n, test.want)
		}
	}
	if c := v.Get("nonesuch"); c != nil {
		t.Errorf("Get(nonesuch): got %v, want nil", c)
	}
	if !v.Has("other") || v.Has("nonesuch") {
		t.Error("Has: wrong result")
	}
}

func TestAt(t *testing.T) {
	v := mustParse(t, `[0, 1, 2, 3, 4, 5, 6]`)
	for i := -7; i < 7; i++ {
		want := int64(i)
		if i < 0 {
			want += 7
		}
		if n, _ := v.At(i).AsLong(); n != want {
			t.Errorf("At(%d): got %d, want %d", i, n, want)
		}
	}
	for _, i := range []int{7, 100, -8} {
		if c := v.At(i); c != nil {
			t.Errorf("At(%d): got %v, want nil", i, c)
		}
	}
}

func TestRequire(t *testing.T) {
	v := mustParse(t, `{items: [{name: a}]}`)
	if c, err := v.Require("items"); err != nil || !c.IsArray() {
		t.Errorf("Require(items): got %v, %v", c, err)
	}
	_, err := v.Require("nonesuch")
	if !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("Require(nonesuch): got %v, want %v", err, dom.ErrNotFound)
	}
	_, err = v.Get("items").RequireAt(3)
	if !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("RequireAt(3): got %v, want %v", err, dom.ErrNotFound)
	}
}

func TestRemove(t *testing.T) {
	v := mustParse(t, `{a:1, b:2, c:3, d:4}`)

	if got := v.Remove("B"); got == nil || got.Name != "b" || got.Parent() != nil {
		t.Errorf("Remove(B): got %v", got)
	}
	if diff := cmp.Diff([]string{"a", "c", "d"}, names(v)); diff != "" {
		t.Errorf("After Remove (-want, +got):\n%s", diff)
	}
	if got := v.RemoveAt(-1); got == nil || got.Name != "d" {
		t.Errorf("RemoveAt(-1): got %v", got)
	}
	if got := v.RemoveAt(0); got == nil || got.Name != "a" {
		t.Errorf("RemoveAt(0): got %v", got)
	}
	if v.Len() != 1 || v.First() != v.Last() || v.First().Name != "c" {
		t.Errorf("After removals: got %v", v)
	}
	if got := v.Remove("nonesuch"); got != nil {
		t.Errorf("Remove(nonesuch): got %v, want nil", got)
	}
	if got := v.RemoveAt(5); got != nil {
		t.Errorf("RemoveAt(5): got %v, want nil", got)
	}
	v.First().Detach()
	if v.Len() != 0 || v.First() != nil || v.Last() != nil {
		t.Errorf("After Detach: got %v", v)
	}
	if got := v.JSON(); got != "{}" {
		t.Errorf("JSON: got %s, want {}", got)
	}
}

func TestChildren_detach(t *testing.T) {
	v := mustParse(t, `[1, 2, 3, 4, 5, 6]`)
	for c := range v.Children() {
		if n, _ := c.AsLong(); n%2 == 0 {
			c.Detach()
		}
	}
	if got, want := v.JSON(), `[1,3,5]`; got != want {
		t.Errorf("After detach: got %s, want %s", got, want)
	}

	// A detached value can be added elsewhere.
	w := dom.NewArray()
	w.AddChild(v.RemoveAt(1))
	if got, want := w.JSON(), `[3]`; got != want {
		t.Errorf("Moved: got %s, want %s", got, want)
	}
}

func TestMisuse(t *testing.T) {
	mtest.MustPanic(t, func() { dom.NewString("x").AddChild(dom.NewNull()) })
	mtest.MustPanic(t, func() { dom.NewNull().AddMember("a", dom.NewNull()) })

	v := mustParse(t, `{a: [1]}`)
	mtest.MustPanic(t, func() { dom.NewArray().AddChild(v.Get("a")) })
	mtest.MustPanic(t, func() { v.Get("a").AddChild(v) })
	mtest.MustPanic(t, func() { v.AddChild(v) })
}

func TestConvert(t *testing.T) {
	v := mustParse(t, `{
  s: "text", n: "42", f: "2.5", t: "TRUE",
  l: 7, d: -2.75, b: true, z: null, o: {}, a: [],
}`)
	type result struct {
		S    string
		L    int64
		D    float64
		B    bool
		Errs [4]bool
	}
	tests := []struct {
		name string
		want result
	}{
		{"s", result{S: "text", Errs: [4]bool{false, true, true, false}}},
		{"n", result{S: "42", L: 42, D: 42}},
		{"f", result{S: "2.5", D: 2.5, Errs: [4]bool{false, true, false, false}}},
		{"t", result{S: "TRUE", B: true, Errs: [4]bool{false, true, true, false}}},
		{"l", result{S: "7", L: 7, D: 7, B: true}},
		{"d", result{S: "-2.75", L: -2, D: -2.75, B: true}},
		{"b", result{S: "true", L: 1, D: 1, B: true}},
		{"z", result{Errs: [4]bool{false, true, true, true}}},
		{"o", result{Errs: [4]bool{true, true, true, true}}},
		{"a", result{Errs: [4]bool{true, true, true, true}}},
	}
	for _, test := range tests {
		c := v.Get(test.name)
		var got result
		var errs [4]error
		got.S, errs[0] = c.AsString()
		got.L, errs[1] = c.AsLong()
		got.D, errs[2] = c.AsDouble()
		got.B, errs[3] = c.AsBool()
		for i, err := range errs {
			got.Errs[i] = err != nil
			if err != nil && !errors.Is(err, dom.ErrKind) {
				t.Errorf("Member %q: error %v does not wrap %v", test.name, err, dom.ErrKind)
			}
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Member %q (-want, +got):\n%s", test.name, diff)
		}
	}
}

func TestGetDefaults(t *testing.T) {
	v := mustParse(t, `{s: text, n: 12, f: 0.5, b: true, z: null, o: {}}`)
	if got := v.GetString("s", "def"); got != "text" {
		t.Errorf("GetString(s): got %q", got)
	}
	if got := v.GetString("missing", "def"); got != "def" {
		t.Errorf("GetString(missing): got %q", got)
	}
	if got := v.GetString("z", "def"); got != "def" {
		t.Errorf("GetString(z): got %q", got)
	}
	if got := v.GetString("o", "def"); got != "def" {
		t.Errorf("GetString(o): got %q", got)
	}
	if got := v.GetLong("n", -1); got != 12 {
		t.Errorf("GetLong(n): got %d", got)
	}
	if got := v.GetLong("s", -1); got != -1 {
		t.Errorf("GetLong(s): got %d", got)
	}
	if got := v.GetDouble("f", -1); got != 0.5 {
		t.Errorf("GetDouble(f): got %v", got)
	}
	if got := v.GetBool("b", false); !got {
		t.Errorf("GetBool(b): got %v", got)
	}
	if got := v.GetBool("missing", true); !got {
		t.Errorf("GetBool(missing): got %v", got)
	}
}

func TestSet(t *testing.T) {
	v := mustParse(t, `{a: [1, 2], b: x, c: 1.5}`)
	v.Get("a").SetLong(5)
	v.Get("b").SetBool(true)
	v.Get("c").SetString("y")
	if got, want := v.JSON(), `{"a":5,"b":true,"c":"y"}`; got != want {
		t.Errorf("After set: got %s, want %s", got, want)
	}
	v.Get("a").SetDouble(3)
	v.Get("b").SetNull()
	if got, want := v.JSON(), `{"a":3.0,"b":null,"c":"y"}`; got != want {
		t.Errorf("After set: got %s, want %s", got, want)
	}
	if n, _ := v.Get("a").AsLong(); n != 3 {
		t.Errorf("AsLong after SetDouble: got %d, want 3", n)
	}
}

func TestText(t *testing.T) {
	v := mustParse(t, `{name: "x y", val: abc, n: "123", "a-b": [1.5, true, "null"]}`)
	tests := []struct {
		ot   jdom.OutputType
		want string
	}{
		{jdom.Standard, `{"name":"x y","val":"abc","n":"123","a-b":[1.5,true,"null"]}`},
		{jdom.Scripting, `{name:"x y",val:"abc",n:"123","a-b":[1.5,true,"null"]}`},
		{jdom.Minimal, `{name:"x y",val:abc,n:"123",a-b:[1.5,true,"null"]}`},
	}
	for _, test := range tests {
		got := v.Text(test.ot)
		if got != test.want {
			t.Errorf("Text(%v):\ngot:  %s\nwant: %s", test.ot, got, test.want)
		}

		// Every output style reads back as the same tree.
		if w := mustParse(t, got); !dom.Equal(v, w) {
			t.Errorf("Text(%v) did not round trip: got %v", test.ot, w)
		}
	}
}

func TestEqual(t *testing.T) {
	a := mustParse(t, `{a: [1, 2.0, x], b: {c: null}}`)
	b := mustParse(t, `{"a": [1, 2.00, "x"], "b": {"c": null}}`)
	if !dom.Equal(a, b) {
		t.Errorf("Equal(%v, %v): got false, want true", a, b)
	}
	for _, input := range []string{
		`{a: [1, 2.0, x], b: {c: null}, d: 1}`,
		`{a: [1, 2, x], b: {c: null}}`,
		`{a: [1, 2.0, y], b: {c: null}}`,
		`{a: [1, 2.0, x], B: {c: null}}`,
		`{b: {c: null}, a: [1, 2.0, x]}`,
		`[1, 2.0, x]`,
	} {
		if c := mustParse(t, input); dom.Equal(a, c) {
			t.Errorf("Equal(%v, %v): got true, want false", a, c)
		}
	}

	cp := dom.Copy(a)
	if !dom.Equal(a, cp) {
		t.Errorf("Copy: got %v, want %v", cp, a)
	}
	cp.Get("a").RemoveAt(0)
	if a.Get("a").Len() != 3 {
		t.Error("Modifying the copy changed the original")
	}
}
