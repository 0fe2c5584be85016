// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"testing"

	"github.com/creachadair/jdom/internal/escape"
	"github.com/google/go-cmp/cmp"
	"go4.org/mem"
)

func TestUnquote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{``, ``},
		{`plain text`, `plain text`},
		{`\"\\\/\b\f\n\r\t`, "\"\\/\b\f\n\r\t"},
		{`a\u0020b`, `a b`},
		{`\u00e9t\u00E9`, "\u00e9t\u00e9"},
		{`\ud83d\ude00`, "\U0001F600"}, // surrogate pair
		{`\ud83dx`, "\ufffdx"},         // unpaired high surrogate
		{`\ude00`, "\ufffd"},           // unpaired low surrogate
		{`\q`, "\ufffd"},               // unknown escape
		{`\uzzzz!`, "\ufffd!"},         // bad hex
		{`tail\n`, "tail\n"},
	}
	for _, tc := range tests {
		got, err := escape.Unquote(mem.S(tc.input))
		if err != nil {
			t.Errorf("Unquote(%#q): unexpected error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff(tc.want, string(got)); diff != "" {
			t.Errorf("Unquote(%#q) (-want, +got):\n%s", tc.input, diff)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, input := range []string{`\`, `abc\`, `\u12`, `x\u`} {
		if got, err := escape.Unquote(mem.S(input)); err == nil {
			t.Errorf("Unquote(%#q): got %q, want error", input, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"",
		"hello, world",
		"quote \" and backslash \\ and slash /",
		"\b\f\n\r\t",
		"\x00\x01\x1f",
		"line\u2028para\u2029",
		"emoji \U0001F600 and accents \u00e0\u00e9\u00ee",
		"\ufffd",
	} {
		q := escape.Quote(mem.S(s))
		got, err := escape.Unquote(mem.B(q))
		if err != nil {
			t.Errorf("Unquote(Quote(%q)): %v", s, err)
		} else if string(got) != s {
			t.Errorf("Unquote(Quote(%q)): got %q", s, got)
		}
	}
}

func TestNeedsQuote(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"abc", false},
		{"a b", false},
		{"a\"b", true},
		{"a\\b", true},
		{"a\nb", true},
		{"\u00e9", true},
	}
	for _, tc := range tests {
		if got := escape.NeedsQuote(mem.S(tc.input)); got != tc.want {
			t.Errorf("NeedsQuote(%q): got %v, want %v", tc.input, got, tc.want)
		}
	}
}
