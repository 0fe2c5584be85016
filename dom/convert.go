// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AsString returns the text of a scalar value: a string as itself, a number
// as its text, a Boolean as "true" or "false", and null as "".
func (v *Value) AsString() (string, error) {
	switch v.kind {
	case String:
		return v.str, nil
	case Long, Double:
		return v.NumberText(), nil
	case Bool:
		return strconv.FormatBool(v.ok), nil
	case Null:
		return "", nil
	}
	return "", v.kindError("string")
}

// AsDouble returns the value of a number, Boolean (1 or 0), or a string that
// parses as a number.
func (v *Value) AsDouble() (float64, error) {
	switch v.kind {
	case Double, Long:
		return v.dbl, nil
	case Bool:
		if v.ok {
			return 1, nil
		}
		return 0, nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, errors.Wrapf(ErrKind, "string %q at %q is not a number", v.str, v.Trace())
		}
		return f, nil
	}
	return 0, v.kindError("double")
}

// AsLong returns the value of a number, Boolean (1 or 0), or a string that
// parses as an integer. A Double is truncated toward zero.
func (v *Value) AsLong() (int64, error) {
	switch v.kind {
	case Long, Double:
		return v.lng, nil
	case Bool:
		if v.ok {
			return 1, nil
		}
		return 0, nil
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrKind, "string %q at %q is not an integer", v.str, v.Trace())
		}
		return n, nil
	}
	return 0, v.kindError("long")
}

// AsBool returns the value of a Boolean, whether a number is nonzero, or
// whether a string equals "true" without regard to case.
func (v *Value) AsBool() (bool, error) {
	switch v.kind {
	case Bool:
		return v.ok, nil
	case Long:
		return v.lng != 0, nil
	case Double:
		return v.dbl != 0, nil
	case String:
		return strings.EqualFold(v.str, "true"), nil
	}
	return false, v.kindError("bool")
}

func (v *Value) kindError(want string) error {
	return errors.Wrapf(ErrKind, "cannot convert %s at %q to %s", v.kind, v.Trace(), want)
}

// GetString returns the string value of the child of v named name, or def if
// there is no such child or it cannot be converted.
func (v *Value) GetString(name, def string) string { return getOr(v, name, def, (*Value).AsString) }

// GetLong returns the integer value of the child of v named name, or def if
// there is no such child or it cannot be converted.
func (v *Value) GetLong(name string, def int64) int64 { return getOr(v, name, def, (*Value).AsLong) }

// GetDouble returns the floating-point value of the child of v named name,
// or def if there is no such child or it cannot be converted.
func (v *Value) GetDouble(name string, def float64) float64 {
	return getOr(v, name, def, (*Value).AsDouble)
}

// GetBool returns the Boolean value of the child of v named name, or def if
// there is no such child or it cannot be converted.
func (v *Value) GetBool(name string, def bool) bool { return getOr(v, name, def, (*Value).AsBool) }

func getOr[T any](v *Value, name string, def T, conv func(*Value) (T, error)) T {
	c := v.Get(name)
	if c == nil || c.IsNull() {
		return def
	}
	out, err := conv(c)
	if err != nil {
		return def
	}
	return out
}

// The Set methods replace the kind and payload of v in place. Any children
// of v are detached. The name and position of v in its parent are unchanged.

// SetString makes v a string with the given value.
func (v *Value) SetString(s string) { v.reset(String); v.str = s }

// SetLong makes v an integer with the given value.
func (v *Value) SetLong(n int64) { v.reset(Long); v.lng, v.dbl = n, float64(n) }

// SetDouble makes v a floating-point number with the given value.
func (v *Value) SetDouble(f float64) { v.reset(Double); v.dbl, v.lng = f, truncate(f) }

// SetBool makes v a Boolean with the given value.
func (v *Value) SetBool(ok bool) { v.reset(Bool); v.ok = ok }

// SetNull makes v null.
func (v *Value) SetNull() { v.reset(Null) }

func (v *Value) reset(k Kind) {
	v.Clear()
	v.kind = k
	v.str, v.lng, v.dbl, v.ok = "", 0, 0, false
}
