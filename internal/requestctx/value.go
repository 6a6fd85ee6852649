package requestctx

import (
	"strconv"
	"strings"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindStrings
)

// Value is a typed side-channel entry.
type Value struct {
	kind Kind
	s    string
	i    int64
	b    bool
	ss   []string
}

func String(s string) Value { return Value{kind: KindString, s: s} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Strings copies its arguments.
func Strings(ss ...string) Value {
	return Value{kind: KindStrings, ss: append([]string(nil), ss...)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsStrings() ([]string, bool) {
	if v.kind != KindStrings {
		return nil, false
	}
	return append([]string(nil), v.ss...), true
}

// String renders the value regardless of its kind.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindStrings:
		return strings.Join(v.ss, ",")
	default:
		return v.s
	}
}
