// Package settings is a typed key-value store for small persisted values
// such as the playback snapshot and equalizer levels.
package settings

import (
	"fmt"
	"strconv"
)

// Kind identifies which primitive a Value holds.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInt
	KindLong
	KindString
	KindFloat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the supported primitive kinds.
// The zero Value holds nothing and is never stored.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
	f    float64
}

func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func Int(v int32) Value      { return Value{kind: KindInt, i: int64(v)} }
func Long(v int64) Value     { return Value{kind: KindLong, i: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func Float(v float32) Value  { return Value{kind: KindFloat, f: float64(v)} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsZero() bool { return v.kind == 0 }

// AsBool returns the bool and whether v holds one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the int and whether v holds one.
func (v Value) AsInt() (int32, bool) { return int32(v.i), v.kind == KindInt }

// AsLong returns the long and whether v holds one.
func (v Value) AsLong() (int64, bool) { return v.i, v.kind == KindLong }

// AsString returns the string and whether v holds one.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsFloat returns the float and whether v holds one.
func (v Value) AsFloat() (float32, bool) { return float32(v.f), v.kind == KindFloat }

// encode renders v for the text column of the SQLite backend.
func (v Value) encode() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt, KindLong:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	default:
		return ""
	}
}

// decode parses a stored value of the given kind.
func decode(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		return Bool(b), err
	case KindInt:
		i, err := strconv.ParseInt(raw, 10, 32)
		return Int(int32(i)), err
	case KindLong:
		i, err := strconv.ParseInt(raw, 10, 64)
		return Long(i), err
	case KindString:
		return String(raw), nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 32)
		return Float(float32(f)), err
	default:
		return Value{}, fmt.Errorf("unknown setting kind %d", kind)
	}
}

// String implements fmt.Stringer for logging.
func (v Value) String() string {
	if v.IsZero() {
		return "<unset>"
	}
	return v.kind.String() + ":" + v.encode()
}
