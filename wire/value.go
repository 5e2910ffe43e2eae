package wire

import (
	"fmt"

	"github.com/go-flint/flint/errors"
)

// Kind enumerates the primitive types which may cross the engine boundary
type Kind int

const (
	// StringKind tags a Value holding a string
	StringKind Kind = iota
	// Float64Kind tags a Value holding a 64-bit float
	Float64Kind
	// Int64Kind tags a Value holding a 64-bit integer
	Int64Kind
)

// String returns a string representation of this Kind
func (k Kind) String() string {
	switch k {
	case Float64Kind:
		return "float64"
	case Int64Kind:
		return "int64"
	default:
		return "string"
	}
}

// Datum is any value in the engine's representation: a scalar Value or a Seq
type Datum interface {
	datum()
}

// Value is a single runtime-tagged scalar in the engine's representation.
// The zero Value is an empty string.
type Value struct {
	kind Kind
	s    string
	f    float64
	i    int64
}

func (v Value) datum() {}

// String wraps a native string
func String(s string) Value {
	return Value{kind: StringKind, s: s}
}

// Float64 wraps a native float64
func Float64(f float64) Value {
	return Value{kind: Float64Kind, f: f}
}

// Int64 wraps a native int64
func Int64(i int64) Value {
	return Value{kind: Int64Kind, i: i}
}

// FromNative converts a native scalar to its engine representation. The
// conversion is defined for string, float64, int64 and int, and fails with
// an UnsupportedTypeError for every other type rather than coercing.
func FromNative(native interface{}) (Value, error) {
	switch n := native.(type) {
	case string:
		return String(n), nil
	case float64:
		return Float64(n), nil
	case int64:
		return Int64(n), nil
	case int:
		return Int64(int64(n)), nil
	default:
		return Value{}, errors.UnsupportedTypeError{Value: native}
	}
}

// Kind returns the Kind tag of this Value
func (v Value) Kind() Kind {
	return v.kind
}

// AsString extracts a native string, or fails if this Value holds another kind
func (v Value) AsString() (string, error) {
	if v.kind != StringKind {
		return "", errors.WrongKindError{Expected: StringKind.String(), Actual: v.kind.String()}
	}
	return v.s, nil
}

// AsFloat64 extracts a native float64, or fails if this Value holds another kind
func (v Value) AsFloat64() (float64, error) {
	if v.kind != Float64Kind {
		return 0, errors.WrongKindError{Expected: Float64Kind.String(), Actual: v.kind.String()}
	}
	return v.f, nil
}

// AsInt64 extracts a native int64, or fails if this Value holds another kind
func (v Value) AsInt64() (int64, error) {
	if v.kind != Int64Kind {
		return 0, errors.WrongKindError{Expected: Int64Kind.String(), Actual: v.kind.String()}
	}
	return v.i, nil
}

// Native converts this Value back to the native type it was built from
func (v Value) Native() interface{} {
	switch v.kind {
	case Float64Kind:
		return v.f
	case Int64Kind:
		return v.i
	default:
		return v.s
	}
}

// ToString produces a string representation of this Value, for inspection
func (v Value) ToString() string {
	switch v.kind {
	case Float64Kind:
		return fmt.Sprintf("%g", v.f)
	case Int64Kind:
		return fmt.Sprintf("%d", v.i)
	default:
		return v.s
	}
}
