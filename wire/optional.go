package wire

import (
	"github.com/go-flint/flint/errors"
)

// Optional wraps a Datum which may be absent. Absence is an explicit
// sentinel, distinct from any present value, and is never conflated with
// a default.
type Optional struct {
	value Datum
}

// Some wraps a present Datum
func Some(d Datum) Optional {
	return Optional{value: d}
}

// None is the explicit "no value" sentinel
func None() Optional {
	return Optional{}
}

// OptionalStringSeq wraps a native string slice, treating nil as absent
func OptionalStringSeq(vals []string) Optional {
	if vals == nil {
		return None()
	}
	return Some(StringSeq(vals))
}

// OptionalFloat64Seq wraps a native float64 slice, treating nil as absent
func OptionalFloat64Seq(vals []float64) Optional {
	if vals == nil {
		return None()
	}
	return Some(Float64Seq(vals))
}

// OptionalInt64 wraps a native int64 pointer, treating nil as absent
func OptionalInt64(val *int64) Optional {
	if val == nil {
		return None()
	}
	return Some(Int64(*val))
}

// IsEmpty returns true iff this Optional is the "no value" sentinel
func (o Optional) IsEmpty() bool {
	return o.value == nil
}

// Datum extracts the wrapped Datum, or fails if this Optional is empty
func (o Optional) Datum() (Datum, error) {
	if o.value == nil {
		return nil, errors.EmptyOptionalError{}
	}
	return o.value, nil
}

// Seq extracts a wrapped Seq, failing if this Optional is empty or wraps a scalar
func (o Optional) Seq() (Seq, error) {
	d, err := o.Datum()
	if err != nil {
		return Seq{}, err
	}
	seq, ok := d.(Seq)
	if !ok {
		return Seq{}, errors.WrongKindError{Expected: "sequence", Actual: "scalar"}
	}
	return seq, nil
}

// Value extracts a wrapped scalar Value, failing if this Optional is empty or wraps a Seq
func (o Optional) Value() (Value, error) {
	d, err := o.Datum()
	if err != nil {
		return Value{}, err
	}
	v, ok := d.(Value)
	if !ok {
		return Value{}, errors.WrongKindError{Expected: "scalar", Actual: "sequence"}
	}
	return v, nil
}

// StringsOrNil converts back to a native string slice, with nil for absence
func (o Optional) StringsOrNil() ([]string, error) {
	if o.IsEmpty() {
		return nil, nil
	}
	seq, err := o.Seq()
	if err != nil {
		return nil, err
	}
	return seq.Strings()
}

// Float64sOrNil converts back to a native float64 slice, with nil for absence
func (o Optional) Float64sOrNil() ([]float64, error) {
	if o.IsEmpty() {
		return nil, nil
	}
	seq, err := o.Seq()
	if err != nil {
		return nil, err
	}
	return seq.Float64s()
}

// Int64OrNil converts back to a native int64 pointer, with nil for absence
func (o Optional) Int64OrNil() (*int64, error) {
	if o.IsEmpty() {
		return nil, nil
	}
	v, err := o.Value()
	if err != nil {
		return nil, err
	}
	n, err := v.AsInt64()
	if err != nil {
		return nil, err
	}
	return &n, nil
}
