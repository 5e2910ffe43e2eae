package wire

// Seq is an ordered collection of Values in the engine's representation.
// Order and element values are preserved exactly through a round trip.
type Seq struct {
	values []Value
}

func (s Seq) datum() {}

// NewSeq builds a Seq directly from wire Values
func NewSeq(values ...Value) Seq {
	vs := make([]Value, len(values))
	copy(vs, values)
	return Seq{values: vs}
}

// StringSeq converts an ordered sequence of native strings
func StringSeq(vals []string) Seq {
	values := make([]Value, len(vals))
	for i, v := range vals {
		values[i] = String(v)
	}
	return Seq{values: values}
}

// Float64Seq converts an ordered sequence of native float64s
func Float64Seq(vals []float64) Seq {
	values := make([]Value, len(vals))
	for i, v := range vals {
		values[i] = Float64(v)
	}
	return Seq{values: values}
}

// Int64Seq converts an ordered sequence of native int64s
func Int64Seq(vals []int64) Seq {
	values := make([]Value, len(vals))
	for i, v := range vals {
		values[i] = Int64(v)
	}
	return Seq{values: values}
}

// SeqFromNative converts a mixed native sequence, failing with an
// UnsupportedTypeError on the first element with no engine representation
func SeqFromNative(vals []interface{}) (Seq, error) {
	values := make([]Value, len(vals))
	for i, v := range vals {
		value, err := FromNative(v)
		if err != nil {
			return Seq{}, err
		}
		values[i] = value
	}
	return Seq{values: values}, nil
}

// Len returns the number of Values in this Seq
func (s Seq) Len() int {
	return len(s.values)
}

// Value returns the Value at position i
func (s Seq) Value(i int) Value {
	return s.values[i]
}

// Strings extracts a native string slice, failing if any element holds another kind
func (s Seq) Strings() ([]string, error) {
	out := make([]string, len(s.values))
	for i, v := range s.values {
		str, err := v.AsString()
		if err != nil {
			return nil, err
		}
		out[i] = str
	}
	return out, nil
}

// Float64s extracts a native float64 slice, failing if any element holds another kind
func (s Seq) Float64s() ([]float64, error) {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		f, err := v.AsFloat64()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Int64s extracts a native int64 slice, failing if any element holds another kind
func (s Seq) Int64s() ([]int64, error) {
	out := make([]int64, len(s.values))
	for i, v := range s.values {
		n, err := v.AsInt64()
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Natives converts this Seq back to a native slice, element for element
func (s Seq) Natives() []interface{} {
	out := make([]interface{}, len(s.values))
	for i, v := range s.values {
		out[i] = v.Native()
	}
	return out
}
