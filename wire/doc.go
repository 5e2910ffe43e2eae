// Package wire is the marshaling adapter between native Go values and the
// representation expected by the computation engine. Conversions are total
// and lossless for the supported primitive types (string, float64, int64),
// and fail with explicit type errors for anything else. Absent values cross
// the boundary as an explicit Optional sentinel, never by omission.
package wire
