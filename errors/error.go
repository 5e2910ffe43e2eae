package errors

import (
	"fmt"
)

// UnsupportedTypeError occurs when a native value has no engine wire representation
type UnsupportedTypeError struct{ Value interface{} }

// Error returns a textual representation of this UnsupportedTypeError
func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("No engine representation for value %v of type %T", e.Value, e.Value)
}

// WrongKindError occurs when a wire value is extracted as a kind other than its own
type WrongKindError struct{ Expected, Actual string }

// Error returns a textual representation of this WrongKindError
func (e WrongKindError) Error() string {
	return fmt.Sprintf("Wire value is %s, not %s", e.Actual, e.Expected)
}

// EmptyOptionalError occurs when a value is extracted from an empty Optional
type EmptyOptionalError struct{}

// Error returns a textual representation of this EmptyOptionalError
func (e EmptyOptionalError) Error() string {
	return "Optional holds no value"
}

// ModelTypeMismatchError occurs when a facade wraps a model handle of the wrong type
type ModelTypeMismatchError struct{ Expected, Actual string }

// Error returns a textual representation of this ModelTypeMismatchError
func (e ModelTypeMismatchError) Error() string {
	return fmt.Sprintf("Model handle is a %s model, not a %s model", e.Actual, e.Expected)
}

// UnknownHandleError occurs when an engine is passed a handle it does not own
type UnknownHandleError struct{ ID string }

// Error returns a textual representation of this UnknownHandleError
func (e UnknownHandleError) Error() string {
	return fmt.Sprintf("Engine does not own a resource with ID %s", e.ID)
}

// UnknownColumnError occurs when a named column does not exist in a Schema
type UnknownColumnError struct{ Name string }

// Error returns a textual representation of this UnknownColumnError
func (e UnknownColumnError) Error() string {
	return fmt.Sprintf("Column %s does not exist", e.Name)
}

// DuplicateColumnError occurs when a created column name already exists in a Schema
type DuplicateColumnError struct{ Name string }

// Error returns a textual representation of this DuplicateColumnError
func (e DuplicateColumnError) Error() string {
	return fmt.Sprintf("Column %s already exists", e.Name)
}

// IncompatibleRowError occurs when a Row's width does not match an expected Schema
type IncompatibleRowError struct{ Expected, Actual int }

// Error returns a textual representation of this IncompatibleRowError
func (e IncompatibleRowError) Error() string {
	return fmt.Sprintf("Row width %d is not compatible with Schema width %d", e.Actual, e.Expected)
}

// NonNumericColumnError occurs when an observation column is not a numeric kind
type NonNumericColumnError struct{ Name string }

// Error returns a textual representation of this NonNumericColumnError
func (e NonNumericColumnError) Error() string {
	return fmt.Sprintf("Column %s is not numeric", e.Name)
}

// InvalidParameterError occurs when a training parameter fails engine-side validation
type InvalidParameterError struct{ Name, Reason string }

// Error returns a textual representation of this InvalidParameterError
func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("Parameter %s %s", e.Name, e.Reason)
}

// EmptyDatasetError occurs when training is attempted on a dataset with no rows
type EmptyDatasetError struct{}

// Error returns a textual representation of this EmptyDatasetError
func (e EmptyDatasetError) Error() string {
	return "Dataset contains no rows"
}

// UnknownModelTypeError occurs when a persisted model declares a type no loader recognizes
type UnknownModelTypeError struct{ Type string }

// Error returns a textual representation of this UnknownModelTypeError
func (e UnknownModelTypeError) Error() string {
	return fmt.Sprintf("No loader registered for model type %s", e.Type)
}

// CorruptModelFileError occurs when a persisted model fails envelope or checksum validation
type CorruptModelFileError struct{ Path, Reason string }

// Error returns a textual representation of this CorruptModelFileError
func (e CorruptModelFileError) Error() string {
	return fmt.Sprintf("Model file %s is not loadable: %s", e.Path, e.Reason)
}
