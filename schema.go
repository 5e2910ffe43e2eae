package flint

import (
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

// Column describes a single named, typed column within a Schema
type Column struct {
	Name string
	Kind wire.Kind
}

// Schema is an ordered mapping from column names to wire kinds. Schemas are
// immutable: CreateColumn returns a new Schema rather than mutating in place.
type Schema struct {
	columns []Column
}

// CreateSchema builds a Schema from ordered column definitions, failing if
// any column name repeats
func CreateSchema(columns ...Column) (Schema, error) {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col.Name] {
			return Schema{}, errors.DuplicateColumnError{Name: col.Name}
		}
		seen[col.Name] = true
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return Schema{columns: cols}, nil
}

// NumColumns returns the number of columns in this Schema
func (s Schema) NumColumns() int {
	return len(s.columns)
}

// Columns returns a copy of the ordered column definitions of this Schema
func (s Schema) Columns() []Column {
	cols := make([]Column, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// ColumnNames returns the ordered column names of this Schema
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.Name
	}
	return names
}

// HasColumn returns true iff a column with the given name exists in this Schema
func (s Schema) HasColumn(name string) bool {
	for _, col := range s.columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the named column within this Schema
func (s Schema) IndexOf(name string) (int, error) {
	for i, col := range s.columns {
		if col.Name == name {
			return i, nil
		}
	}
	return -1, errors.UnknownColumnError{Name: name}
}

// KindOf returns the wire kind of the named column
func (s Schema) KindOf(name string) (wire.Kind, error) {
	for _, col := range s.columns {
		if col.Name == name {
			return col.Kind, nil
		}
	}
	return 0, errors.UnknownColumnError{Name: name}
}

// CreateColumn returns a new Schema with an additional column appended,
// failing if the name already exists
func (s Schema) CreateColumn(name string, kind wire.Kind) (Schema, error) {
	if s.HasColumn(name) {
		return Schema{}, errors.DuplicateColumnError{Name: name}
	}
	cols := make([]Column, len(s.columns), len(s.columns)+1)
	copy(cols, s.columns)
	cols = append(cols, Column{Name: name, Kind: kind})
	return Schema{columns: cols}, nil
}

// Clone returns a copy of this Schema
func (s Schema) Clone() Schema {
	return Schema{columns: s.Columns()}
}
