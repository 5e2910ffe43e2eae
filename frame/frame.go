// Package frame wraps engine-owned datasets in a caller-friendly Frame. A
// Frame references its dataset without owning it: training and prediction
// calls made through the model facades mutate the underlying dataset in
// place, and every accessor re-reads the handle rather than caching.
package frame

import (
	"fmt"
	"strings"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

// A Frame is a caller-side wrapper around an engine-owned dataset handle
type Frame struct {
	sess   *flint.Session
	handle flint.DatasetHandle
}

// Create builds an engine dataset from literal rows and a schema, converting
// every cell through the wire adapter before it crosses the boundary. Rows
// which do not fit the schema are reported together rather than one at a time.
func Create(sess *flint.Session, rows [][]interface{}, schema flint.Schema) (*Frame, error) {
	var multierr *multierror.Error
	wireRows := make([][]wire.Value, 0, len(rows))
	for i, row := range rows {
		if len(row) != schema.NumColumns() {
			multierr = multierror.Append(multierr, fmt.Errorf("row %d: %w", i,
				errors.IncompatibleRowError{Expected: schema.NumColumns(), Actual: len(row)}))
			continue
		}
		wireRow := make([]wire.Value, len(row))
		ok := true
		for j, cell := range row {
			value, err := wire.FromNative(cell)
			if err != nil {
				multierr = multierror.Append(multierr, fmt.Errorf("row %d: %w", i, err))
				ok = false
				break
			}
			wireRow[j] = value
		}
		if ok {
			wireRows = append(wireRows, wireRow)
		}
	}
	if err := multierr.ErrorOrNil(); err != nil {
		return nil, err
	}
	handle, err := sess.Engine().CreateDataset(schema, wireRows)
	if err != nil {
		return nil, err
	}
	return &Frame{sess: sess, handle: handle}, nil
}

// FromHandle wraps an existing engine dataset handle
func FromHandle(sess *flint.Session, handle flint.DatasetHandle) *Frame {
	return &Frame{sess: sess, handle: handle}
}

// Session returns the Session this Frame is bound to
func (f *Frame) Session() *flint.Session {
	return f.sess
}

// Handle returns the underlying engine dataset handle
func (f *Frame) Handle() flint.DatasetHandle {
	return f.handle
}

// ColumnNames re-reads the current column names from the engine
func (f *Frame) ColumnNames() ([]string, error) {
	seq, err := f.handle.ColumnNames()
	if err != nil {
		return nil, err
	}
	return seq.Strings()
}

// NumRows returns the number of rows in the underlying dataset
func (f *Frame) NumRows() (int64, error) {
	return f.handle.NumRows()
}

// Collect materializes all rows of the underlying dataset as native values
func (f *Frame) Collect() ([][]interface{}, error) {
	wireRows, err := f.handle.Collect()
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, len(wireRows))
	for i, wireRow := range wireRows {
		row := make([]interface{}, len(wireRow))
		for j, value := range wireRow {
			row[j] = value.Native()
		}
		rows[i] = row
	}
	return rows, nil
}

// Inspect renders the current contents of the Frame as an aligned table
func (f *Frame) Inspect() (string, error) {
	names, err := f.ColumnNames()
	if err != nil {
		return "", err
	}
	wireRows, err := f.handle.Collect()
	if err != nil {
		return "", err
	}
	cells := make([][]string, len(wireRows))
	widths := make([]int, len(names))
	for j, name := range names {
		widths[j] = len(name)
	}
	for i, wireRow := range wireRows {
		cells[i] = make([]string, len(wireRow))
		for j, value := range wireRow {
			cells[i][j] = value.ToString()
			if len(cells[i][j]) > widths[j] {
				widths[j] = len(cells[i][j])
			}
		}
	}
	var out strings.Builder
	for j, name := range names {
		if j > 0 {
			out.WriteString("  ")
		}
		fmt.Fprintf(&out, "%-*s", widths[j], name)
	}
	out.WriteString("\n")
	for i := range cells {
		for j := range cells[i] {
			if j > 0 {
				out.WriteString("  ")
			}
			fmt.Fprintf(&out, "%-*s", widths[j], cells[i][j])
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}
