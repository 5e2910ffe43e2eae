package local

import (
	"fmt"
	"sync"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

// dataset is a partitioned columnar table owned by the engine. Writers are
// externally serialized (single-writer discipline); the mutex only guards
// schema and partition-list updates during column appends.
type dataset struct {
	mu         sync.Mutex
	schema     flint.Schema
	partitions []*partition
}

// partition holds a contiguous slice of dataset rows in columnar form
type partition struct {
	rows int
	cols []column
}

// column is a typed cell vector; exactly one backing slice is populated
type column struct {
	kind wire.Kind
	f    []float64
	i    []int64
	s    []string
}

// newColumn allocates a column of the given kind with room for n cells
func newColumn(kind wire.Kind, n int) column {
	col := column{kind: kind}
	switch kind {
	case wire.Float64Kind:
		col.f = make([]float64, 0, n)
	case wire.Int64Kind:
		col.i = make([]int64, 0, n)
	default:
		col.s = make([]string, 0, n)
	}
	return col
}

// appendCell type-checks a wire value against the column kind and stores it.
// Integer values are widened into float64 columns; no other coercion exists.
func (c *column) appendCell(v wire.Value) error {
	switch c.kind {
	case wire.Float64Kind:
		if v.Kind() == wire.Int64Kind {
			n, err := v.AsInt64()
			if err != nil {
				return err
			}
			c.f = append(c.f, float64(n))
			return nil
		}
		f, err := v.AsFloat64()
		if err != nil {
			return err
		}
		c.f = append(c.f, f)
	case wire.Int64Kind:
		n, err := v.AsInt64()
		if err != nil {
			return err
		}
		c.i = append(c.i, n)
	default:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		c.s = append(c.s, s)
	}
	return nil
}

// cell returns the wire value at row r
func (c *column) cell(r int) wire.Value {
	switch c.kind {
	case wire.Float64Kind:
		return wire.Float64(c.f[r])
	case wire.Int64Kind:
		return wire.Int64(c.i[r])
	default:
		return wire.String(c.s[r])
	}
}

// float64At reads a numeric cell as float64, widening int64 columns
func (c *column) float64At(r int) float64 {
	if c.kind == wire.Int64Kind {
		return float64(c.i[r])
	}
	return c.f[r]
}

// newDataset validates and ingests wire rows, splitting them into
// partitions of at most partitionSize rows. Invalid rows are reported
// together rather than one at a time.
func newDataset(schema flint.Schema, rows [][]wire.Value, partitionSize int) (*dataset, error) {
	schemaCols := schema.Columns()
	var multierr *multierror.Error
	ds := &dataset{schema: schema.Clone()}
	part := newPartition(schemaCols, partitionSize)
	for i, row := range rows {
		if len(row) != len(schemaCols) {
			multierr = multierror.Append(multierr, fmt.Errorf("row %d: %w", i,
				errors.IncompatibleRowError{Expected: len(schemaCols), Actual: len(row)}))
			continue
		}
		if part.rows == partitionSize {
			ds.partitions = append(ds.partitions, part)
			part = newPartition(schemaCols, partitionSize)
		}
		if err := part.appendRow(row); err != nil {
			multierr = multierror.Append(multierr, fmt.Errorf("row %d: %w", i, err))
		}
	}
	if err := multierr.ErrorOrNil(); err != nil {
		return nil, err
	}
	if part.rows > 0 || len(ds.partitions) == 0 {
		ds.partitions = append(ds.partitions, part)
	}
	return ds, nil
}

// newPartition allocates an empty partition matching the schema columns
func newPartition(schemaCols []flint.Column, capacity int) *partition {
	cols := make([]column, len(schemaCols))
	for i, sc := range schemaCols {
		cols[i] = newColumn(sc.Kind, capacity)
	}
	return &partition{cols: cols}
}

// appendRow stores one validated row. On a cell type error the partition is
// left with a ragged tail which the caller must discard with the error.
func (p *partition) appendRow(row []wire.Value) error {
	for j := range row {
		if err := p.cols[j].appendCell(row[j]); err != nil {
			return err
		}
	}
	p.rows++
	return nil
}

// columnNames returns the current ordered column names
func (d *dataset) columnNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schema.ColumnNames()
}

// currentSchema returns a copy of the current schema
func (d *dataset) currentSchema() flint.Schema {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schema.Clone()
}

// numRows counts rows across all partitions
func (d *dataset) numRows() int64 {
	var n int64
	for _, p := range d.partitions {
		n += int64(p.rows)
	}
	return n
}

// collect materializes all rows, in partition order, as wire values
func (d *dataset) collect() [][]wire.Value {
	rows := make([][]wire.Value, 0, d.numRows())
	for _, p := range d.partitions {
		for r := 0; r < p.rows; r++ {
			row := make([]wire.Value, len(p.cols))
			for j := range p.cols {
				row[j] = p.cols[j].cell(r)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// numericIndexes resolves column names to schema positions, requiring every
// named column to exist and be numeric
func (d *dataset) numericIndexes(names []string) ([]int, error) {
	d.mu.Lock()
	schema := d.schema
	d.mu.Unlock()
	idxs := make([]int, len(names))
	for i, name := range names {
		idx, err := schema.IndexOf(name)
		if err != nil {
			return nil, err
		}
		kind, err := schema.KindOf(name)
		if err != nil {
			return nil, err
		}
		if kind != wire.Float64Kind && kind != wire.Int64Kind {
			return nil, errors.NonNumericColumnError{Name: name}
		}
		idxs[i] = idx
	}
	return idxs, nil
}

// gatherNumeric reads the named numeric columns of one partition as
// row-major points
func (p *partition) gatherNumeric(idxs []int) [][]float64 {
	points := make([][]float64, p.rows)
	for r := 0; r < p.rows; r++ {
		point := make([]float64, len(idxs))
		for c, idx := range idxs {
			point[c] = p.cols[idx].float64At(r)
		}
		points[r] = point
	}
	return points
}

// gatherNumeric reads the named numeric columns of the whole dataset as
// row-major points, in partition order
func (d *dataset) gatherNumeric(names []string) ([][]float64, error) {
	idxs, err := d.numericIndexes(names)
	if err != nil {
		return nil, err
	}
	points := make([][]float64, 0, d.numRows())
	for _, p := range d.partitions {
		points = append(points, p.gatherNumeric(idxs)...)
	}
	return points, nil
}

// appendFloat64Column appends a computed column, one cell vector per
// partition, updating the schema under the dataset lock
func (d *dataset) appendFloat64Column(name string, parts [][]float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	newSchema, err := d.schema.CreateColumn(name, wire.Float64Kind)
	if err != nil {
		return err
	}
	for i, p := range d.partitions {
		p.cols = append(p.cols, column{kind: wire.Float64Kind, f: parts[i]})
	}
	d.schema = newSchema
	return nil
}

// appendInt64Column appends a computed column, one cell vector per
// partition, updating the schema under the dataset lock
func (d *dataset) appendInt64Column(name string, parts [][]int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	newSchema, err := d.schema.CreateColumn(name, wire.Int64Kind)
	if err != nil {
		return err
	}
	for i, p := range d.partitions {
		p.cols = append(p.cols, column{kind: wire.Int64Kind, i: parts[i]})
	}
	d.schema = newSchema
	return nil
}
