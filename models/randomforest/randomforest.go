// Package randomforest exposes random forest regression over an engine-side
// model handle, in the same facade shape as the clustering models: training
// and prediction are delegated wholesale to the engine.
package randomforest

import (
	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/frame"
	"github.com/go-flint/flint/wire"
)

func init() {
	flint.RegisterModelLoader(flint.RandomForestRegressorModelType,
		func(sess *flint.Session, handle flint.ModelHandle) (interface{}, error) {
			return FromHandle(sess, handle)
		})
}

// TrainOptions configures random forest regressor training. Zero-valued
// fields fall back to the engine defaults; a nil Seed crosses the boundary
// as the explicit "no value" sentinel.
type TrainOptions struct {
	NumTrees int64  // number of trees in the forest
	MaxDepth int64  // per-tree depth bound
	Seed     *int64 // randomness seed
}

// DefaultTrainOptions returns the engine defaults for regressor training
func DefaultTrainOptions() *TrainOptions {
	return &TrainOptions{
		NumTrees: 1,
		MaxDepth: 4,
	}
}

// Train creates a Model by training on the given frame. labelColumn names
// the value being predicted; columns names the observation columns.
func Train(f *frame.Frame, labelColumn string, columns []string, opts *TrainOptions) (*Model, error) {
	defaults := DefaultTrainOptions()
	if opts == nil {
		opts = defaults
	}
	o := *opts
	if o.NumTrees == 0 {
		o.NumTrees = defaults.NumTrees
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = defaults.MaxDepth
	}
	params := flint.RandomForestParams{
		LabelColumn: labelColumn,
		Columns:     wire.StringSeq(columns),
		NumTrees:    o.NumTrees,
		MaxDepth:    o.MaxDepth,
		Seed:        wire.OptionalInt64(o.Seed),
	}
	handle, err := f.Session().Engine().TrainRandomForestRegressor(f.Handle(), params)
	if err != nil {
		return nil, err
	}
	return FromHandle(f.Session(), handle)
}

// A Model is a facade over an engine-side trained random forest regressor
type Model struct {
	sess   *flint.Session
	handle flint.RandomForestRegressorHandle
}

// FromHandle wraps an engine model handle, verifying at wrap time that it
// references a random forest regression model
func FromHandle(sess *flint.Session, handle flint.ModelHandle) (*Model, error) {
	rf, ok := handle.(flint.RandomForestRegressorHandle)
	if !ok || handle.Type() != flint.RandomForestRegressorModelType {
		return nil, errors.ModelTypeMismatchError{
			Expected: string(flint.RandomForestRegressorModelType),
			Actual:   string(handle.Type()),
		}
	}
	return &Model{sess: sess, handle: rf}, nil
}

// Handle returns the wrapped engine model handle
func (m *Model) Handle() flint.ModelHandle {
	return m.handle
}

// LabelColumn returns the name of the label column used in training
func (m *Model) LabelColumn() (string, error) {
	return m.handle.LabelColumn()
}

// Columns returns the names of the observation columns used in training
func (m *Model) Columns() ([]string, error) {
	seq, err := m.handle.Columns()
	if err != nil {
		return nil, err
	}
	return seq.Strings()
}

// NumTrees returns the number of trees in the forest
func (m *Model) NumTrees() (int64, error) {
	return m.handle.NumTrees()
}

// MaxDepth returns the per-tree depth bound
func (m *Model) MaxDepth() (int64, error) {
	return m.handle.MaxDepth()
}

// Seed returns the training seed, or nil when it was time-derived
func (m *Model) Seed() (*int64, error) {
	opt, err := m.handle.Seed()
	if err != nil {
		return nil, err
	}
	return opt.Int64OrNil()
}

// Predict appends a predicted_value column to the frame's dataset in place.
// A nil columns slice selects the training-time observation columns.
func (m *Model) Predict(f *frame.Frame, columns []string) error {
	return m.handle.Predict(f.Handle(), wire.OptionalStringSeq(columns))
}

// Save persists the model through the engine. The on-disk format is a
// contract owned by the engine; reload with Session.Load.
func (m *Model) Save(path string) error {
	return m.handle.Save(path)
}
