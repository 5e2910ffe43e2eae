// Package kmeans exposes k-means clustering over an engine-side model
// handle. Train delegates the entire computation to the engine; the Model
// facade holds no numeric state of its own and re-reads the handle on every
// property access.
package kmeans

import (
	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/frame"
	"github.com/go-flint/flint/wire"
)

func init() {
	flint.RegisterModelLoader(flint.KMeansModelType,
		func(sess *flint.Session, handle flint.ModelHandle) (interface{}, error) {
			return FromHandle(sess, handle)
		})
}

// TrainOptions configures k-means training. Zero-valued fields fall back to
// the engine defaults; nil Scalings and Seed cross the boundary as the
// explicit "no value" sentinel.
type TrainOptions struct {
	K                  int64     // number of clusters
	Scalings           []float64 // multiplied into the corresponding observation columns
	MaxIterations      int64     // iteration bound
	Epsilon            float64   // convergence distance threshold
	InitializationMode string    // flint.KMeansInitRandom or flint.KMeansInitParallel
	Seed               *int64    // randomness seed
}

// DefaultTrainOptions returns the engine defaults for k-means training
func DefaultTrainOptions() *TrainOptions {
	return &TrainOptions{
		K:                  2,
		MaxIterations:      20,
		Epsilon:            1e-4,
		InitializationMode: flint.KMeansInitParallel,
	}
}

// Train creates a Model by training on the given frame. columns names the
// observation columns containing the training data.
func Train(f *frame.Frame, columns []string, opts *TrainOptions) (*Model, error) {
	defaults := DefaultTrainOptions()
	if opts == nil {
		opts = defaults
	}
	o := *opts
	if o.K == 0 {
		o.K = defaults.K
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = defaults.MaxIterations
	}
	if o.Epsilon == 0 {
		o.Epsilon = defaults.Epsilon
	}
	if o.InitializationMode == "" {
		o.InitializationMode = defaults.InitializationMode
	}
	params := flint.KMeansParams{
		Columns:            wire.StringSeq(columns),
		K:                  o.K,
		Scalings:           wire.OptionalFloat64Seq(o.Scalings),
		MaxIterations:      o.MaxIterations,
		Epsilon:            o.Epsilon,
		InitializationMode: o.InitializationMode,
		Seed:               wire.OptionalInt64(o.Seed),
	}
	handle, err := f.Session().Engine().TrainKMeans(f.Handle(), params)
	if err != nil {
		return nil, err
	}
	return FromHandle(f.Session(), handle)
}

// A Model is a facade over an engine-side trained k-means model
type Model struct {
	sess   *flint.Session
	handle flint.KMeansHandle
}

// FromHandle wraps an engine model handle, verifying at wrap time that it
// references a k-means model
func FromHandle(sess *flint.Session, handle flint.ModelHandle) (*Model, error) {
	km, ok := handle.(flint.KMeansHandle)
	if !ok || handle.Type() != flint.KMeansModelType {
		return nil, errors.ModelTypeMismatchError{
			Expected: string(flint.KMeansModelType),
			Actual:   string(handle.Type()),
		}
	}
	return &Model{sess: sess, handle: km}, nil
}

// Handle returns the wrapped engine model handle
func (m *Model) Handle() flint.ModelHandle {
	return m.handle
}

// Columns returns the names of the observation columns used in training
func (m *Model) Columns() ([]string, error) {
	seq, err := m.handle.Columns()
	if err != nil {
		return nil, err
	}
	return seq.Strings()
}

// Scalings returns the per-column scaling factors, or nil when training was
// unscaled
func (m *Model) Scalings() ([]float64, error) {
	opt, err := m.handle.Scalings()
	if err != nil {
		return nil, err
	}
	return opt.Float64sOrNil()
}

// K returns the number of clusters
func (m *Model) K() (int64, error) {
	return m.handle.K()
}

// MaxIterations returns the training iteration bound
func (m *Model) MaxIterations() (int64, error) {
	return m.handle.MaxIterations()
}

// Epsilon returns the convergence distance threshold
func (m *Model) Epsilon() (float64, error) {
	return m.handle.Epsilon()
}

// InitializationMode returns the centroid initialization technique
func (m *Model) InitializationMode() (string, error) {
	return m.handle.InitializationMode()
}

// Centroids returns the learned cluster centers, one per cluster, in the
// scaled observation space
func (m *Model) Centroids() ([][]float64, error) {
	seqs, err := m.handle.Centroids()
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(seqs))
	for i, seq := range seqs {
		centroid, err := seq.Float64s()
		if err != nil {
			return nil, err
		}
		out[i] = centroid
	}
	return out, nil
}

// Predict appends a cluster column to the frame's dataset in place. A nil
// columns slice selects the training-time observation columns.
func (m *Model) Predict(f *frame.Frame, columns []string) error {
	return m.handle.Predict(f.Handle(), wire.OptionalStringSeq(columns))
}

// ComputeSizes counts the frame's rows per cluster, ordered by cluster
// index, using the same column defaulting as Predict
func (m *Model) ComputeSizes(f *frame.Frame, columns []string) ([]int64, error) {
	seq, err := m.handle.ComputeClusterSizes(f.Handle(), wire.OptionalStringSeq(columns))
	if err != nil {
		return nil, err
	}
	return seq.Int64s()
}

// ComputeWsse computes the within-set sum of squared error over the frame,
// using the same column defaulting as Predict
func (m *Model) ComputeWsse(f *frame.Frame, columns []string) (float64, error) {
	return m.handle.ComputeWsse(f.Handle(), wire.OptionalStringSeq(columns))
}

// AddDistanceColumns appends one distanceN column per cluster to the
// frame's dataset in place, holding the squared Euclidean distance
// (optionally scaled) to each centroid
func (m *Model) AddDistanceColumns(f *frame.Frame, columns []string) error {
	return m.handle.AddDistanceColumns(f.Handle(), wire.OptionalStringSeq(columns))
}

// Save persists the model through the engine. The on-disk format is a
// contract owned by the engine; reload with Session.Load.
func (m *Model) Save(path string) error {
	return m.handle.Save(path)
}
