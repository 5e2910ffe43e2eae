package local

import (
	"github.com/go-flint/flint"
	"github.com/go-flint/flint/wire"
)

// datasetHandle is the engine-owned reference callers hold to a dataset
type datasetHandle struct {
	id  string
	eng *Engine
}

var _ flint.DatasetHandle = (*datasetHandle)(nil)

// ID returns the engine-assigned identifier of this dataset
func (h *datasetHandle) ID() string {
	return h.id
}

// Schema returns the current schema of this dataset
func (h *datasetHandle) Schema() (flint.Schema, error) {
	ds, err := h.eng.dataset(h.id)
	if err != nil {
		return flint.Schema{}, err
	}
	return ds.currentSchema(), nil
}

// ColumnNames returns the current column names of this dataset
func (h *datasetHandle) ColumnNames() (wire.Seq, error) {
	ds, err := h.eng.dataset(h.id)
	if err != nil {
		return wire.Seq{}, err
	}
	return wire.StringSeq(ds.columnNames()), nil
}

// NumRows returns the number of rows in this dataset
func (h *datasetHandle) NumRows() (int64, error) {
	ds, err := h.eng.dataset(h.id)
	if err != nil {
		return 0, err
	}
	return ds.numRows(), nil
}

// Collect materializes all rows of this dataset as wire values
func (h *datasetHandle) Collect() ([][]wire.Value, error) {
	ds, err := h.eng.dataset(h.id)
	if err != nil {
		return nil, err
	}
	return ds.collect(), nil
}

// kmeansHandle is the engine-owned reference callers hold to a trained
// k-means model
type kmeansHandle struct {
	id  string
	eng *Engine
}

var _ flint.KMeansHandle = (*kmeansHandle)(nil)

// ID returns the engine-assigned identifier of this model
func (h *kmeansHandle) ID() string {
	return h.id
}

// Type returns the model family tag
func (h *kmeansHandle) Type() flint.ModelType {
	return flint.KMeansModelType
}

// Save persists this model to the given path
func (h *kmeansHandle) Save(path string) error {
	return h.eng.saveModel(h.id, path)
}

// Columns returns the observation column names used in training
func (h *kmeansHandle) Columns() (wire.Seq, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return wire.Seq{}, err
	}
	return wire.StringSeq(m.columns), nil
}

// Scalings returns the per-column scaling factors, or the empty Optional
func (h *kmeansHandle) Scalings() (wire.Optional, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return wire.None(), err
	}
	return wire.OptionalFloat64Seq(m.scalings), nil
}

// K returns the number of clusters
func (h *kmeansHandle) K() (int64, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return 0, err
	}
	return m.k, nil
}

// MaxIterations returns the training iteration bound
func (h *kmeansHandle) MaxIterations() (int64, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return 0, err
	}
	return m.maxIterations, nil
}

// Epsilon returns the convergence distance threshold
func (h *kmeansHandle) Epsilon() (float64, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return 0, err
	}
	return m.epsilon, nil
}

// InitializationMode returns the centroid initialization technique
func (h *kmeansHandle) InitializationMode() (string, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return "", err
	}
	return m.initMode, nil
}

// Centroids returns the learned cluster centers
func (h *kmeansHandle) Centroids() ([]wire.Seq, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return nil, err
	}
	out := make([]wire.Seq, len(m.centroids))
	for i, centroid := range m.centroids {
		out[i] = wire.Float64Seq(centroid)
	}
	return out, nil
}

// Predict appends a cluster column to the dataset in place
func (h *kmeansHandle) Predict(ds flint.DatasetHandle, columns wire.Optional) error {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return err
	}
	d, err := h.eng.datasetFor(ds)
	if err != nil {
		return err
	}
	return m.predict(h.eng, d, columns)
}

// ComputeClusterSizes counts dataset rows per cluster, ordered by cluster index
func (h *kmeansHandle) ComputeClusterSizes(ds flint.DatasetHandle, columns wire.Optional) (wire.Seq, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return wire.Seq{}, err
	}
	d, err := h.eng.datasetFor(ds)
	if err != nil {
		return wire.Seq{}, err
	}
	sizes, err := m.computeClusterSizes(h.eng, d, columns)
	if err != nil {
		return wire.Seq{}, err
	}
	return wire.Int64Seq(sizes), nil
}

// ComputeWsse computes the within-set sum of squared error over the dataset
func (h *kmeansHandle) ComputeWsse(ds flint.DatasetHandle, columns wire.Optional) (float64, error) {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return 0, err
	}
	d, err := h.eng.datasetFor(ds)
	if err != nil {
		return 0, err
	}
	return m.computeWsse(h.eng, d, columns)
}

// AddDistanceColumns appends one squared-distance column per cluster in place
func (h *kmeansHandle) AddDistanceColumns(ds flint.DatasetHandle, columns wire.Optional) error {
	m, err := h.eng.kmeansModelByID(h.id)
	if err != nil {
		return err
	}
	d, err := h.eng.datasetFor(ds)
	if err != nil {
		return err
	}
	return m.addDistanceColumns(h.eng, d, columns)
}

// forestHandle is the engine-owned reference callers hold to a trained
// random forest regression model
type forestHandle struct {
	id  string
	eng *Engine
}

var _ flint.RandomForestRegressorHandle = (*forestHandle)(nil)

// ID returns the engine-assigned identifier of this model
func (h *forestHandle) ID() string {
	return h.id
}

// Type returns the model family tag
func (h *forestHandle) Type() flint.ModelType {
	return flint.RandomForestRegressorModelType
}

// Save persists this model to the given path
func (h *forestHandle) Save(path string) error {
	return h.eng.saveModel(h.id, path)
}

// LabelColumn returns the label column name used in training
func (h *forestHandle) LabelColumn() (string, error) {
	m, err := h.eng.forestModelByID(h.id)
	if err != nil {
		return "", err
	}
	return m.labelColumn, nil
}

// Columns returns the observation column names used in training
func (h *forestHandle) Columns() (wire.Seq, error) {
	m, err := h.eng.forestModelByID(h.id)
	if err != nil {
		return wire.Seq{}, err
	}
	return wire.StringSeq(m.columns), nil
}

// NumTrees returns the number of trees in the forest
func (h *forestHandle) NumTrees() (int64, error) {
	m, err := h.eng.forestModelByID(h.id)
	if err != nil {
		return 0, err
	}
	return m.numTrees, nil
}

// MaxDepth returns the per-tree depth bound
func (h *forestHandle) MaxDepth() (int64, error) {
	m, err := h.eng.forestModelByID(h.id)
	if err != nil {
		return 0, err
	}
	return m.maxDepth, nil
}

// Seed returns the training seed, or the empty Optional
func (h *forestHandle) Seed() (wire.Optional, error) {
	m, err := h.eng.forestModelByID(h.id)
	if err != nil {
		return wire.None(), err
	}
	return wire.OptionalInt64(m.seed), nil
}

// Predict appends a predicted_value column to the dataset in place
func (h *forestHandle) Predict(ds flint.DatasetHandle, columns wire.Optional) error {
	m, err := h.eng.forestModelByID(h.id)
	if err != nil {
		return err
	}
	d, err := h.eng.datasetFor(ds)
	if err != nil {
		return err
	}
	return m.predict(h.eng, d, columns)
}
