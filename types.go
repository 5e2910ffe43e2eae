package flint

import (
	"github.com/go-flint/flint/wire"
)

// ModelType tags the family of an engine-side trained model
type ModelType string

const (
	// KMeansModelType tags k-means clustering models
	KMeansModelType ModelType = "kmeans"
	// RandomForestRegressorModelType tags random forest regression models
	RandomForestRegressorModelType ModelType = "random_forest_regressor"
)

// Supported k-means initialization modes. KMeansInitRandom samples initial
// centroids from the dataset rows; KMeansInitParallel is a parallel variant
// of k-means++.
const (
	KMeansInitRandom   = "random"
	KMeansInitParallel = "k-means||"
)

// A DatasetHandle is an opaque reference to a distributed tabular structure
// owned by the engine. Caller-side wrappers reference it without owning it,
// and training/prediction calls mutate the underlying dataset in place.
type DatasetHandle interface {
	ID() string                        // ID returns the engine-assigned identifier of this dataset
	Schema() (Schema, error)           // Schema returns the current schema of this dataset
	ColumnNames() (wire.Seq, error)    // ColumnNames returns the current column names of this dataset
	NumRows() (int64, error)           // NumRows returns the number of rows in this dataset
	Collect() ([][]wire.Value, error)  // Collect materializes all rows of this dataset as wire values
}

// A ModelHandle is an opaque reference to engine-side trained-model state.
// Models are immutable once trained; Save delegates persistence entirely to
// the engine, whose on-disk format is opaque to callers.
type ModelHandle interface {
	ID() string             // ID returns the engine-assigned identifier of this model
	Type() ModelType        // Type returns the model family tag, checked by facades at wrap time
	Save(path string) error // Save persists this model to the given path
}

// A KMeansHandle is a ModelHandle to a trained k-means clustering model.
// An empty columns Optional on any dataset operation selects the
// training-time observation columns.
type KMeansHandle interface {
	ModelHandle
	Columns() (wire.Seq, error)                                                // Columns returns the observation column names used in training
	Scalings() (wire.Optional, error)                                          // Scalings returns the per-column scaling factors, or the empty Optional
	K() (int64, error)                                                         // K returns the number of clusters
	MaxIterations() (int64, error)                                             // MaxIterations returns the training iteration bound
	Epsilon() (float64, error)                                                 // Epsilon returns the convergence distance threshold
	InitializationMode() (string, error)                                       // InitializationMode returns the centroid initialization technique
	Centroids() ([]wire.Seq, error)                                            // Centroids returns the learned cluster centers
	Predict(ds DatasetHandle, columns wire.Optional) error                     // Predict appends a cluster column to the dataset in place
	ComputeClusterSizes(ds DatasetHandle, columns wire.Optional) (wire.Seq, error) // ComputeClusterSizes counts rows per cluster, ordered by cluster index
	ComputeWsse(ds DatasetHandle, columns wire.Optional) (float64, error)      // ComputeWsse computes the within-set sum of squared error
	AddDistanceColumns(ds DatasetHandle, columns wire.Optional) error          // AddDistanceColumns appends one squared-distance column per cluster in place
}

// A RandomForestRegressorHandle is a ModelHandle to a trained random forest
// regression model.
type RandomForestRegressorHandle interface {
	ModelHandle
	LabelColumn() (string, error)                          // LabelColumn returns the label column name used in training
	Columns() (wire.Seq, error)                            // Columns returns the observation column names used in training
	NumTrees() (int64, error)                              // NumTrees returns the number of trees in the forest
	MaxDepth() (int64, error)                              // MaxDepth returns the per-tree depth bound
	Seed() (wire.Optional, error)                          // Seed returns the training seed, or the empty Optional
	Predict(ds DatasetHandle, columns wire.Optional) error // Predict appends a predicted_value column to the dataset in place
}

// KMeansParams is the marshaled parameter bundle for k-means training.
// Optional fields cross the boundary as explicit wire Optionals.
type KMeansParams struct {
	Columns            wire.Seq      // names of the observation columns
	K                  int64         // number of clusters
	Scalings           wire.Optional // float64 sequence multiplied into the observation columns, or empty
	MaxIterations      int64         // iteration bound
	Epsilon            float64       // convergence distance threshold
	InitializationMode string        // centroid initialization technique
	Seed               wire.Optional // int64 randomness seed, or empty
}

// RandomForestParams is the marshaled parameter bundle for random forest
// regressor training.
type RandomForestParams struct {
	LabelColumn string        // name of the label column
	Columns     wire.Seq      // names of the observation columns
	NumTrees    int64         // number of trees in the forest
	MaxDepth    int64         // per-tree depth bound
	Seed        wire.Optional // int64 randomness seed, or empty
}

// Engine is the boundary to the computation engine, which performs all
// training, prediction and aggregation work. Every call is synchronous and
// blocking, and engine-side failures propagate unmodified: this layer adds
// no cancellation, retry or interpretation of its own.
type Engine interface {
	CreateDataset(schema Schema, rows [][]wire.Value) (DatasetHandle, error)                // CreateDataset ingests wire rows into a new engine-owned dataset
	TrainKMeans(ds DatasetHandle, params KMeansParams) (ModelHandle, error)                 // TrainKMeans trains a k-means clustering model
	TrainRandomForestRegressor(ds DatasetHandle, params RandomForestParams) (ModelHandle, error) // TrainRandomForestRegressor trains a random forest regression model
	LoadModel(path string) (ModelHandle, error)                                             // LoadModel reconstructs a handle equivalent to the one that was saved
}
