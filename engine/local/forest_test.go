package local

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

func createLabeledDataset(t *testing.T, e *Engine, xs, ys []float64) flint.DatasetHandle {
	schema, err := flint.CreateSchema(
		flint.Column{Name: "x", Kind: wire.Float64Kind},
		flint.Column{Name: "y", Kind: wire.Float64Kind},
	)
	require.Nil(t, err)
	rows := make([][]wire.Value, len(xs))
	for i := range xs {
		rows[i] = []wire.Value{wire.Float64(xs[i]), wire.Float64(ys[i])}
	}
	handle, err := e.CreateDataset(schema, rows)
	require.Nil(t, err)
	return handle
}

func forestParams(numTrees, maxDepth int64, seed int64) flint.RandomForestParams {
	return flint.RandomForestParams{
		LabelColumn: "y",
		Columns:     wire.StringSeq([]string{"x"}),
		NumTrees:    numTrees,
		MaxDepth:    maxDepth,
		Seed:        wire.OptionalInt64(&seed),
	}
}

func collectColumn(t *testing.T, e *Engine, ds flint.DatasetHandle, name string) []float64 {
	d, err := e.datasetFor(ds)
	require.Nil(t, err)
	idx, err := d.currentSchema().IndexOf(name)
	require.Nil(t, err)
	rows := d.collect()
	out := make([]float64, len(rows))
	for i, row := range rows {
		f, err := row[idx].AsFloat64()
		require.Nil(t, err)
		out[i] = f
	}
	return out
}

func TestTrainForestValidationAggregatesFailures(t *testing.T) {
	e := New(nil)
	ds := createLabeledDataset(t, e, []float64{1}, []float64{1})

	_, err := e.TrainRandomForestRegressor(ds, flint.RandomForestParams{
		LabelColumn: "",
		Columns:     wire.StringSeq(nil),
		NumTrees:    0,
		MaxDepth:    0,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "labelColumn")
	require.Contains(t, err.Error(), "columns")
	require.Contains(t, err.Error(), "numTrees")
	require.Contains(t, err.Error(), "maxDepth")
}

func TestTrainForestRejectsEmptyDataset(t *testing.T) {
	e := New(nil)
	ds := createLabeledDataset(t, e, nil, nil)

	_, err := e.TrainRandomForestRegressor(ds, forestParams(1, 4, 1))
	require.Error(t, err)
	require.IsType(t, errors.EmptyDatasetError{}, err)
}

func TestSingleTreePredictsConstantLabelExactly(t *testing.T) {
	e := New(nil)
	ds := createLabeledDataset(t, e,
		[]float64{1, 2, 3, 4},
		[]float64{5, 5, 5, 5})

	handle, err := e.TrainRandomForestRegressor(ds, forestParams(1, 4, 1))
	require.Nil(t, err)
	fh := handle.(*forestHandle)

	require.Nil(t, fh.Predict(ds, wire.None()))
	for _, p := range collectColumn(t, e, ds, "predicted_value") {
		require.Equal(t, 5.0, p)
	}
}

func TestSingleTreeSeparatesTwoPlateaus(t *testing.T) {
	e := New(nil)
	xs := []float64{0, 1, 2, 3, 10, 11, 12, 13}
	ys := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	ds := createLabeledDataset(t, e, xs, ys)

	handle, err := e.TrainRandomForestRegressor(ds, forestParams(1, 4, 1))
	require.Nil(t, err)
	fh := handle.(*forestHandle)

	require.Nil(t, fh.Predict(ds, wire.None()))
	require.Equal(t, ys, collectColumn(t, e, ds, "predicted_value"))
}

func TestForestTrainingIsDeterministic(t *testing.T) {
	e := New(nil)
	xs := []float64{0, 1, 2, 3, 10, 11, 12, 13}
	ys := []float64{0, 0.5, 0, 0.5, 1, 1.5, 1, 1.5}

	first := createLabeledDataset(t, e, xs, ys)
	second := createLabeledDataset(t, e, xs, ys)

	firstHandle, err := e.TrainRandomForestRegressor(first, forestParams(3, 3, 7))
	require.Nil(t, err)
	secondHandle, err := e.TrainRandomForestRegressor(second, forestParams(3, 3, 7))
	require.Nil(t, err)

	require.Nil(t, firstHandle.(*forestHandle).Predict(first, wire.None()))
	require.Nil(t, secondHandle.(*forestHandle).Predict(second, wire.None()))
	require.Equal(t,
		collectColumn(t, e, first, "predicted_value"),
		collectColumn(t, e, second, "predicted_value"))
}

func TestBootstrapIndexes(t *testing.T) {
	// a single tree trains on every row in order
	require.Equal(t, []int{0, 1, 2}, bootstrapIndexes(3, false, 1))

	// resampling is reproducible per seed and stays in range
	first := bootstrapIndexes(10, true, 42)
	second := bootstrapIndexes(10, true, 42)
	require.Equal(t, first, second)
	for _, idx := range first {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 10)
	}
}

func TestGrowTreeStopsAtDepthBound(t *testing.T) {
	points := [][]float64{{0}, {1}, {2}, {3}}
	targets := []float64{0, 1, 2, 3}
	tree := growTree(points, targets, []int{0, 1, 2, 3}, 1)

	require.False(t, tree.Leaf)
	require.True(t, tree.Left.Leaf)
	require.True(t, tree.Right.Leaf)
}
