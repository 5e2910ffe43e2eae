package integration_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/frame"
	"github.com/go-flint/flint/models/kmeans"
	ftesting "github.com/go-flint/flint/testing"
	"github.com/go-flint/flint/wire"
)

// createClusteringFrame builds the 9-row dataset with one numeric
// observation column and one label column
func createClusteringFrame(t *testing.T, sess *flint.Session) *frame.Frame {
	schema, err := flint.CreateSchema(
		flint.Column{Name: "data", Kind: wire.Float64Kind},
		flint.Column{Name: "name", Kind: wire.StringKind},
	)
	require.Nil(t, err)
	rows := [][]interface{}{
		{2.0, "ab"},
		{1.0, "cd"},
		{7.0, "ef"},
		{1.0, "gh"},
		{9.0, "ij"},
		{2.0, "kl"},
		{0.0, "mn"},
		{6.0, "op"},
		{5.0, "qr"},
	}
	f, err := frame.Create(sess, rows, schema)
	require.Nil(t, err)
	return f
}

// trainClusteringModel trains k=3 with a fixed seed so results are reproducible
func trainClusteringModel(t *testing.T, f *frame.Frame) *kmeans.Model {
	seed := int64(3)
	model, err := kmeans.Train(f, []string{"data"}, &kmeans.TrainOptions{
		K:                  3,
		Seed:               &seed,
		InitializationMode: flint.KMeansInitRandom,
	})
	require.Nil(t, err)
	return model
}

func TestKMeansEndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t)
	sess := ftesting.LocalSession(nil)
	f := createClusteringFrame(t, sess)
	model := trainClusteringModel(t, f)

	k, err := model.K()
	require.Nil(t, err)
	require.Equal(t, int64(3), k)

	sizes, err := model.ComputeSizes(f, nil)
	require.Nil(t, err)
	require.Equal(t, []int64{4, 1, 4}, sizes)

	wsse, err := model.ComputeWsse(f, nil)
	require.Nil(t, err)
	require.InDelta(t, 9.75, wsse, 1e-9)

	centroids, err := model.Centroids()
	require.Nil(t, err)
	require.Equal(t, [][]float64{{1.5}, {0}, {6.75}}, centroids)

	// predict mutates the dataset in place and returns nothing
	require.Nil(t, model.Predict(f, nil))
	names, err := f.ColumnNames()
	require.Nil(t, err)
	require.Equal(t, []string{"data", "name", "cluster"}, names)

	rows, err := f.Collect()
	require.Nil(t, err)
	require.Len(t, rows, 9)
	expectedClusters := []int64{0, 0, 2, 0, 2, 0, 1, 2, 2}
	for i, expected := range expectedClusters {
		require.Equal(t, expected, rows[i][2], "row %d", i)
	}

	// one squared-distance column per cluster
	require.Nil(t, model.AddDistanceColumns(f, nil))
	names, err = f.ColumnNames()
	require.Nil(t, err)
	require.Equal(t, []string{"data", "name", "cluster", "distance0", "distance1", "distance2"}, names)

	rows, err = f.Collect()
	require.Nil(t, err)
	for _, row := range rows {
		data := row[0].(float64)
		require.InDelta(t, (data-1.5)*(data-1.5), row[3].(float64), 1e-9)
		require.InDelta(t, data*data, row[4].(float64), 1e-9)
		require.InDelta(t, (data-6.75)*(data-6.75), row[5].(float64), 1e-9)
	}
}

func TestKMeansProperties(t *testing.T) {
	sess := ftesting.LocalSession(nil)
	f := createClusteringFrame(t, sess)
	model := trainClusteringModel(t, f)

	columns, err := model.Columns()
	require.Nil(t, err)
	require.Equal(t, []string{"data"}, columns)

	scalings, err := model.Scalings()
	require.Nil(t, err)
	require.Nil(t, scalings)

	maxIterations, err := model.MaxIterations()
	require.Nil(t, err)
	require.Equal(t, int64(20), maxIterations)

	epsilon, err := model.Epsilon()
	require.Nil(t, err)
	require.Equal(t, 1e-4, epsilon)

	initMode, err := model.InitializationMode()
	require.Nil(t, err)
	require.Equal(t, flint.KMeansInitRandom, initMode)
}

func TestKMeansTrainingIsDeterministic(t *testing.T) {
	sess := ftesting.LocalSession(nil)
	f := createClusteringFrame(t, sess)
	first := trainClusteringModel(t, f)
	second := trainClusteringModel(t, f)

	firstCentroids, err := first.Centroids()
	require.Nil(t, err)
	secondCentroids, err := second.Centroids()
	require.Nil(t, err)
	require.Equal(t, firstCentroids, secondCentroids)
}
