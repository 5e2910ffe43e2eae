package integration_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-flint/flint/models/kmeans"
	"github.com/go-flint/flint/models/randomforest"
	ftesting "github.com/go-flint/flint/testing"
)

func TestKMeansPersistenceRoundTrip(t *testing.T) {
	sess := ftesting.LocalSession(nil)
	f := createClusteringFrame(t, sess)
	model := trainClusteringModel(t, f)

	path := filepath.Join(t.TempDir(), "kmeans1")
	require.Nil(t, model.Save(path))

	loaded, err := sess.Load(path)
	require.Nil(t, err)
	restored, ok := loaded.(*kmeans.Model)
	require.True(t, ok)

	originalCentroids, err := model.Centroids()
	require.Nil(t, err)
	restoredCentroids, err := restored.Centroids()
	require.Nil(t, err)
	require.Equal(t, originalCentroids, restoredCentroids)

	originalSizes, err := model.ComputeSizes(f, nil)
	require.Nil(t, err)
	restoredSizes, err := restored.ComputeSizes(f, nil)
	require.Nil(t, err)
	require.Equal(t, originalSizes, restoredSizes)

	originalWsse, err := model.ComputeWsse(f, nil)
	require.Nil(t, err)
	restoredWsse, err := restored.ComputeWsse(f, nil)
	require.Nil(t, err)
	require.Equal(t, originalWsse, restoredWsse)
}

func TestRandomForestPersistenceRoundTrip(t *testing.T) {
	sess := ftesting.LocalSession(nil)
	f := createRegressionFrame(t, sess)

	seed := int64(7)
	model, err := randomforest.Train(f, "Class", []string{"Dim_1", "Dim_2"}, &randomforest.TrainOptions{
		NumTrees: 3,
		Seed:     &seed,
	})
	require.Nil(t, err)

	path := filepath.Join(t.TempDir(), "forest1")
	require.Nil(t, model.Save(path))

	loaded, err := sess.Load(path)
	require.Nil(t, err)
	restored, ok := loaded.(*randomforest.Model)
	require.True(t, ok)

	// predictions from the original and the reloaded model must agree
	require.Nil(t, model.Predict(f, nil))
	originalRows, err := f.Collect()
	require.Nil(t, err)

	fresh := createRegressionFrame(t, sess)
	require.Nil(t, restored.Predict(fresh, nil))
	restoredRows, err := fresh.Collect()
	require.Nil(t, err)
	require.Equal(t, originalRows, restoredRows)
}
