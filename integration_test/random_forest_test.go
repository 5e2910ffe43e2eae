package integration_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/frame"
	"github.com/go-flint/flint/models/kmeans"
	"github.com/go-flint/flint/models/randomforest"
	ftesting "github.com/go-flint/flint/testing"
	"github.com/go-flint/flint/wire"
)

// createRegressionFrame builds the 26-row labeled dataset
func createRegressionFrame(t *testing.T, sess *flint.Session) *frame.Frame {
	schema, err := flint.CreateSchema(
		flint.Column{Name: "Class", Kind: wire.Int64Kind},
		flint.Column{Name: "Dim_1", Kind: wire.Float64Kind},
		flint.Column{Name: "Dim_2", Kind: wire.Float64Kind},
	)
	require.Nil(t, err)
	rows := [][]interface{}{
		{1, 19.8446136104, 2.2985856384},
		{1, 16.8973559126, 2.6933495054},
		{1, 5.5548729596, 2.7777687995},
		{0, 46.1810010826, 3.1611961917},
		{0, 44.3117586448, 3.3458963222},
		{0, 34.6334526911, 3.6429838715},
		{1, 11.4849647497, 3.8530199663},
		{0, 43.7438430327, 3.9347590844},
		{0, 44.961185029, 4.0953872464},
		{0, 37.0549734365, 4.1039157849},
		{0, 52.0093009461, 4.1455433148},
		{0, 38.6092023162, 4.1615595686},
		{0, 33.8789730794, 4.1970765922},
		{1, -1.0388754777, 4.4190319518},
		{0, 49.913080358, 4.5445142439},
		{1, 3.2789270744, 4.8419490458},
		{1, 9.7921007601, 4.8870605498},
		{0, 45.5778621825, 4.9665753213},
		{0, 45.4773893261, 5.0764210643},
		{0, 44.303211041, 5.1112029237},
		{0, 52.8429742116, 5.4121654741},
		{1, 14.8057269164, 5.5634291719},
		{0, 42.6043814342, 5.5988383751},
		{1, 13.7291123825, 5.6684973484},
		{0, 50.7410573499, 5.6901229975},
		{0, 52.0093990181, 5.7401924186},
	}
	f, err := frame.Create(sess, rows, schema)
	require.Nil(t, err)
	return f
}

func TestRandomForestRegressorEndToEnd(t *testing.T) {
	sess := ftesting.LocalSession(nil)
	f := createRegressionFrame(t, sess)

	seed := int64(7)
	model, err := randomforest.Train(f, "Class", []string{"Dim_1", "Dim_2"}, &randomforest.TrainOptions{
		Seed: &seed,
	})
	require.Nil(t, err)

	require.Nil(t, model.Predict(f, nil))
	names, err := f.ColumnNames()
	require.Nil(t, err)
	require.Len(t, names, 4)
	require.ElementsMatch(t, []string{"Class", "Dim_1", "Dim_2", "predicted_value"}, names)
}

func TestRandomForestRegressorProperties(t *testing.T) {
	sess := ftesting.LocalSession(nil)
	f := createRegressionFrame(t, sess)

	seed := int64(7)
	model, err := randomforest.Train(f, "Class", []string{"Dim_1", "Dim_2"}, &randomforest.TrainOptions{
		NumTrees: 5,
		MaxDepth: 3,
		Seed:     &seed,
	})
	require.Nil(t, err)

	labelColumn, err := model.LabelColumn()
	require.Nil(t, err)
	require.Equal(t, "Class", labelColumn)

	columns, err := model.Columns()
	require.Nil(t, err)
	require.Equal(t, []string{"Dim_1", "Dim_2"}, columns)

	numTrees, err := model.NumTrees()
	require.Nil(t, err)
	require.Equal(t, int64(5), numTrees)

	maxDepth, err := model.MaxDepth()
	require.Nil(t, err)
	require.Equal(t, int64(3), maxDepth)

	trainedSeed, err := model.Seed()
	require.Nil(t, err)
	require.NotNil(t, trainedSeed)
	require.Equal(t, seed, *trainedSeed)
}

func TestFacadeRejectsWrongHandleType(t *testing.T) {
	sess := ftesting.LocalSession(nil)
	f := createRegressionFrame(t, sess)

	seed := int64(7)
	forest, err := randomforest.Train(f, "Class", []string{"Dim_1", "Dim_2"}, &randomforest.TrainOptions{
		Seed: &seed,
	})
	require.Nil(t, err)

	_, err = kmeans.FromHandle(sess, forest.Handle())
	require.Error(t, err)
	require.IsType(t, errors.ModelTypeMismatchError{}, err)
}
