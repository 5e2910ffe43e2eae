package local

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/require"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

func trainTestModel(t *testing.T, e *Engine) flint.ModelHandle {
	ds := createPointsDataset(t, e, []float64{2, 1, 7, 1, 9, 2, 0, 6, 5})
	handle, err := e.TrainKMeans(ds, kmeansParams(3, 3))
	require.Nil(t, err)
	return handle
}

func writeEnvelope(t *testing.T, path string, env envelope) {
	raw, err := json.Marshal(env)
	require.Nil(t, err)
	require.Nil(t, os.WriteFile(path, raw, 0o644))
}

func compressSnapshot(t *testing.T, snapshot interface{}) ([]byte, string) {
	body, err := json.Marshal(snapshot)
	require.Nil(t, err)
	var buf bytes.Buffer
	compressor := lz4.NewWriter(&buf)
	_, err = compressor.Write(body)
	require.Nil(t, err)
	require.Nil(t, compressor.Close())
	compressed := buf.Bytes()
	return compressed, fmt.Sprintf("%016x", xxhash.Sum64(compressed))
}

func TestSaveAndLoadModel(t *testing.T) {
	e := New(nil)
	handle := trainTestModel(t, e)

	path := filepath.Join(t.TempDir(), "models", "kmeans1")
	require.Nil(t, handle.Save(path))

	loaded, err := e.LoadModel(path)
	require.Nil(t, err)
	require.Equal(t, flint.KMeansModelType, loaded.Type())

	original, err := e.kmeansModelByID(handle.ID())
	require.Nil(t, err)
	restored, err := e.kmeansModelByID(loaded.ID())
	require.Nil(t, err)
	require.Equal(t, original.centroids, restored.centroids)
	require.Equal(t, original.columns, restored.columns)
	require.Equal(t, original.k, restored.k)
	require.Equal(t, original.initMode, restored.initMode)
}

func TestLoadAcrossEngines(t *testing.T) {
	a := New(nil)
	handle := trainTestModel(t, a)

	path := filepath.Join(t.TempDir(), "kmeans1")
	require.Nil(t, handle.Save(path))

	// a different engine has no cached snapshot and must decode the file
	b := New(nil)
	loaded, err := b.LoadModel(path)
	require.Nil(t, err)

	original, err := a.kmeansModelByID(handle.ID())
	require.Nil(t, err)
	restored, err := b.kmeansModelByID(loaded.ID())
	require.Nil(t, err)
	require.Equal(t, original.centroids, restored.centroids)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	e := New(nil)
	_, err := e.LoadModel(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestLoadRejectsNonModelFile(t *testing.T) {
	e := New(nil)
	path := filepath.Join(t.TempDir(), "garbage")
	require.Nil(t, os.WriteFile(path, []byte("not a model"), 0o644))

	_, err := e.LoadModel(path)
	require.Error(t, err)
	require.IsType(t, errors.CorruptModelFileError{}, err)
	require.Contains(t, err.Error(), "not a model file")
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	e := New(nil)
	path := filepath.Join(t.TempDir(), "future")
	payload, checksum := compressSnapshot(t, &kmeansSnapshot{K: 1})
	writeEnvelope(t, path, envelope{
		Format:   modelFileFormat,
		Version:  modelFileVersion + 1,
		Type:     string(flint.KMeansModelType),
		Checksum: checksum,
		Payload:  payload,
	})

	_, err := e.LoadModel(path)
	require.Error(t, err)
	require.IsType(t, errors.CorruptModelFileError{}, err)
	require.Contains(t, err.Error(), "unsupported version")
}

func TestLoadRejectsChecksumMismatch(t *testing.T) {
	e := New(nil)
	path := filepath.Join(t.TempDir(), "tampered")
	payload, _ := compressSnapshot(t, &kmeansSnapshot{K: 1})
	writeEnvelope(t, path, envelope{
		Format:   modelFileFormat,
		Version:  modelFileVersion,
		Type:     string(flint.KMeansModelType),
		Checksum: "0000000000000000",
		Payload:  payload,
	})

	_, err := e.LoadModel(path)
	require.Error(t, err)
	require.IsType(t, errors.CorruptModelFileError{}, err)
	require.Contains(t, err.Error(), "checksum mismatch")
}

func TestLoadRejectsUnknownModelType(t *testing.T) {
	e := New(nil)
	path := filepath.Join(t.TempDir(), "bogus")
	payload, checksum := compressSnapshot(t, &kmeansSnapshot{K: 1})
	writeEnvelope(t, path, envelope{
		Format:   modelFileFormat,
		Version:  modelFileVersion,
		Type:     "bogus",
		Checksum: checksum,
		Payload:  payload,
	})

	_, err := e.LoadModel(path)
	require.Error(t, err)
	require.IsType(t, errors.UnknownModelTypeError{}, err)
}

func TestForestSnapshotRoundTrip(t *testing.T) {
	e := New(nil)
	xs := []float64{0, 1, 2, 3, 10, 11, 12, 13}
	ys := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	ds := createLabeledDataset(t, e, xs, ys)

	handle, err := e.TrainRandomForestRegressor(ds, forestParams(2, 3, 9))
	require.Nil(t, err)

	path := filepath.Join(t.TempDir(), "forest1")
	require.Nil(t, handle.Save(path))

	b := New(nil)
	loaded, err := b.LoadModel(path)
	require.Nil(t, err)
	require.Equal(t, flint.RandomForestRegressorModelType, loaded.Type())

	original, err := e.forestModelByID(handle.ID())
	require.Nil(t, err)
	restored, err := b.forestModelByID(loaded.ID())
	require.Nil(t, err)
	require.Equal(t, original.trees, restored.trees)
	require.Equal(t, original.labelColumn, restored.labelColumn)

	seed, err := wire.OptionalInt64(restored.seed).Int64OrNil()
	require.Nil(t, err)
	require.NotNil(t, seed)
	require.Equal(t, int64(9), *seed)
}
