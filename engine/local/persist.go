package local

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/pierrec/lz4"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
)

const (
	modelFileFormat  = "flint-model"
	modelFileVersion = 1
)

// envelope is the outer structure of a persisted model file. The payload is
// an lz4-compressed JSON snapshot, checksummed so corruption fails loudly
// instead of producing a silently wrong model.
type envelope struct {
	Format   string `json:"format"`
	Version  int    `json:"version"`
	Type     string `json:"type"`
	Checksum string `json:"checksum"`
	Payload  []byte `json:"payload"`
}

// kmeansSnapshot is the persisted form of a k-means model
type kmeansSnapshot struct {
	Columns            []string    `json:"columns"`
	Scalings           []float64   `json:"scalings,omitempty"`
	K                  int64       `json:"k"`
	MaxIterations      int64       `json:"max_iterations"`
	Epsilon            float64     `json:"epsilon"`
	InitializationMode string      `json:"initialization_mode"`
	Seed               *int64      `json:"seed,omitempty"`
	Centroids          [][]float64 `json:"centroids"`
}

// forestSnapshot is the persisted form of a random forest regression model
type forestSnapshot struct {
	LabelColumn string      `json:"label_column"`
	Columns     []string    `json:"columns"`
	NumTrees    int64       `json:"num_trees"`
	MaxDepth    int64       `json:"max_depth"`
	Seed        *int64      `json:"seed,omitempty"`
	Trees       []*treeNode `json:"trees"`
}

// saveModel persists a model to a single opaque file at path, creating
// parent directories as needed
func (e *Engine) saveModel(id, path string) error {
	m, err := e.model(id)
	if err != nil {
		return err
	}
	body, err := json.Marshal(snapshotOf(m))
	if err != nil {
		return fmt.Errorf("encoding model snapshot: %w", err)
	}
	var buf bytes.Buffer
	compressor := lz4.NewWriter(&buf)
	if _, err := compressor.Write(body); err != nil {
		return fmt.Errorf("compressing model snapshot: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("compressing model snapshot: %w", err)
	}
	compressed := buf.Bytes()
	checksum := fmt.Sprintf("%016x", xxhash.Sum64(compressed))
	out, err := json.Marshal(envelope{
		Format:   modelFileFormat,
		Version:  modelFileVersion,
		Type:     string(m.modelType()),
		Checksum: checksum,
		Payload:  compressed,
	})
	if err != nil {
		return fmt.Errorf("encoding model file: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return err
	}
	e.snapshots.Add(checksum, m)
	e.log.Debug("saved model",
		zap.String("model_id", id),
		zap.String("path", path),
		zap.String("checksum", checksum))
	return nil
}

// snapshotOf converts engine model state to its persisted form
func snapshotOf(m model) interface{} {
	switch m := m.(type) {
	case *kmeansModel:
		return &kmeansSnapshot{
			Columns:            m.columns,
			Scalings:           m.scalings,
			K:                  m.k,
			MaxIterations:      m.maxIterations,
			Epsilon:            m.epsilon,
			InitializationMode: m.initMode,
			Seed:               m.seed,
			Centroids:          m.centroids,
		}
	case *forestModel:
		return &forestSnapshot{
			LabelColumn: m.labelColumn,
			Columns:     m.columns,
			NumTrees:    m.numTrees,
			MaxDepth:    m.maxDepth,
			Seed:        m.seed,
			Trees:       m.trees,
		}
	default:
		return nil
	}
}

// loadSnapshot reads a persisted model file, sniffing the envelope before
// decoding and verifying the payload checksum. Recently decoded snapshots
// are served from an LRU keyed by checksum, since model state is immutable.
func (e *Engine) loadSnapshot(path string) (model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed := gjson.ParseBytes(raw)
	if parsed.Get("format").String() != modelFileFormat {
		return nil, errors.CorruptModelFileError{Path: path, Reason: "not a model file"}
	}
	if parsed.Get("version").Int() != modelFileVersion {
		return nil, errors.CorruptModelFileError{Path: path,
			Reason: fmt.Sprintf("unsupported version %d", parsed.Get("version").Int())}
	}
	compressed, err := base64.StdEncoding.DecodeString(parsed.Get("payload").String())
	if err != nil {
		return nil, errors.CorruptModelFileError{Path: path, Reason: "payload is not decodable"}
	}
	checksum := parsed.Get("checksum").String()
	if fmt.Sprintf("%016x", xxhash.Sum64(compressed)) != checksum {
		return nil, errors.CorruptModelFileError{Path: path, Reason: "checksum mismatch"}
	}
	if cached, ok := e.snapshots.Get(checksum); ok {
		return cached, nil
	}
	decompressor := lz4.NewReader(bytes.NewReader(compressed))
	body, err := io.ReadAll(decompressor)
	if err != nil {
		return nil, errors.CorruptModelFileError{Path: path, Reason: "payload is not decompressible"}
	}
	m, err := modelFromSnapshot(flint.ModelType(parsed.Get("type").String()), body)
	if err != nil {
		return nil, err
	}
	e.snapshots.Add(checksum, m)
	e.log.Debug("loaded model",
		zap.String("path", path),
		zap.String("checksum", checksum))
	return m, nil
}

// modelFromSnapshot decodes a snapshot body into engine model state
func modelFromSnapshot(t flint.ModelType, body []byte) (model, error) {
	switch t {
	case flint.KMeansModelType:
		snapshot := &kmeansSnapshot{}
		if err := json.Unmarshal(body, snapshot); err != nil {
			return nil, fmt.Errorf("decoding kmeans snapshot: %w", err)
		}
		return &kmeansModel{
			columns:       snapshot.Columns,
			scalings:      snapshot.Scalings,
			k:             snapshot.K,
			maxIterations: snapshot.MaxIterations,
			epsilon:       snapshot.Epsilon,
			initMode:      snapshot.InitializationMode,
			seed:          snapshot.Seed,
			centroids:     snapshot.Centroids,
		}, nil
	case flint.RandomForestRegressorModelType:
		snapshot := &forestSnapshot{}
		if err := json.Unmarshal(body, snapshot); err != nil {
			return nil, fmt.Errorf("decoding random forest snapshot: %w", err)
		}
		return &forestModel{
			labelColumn: snapshot.LabelColumn,
			columns:     snapshot.Columns,
			numTrees:    snapshot.NumTrees,
			maxDepth:    snapshot.MaxDepth,
			seed:        snapshot.Seed,
			trees:       snapshot.Trees,
		}, nil
	default:
		return nil, errors.UnknownModelTypeError{Type: string(t)}
	}
}
