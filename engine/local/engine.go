package local

import (
	"log"
	"runtime"
	"sync"

	uuid "github.com/gofrs/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

// model is engine-side trained-model state, immutable once trained
type model interface {
	modelType() flint.ModelType
}

// Engine is an in-process implementation of the flint.Engine contract
type Engine struct {
	opts *Options
	log  *zap.Logger

	mu       sync.Mutex
	datasets map[string]*dataset
	models   map[string]model

	snapshots *lru.Cache[string, model]
}

var _ flint.Engine = (*Engine)(nil)

// New creates a local Engine, applying defaults for unset Options
func New(opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	o := *opts
	if o.PartitionSize <= 0 {
		o.PartitionSize = defaultPartitionSize
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	snapshots, err := lru.New[string, model](modelCacheSize)
	if err != nil {
		log.Panicf("failed to initialize model snapshot cache: %v", err)
	}
	return &Engine{
		opts:      &o,
		log:       o.Logger,
		datasets:  make(map[string]*dataset),
		models:    make(map[string]model),
		snapshots: snapshots,
	}
}

// newID generates an identifier for an engine-owned resource
func newID() string {
	id, err := uuid.NewV4()
	if err != nil {
		log.Panicf("failed to generate handle UUID: %v", err)
	}
	return id.String()
}

// CreateDataset ingests wire rows into a new engine-owned dataset
func (e *Engine) CreateDataset(schema flint.Schema, rows [][]wire.Value) (flint.DatasetHandle, error) {
	ds, err := newDataset(schema, rows, e.opts.PartitionSize)
	if err != nil {
		return nil, err
	}
	id := newID()
	e.mu.Lock()
	e.datasets[id] = ds
	e.mu.Unlock()
	e.log.Debug("created dataset",
		zap.String("dataset_id", id),
		zap.Int64("rows", ds.numRows()),
		zap.Int("partitions", len(ds.partitions)))
	return &datasetHandle{id: id, eng: e}, nil
}

// LoadModel reconstructs a model handle from a file written by Save
func (e *Engine) LoadModel(path string) (flint.ModelHandle, error) {
	m, err := e.loadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return e.newModelHandle(m), nil
}

// newModelHandle registers a model and wraps it in the handle for its type
func (e *Engine) newModelHandle(m model) flint.ModelHandle {
	id := newID()
	e.mu.Lock()
	e.models[id] = m
	e.mu.Unlock()
	switch m.(type) {
	case *kmeansModel:
		return &kmeansHandle{id: id, eng: e}
	case *forestModel:
		return &forestHandle{id: id, eng: e}
	default:
		log.Panicf("unhandled model type %s", m.modelType())
		return nil
	}
}

// dataset resolves a dataset ID owned by this engine
func (e *Engine) dataset(id string) (*dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ds, ok := e.datasets[id]
	if !ok {
		return nil, errors.UnknownHandleError{ID: id}
	}
	return ds, nil
}

// datasetFor resolves a dataset handle, rejecting handles owned by another engine
func (e *Engine) datasetFor(h flint.DatasetHandle) (*dataset, error) {
	dh, ok := h.(*datasetHandle)
	if !ok || dh.eng != e {
		return nil, errors.UnknownHandleError{ID: h.ID()}
	}
	return e.dataset(dh.id)
}

// model resolves a model ID owned by this engine
func (e *Engine) model(id string) (model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.models[id]
	if !ok {
		return nil, errors.UnknownHandleError{ID: id}
	}
	return m, nil
}

// kmeansModelByID resolves a model ID to k-means model state
func (e *Engine) kmeansModelByID(id string) (*kmeansModel, error) {
	m, err := e.model(id)
	if err != nil {
		return nil, err
	}
	km, ok := m.(*kmeansModel)
	if !ok {
		return nil, errors.ModelTypeMismatchError{
			Expected: string(flint.KMeansModelType),
			Actual:   string(m.modelType()),
		}
	}
	return km, nil
}

// forestModelByID resolves a model ID to random forest model state
func (e *Engine) forestModelByID(id string) (*forestModel, error) {
	m, err := e.model(id)
	if err != nil {
		return nil, err
	}
	fm, ok := m.(*forestModel)
	if !ok {
		return nil, errors.ModelTypeMismatchError{
			Expected: string(flint.RandomForestRegressorModelType),
			Actual:   string(m.modelType()),
		}
	}
	return fm, nil
}
