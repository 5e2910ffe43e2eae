package flint

import (
	"fmt"
	"sync"

	"github.com/go-flint/flint/errors"
)

// A ModelLoader reconstructs a model facade from a reloaded engine handle
type ModelLoader func(sess *Session, handle ModelHandle) (interface{}, error)

var (
	loadersMu sync.RWMutex
	loaders   = make(map[ModelType]ModelLoader)
)

// RegisterModelLoader registers the facade constructor for a model type.
// Model packages call this from init, in the manner of database/sql drivers.
func RegisterModelLoader(t ModelType, loader ModelLoader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	if loader == nil {
		panic("flint: RegisterModelLoader called with nil loader")
	}
	if _, dup := loaders[t]; dup {
		panic(fmt.Sprintf("flint: RegisterModelLoader called twice for model type %s", t))
	}
	loaders[t] = loader
}

// A Session binds the model facades and frame wrappers to one engine
type Session struct {
	engine Engine
}

// NewSession creates a Session backed by the given engine
func NewSession(engine Engine) *Session {
	return &Session{engine: engine}
}

// Engine returns the engine this Session is bound to
func (s *Session) Engine() Engine {
	return s.engine
}

// Load reloads a model persisted with Save, returning the facade registered
// for its model type (e.g. a *kmeans.Model). The on-disk format is a
// contract owned by the engine.
func (s *Session) Load(path string) (interface{}, error) {
	handle, err := s.engine.LoadModel(path)
	if err != nil {
		return nil, err
	}
	loadersMu.RLock()
	loader, ok := loaders[handle.Type()]
	loadersMu.RUnlock()
	if !ok {
		return nil, errors.UnknownModelTypeError{Type: string(handle.Type())}
	}
	return loader(s, handle)
}
