package testing

import (
	"github.com/go-flint/flint"
	"github.com/go-flint/flint/engine/local"
)

// LocalSession creates a Session backed by a fresh in-process engine, for
// exercising the bindings end-to-end in tests
func LocalSession(opts *local.Options) *flint.Session {
	return flint.NewSession(local.New(opts))
}
