// Package local is an in-process implementation of the flint.Engine
// contract. It stores datasets as partitioned columnar tables, trains and
// applies models behind opaque uuid handles, and persists models as single
// opaque files. It exists so the bindings can be exercised end-to-end
// against a live engine without a cluster.
package local
