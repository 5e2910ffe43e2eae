// Package flint contains the core types of Flint, a Go binding for a
// distributed data-frame and machine-learning engine. This root package
// defines the opaque handle and engine contracts shared by the model
// facades, the Schema describing tabular data, and the Session used to
// create frames and reload persisted models. All numeric work happens
// inside the engine; the packages in this module only marshal values
// across that boundary and wrap the handles it returns.
package flint
