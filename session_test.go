package flint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterModelLoaderRejectsNil(t *testing.T) {
	require.Panics(t, func() {
		RegisterModelLoader("loader-nil", nil)
	})
}

func TestRegisterModelLoaderRejectsDuplicates(t *testing.T) {
	loader := func(sess *Session, handle ModelHandle) (interface{}, error) {
		return nil, nil
	}
	RegisterModelLoader("loader-dup", loader)
	require.Panics(t, func() {
		RegisterModelLoader("loader-dup", loader)
	})
}
