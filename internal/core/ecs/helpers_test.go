package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Velocity struct {
	X, Y, Z float32
}

type Health struct {
	HP int
}

type Tag struct{}

// requirePanicsWith runs fn and requires it to panic with an error wrapping sentinel.
func requirePanicsWith(t *testing.T, sentinel error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic wrapping %v", sentinel)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, sentinel)
	}()
	fn()
}
