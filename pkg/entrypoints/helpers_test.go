package entrypoints_test

import (
	"testing"

	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/stretchr/testify/require"
)

// obj parses an ordered object literal, failing the test on bad JSON
func obj(t *testing.T, src string) *types.Object {
	t.Helper()
	o, err := types.ParseObject([]byte(src))
	require.NoError(t, err)
	return o
}

// toJSON renders v with key order preserved
func toJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := types.Marshal(v)
	require.NoError(t, err)
	return string(out)
}
