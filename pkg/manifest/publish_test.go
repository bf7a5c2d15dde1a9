// Test Type: Unit Test
// Description: Tests for deriving entry fields and building the publish manifest

package manifest_test

import (
	"testing"

	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFields(t *testing.T) {
	tests := []struct {
		name     string
		exports  string
		isModule bool
		expected string
	}{
		{
			name:     "plain_commonjs",
			exports:  `{".": "dist/index.js"}`,
			expected: `{"main":"dist/index.js"}`,
		},
		{
			name:     "plain_module",
			exports:  `{".": "dist/index.js"}`,
			isModule: true,
			expected: `{"main":"dist/index.js","module":"dist/index.js"}`,
		},
		{
			name:     "module_with_require",
			exports:  `{".": {"require": "dist/index.cjs", "default": "dist/index.js"}}`,
			isModule: true,
			expected: `{"main":"dist/index.cjs","module":"dist/index.js"}`,
		},
		{
			name:     "commonjs_with_import",
			exports:  `{".": {"source": "src/index.ts", "import": "dist/index.mjs", "default": "dist/index.js"}}`,
			expected: `{"main":"dist/index.js","module":"dist/index.mjs"}`,
		},
		{
			name:     "wrapped_record",
			exports:  `{".": {"require": {"source": "src/index.cts", "default": "dist/index.cjs"}}}`,
			expected: `{"main":"dist/index.cjs"}`,
		},
		{
			name:     "types_condition",
			exports:  `{".": {"types": "./dist/index.d.ts", "import": "./dist/index.esm.js", "require": "./dist/index.umd.js"}}`,
			expected: `{"main":"./dist/index.umd.js","module":"./dist/index.esm.js","types":"./dist/index.d.ts"}`,
		},
		{
			name:     "no_dot_entry",
			exports:  `{"./foo": "dist/foo.js"}`,
			expected: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exports, err := types.ParseObject([]byte(tt.exports))
			require.NoError(t, err)

			out, err := types.Marshal(manifest.EntryFields(exports, tt.isModule))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestPublishManifest(t *testing.T) {
	m, err := manifest.Parse([]byte(`{"name":"a","exports":"./src/index.ts","publishConfig":{"access":"public"}}`))
	require.NoError(t, err)
	original, err := types.Marshal(m.Doc)
	require.NoError(t, err)

	exports := types.NewObject(types.Pair{Key: ".", Value: "dist/index.js"})
	fields := types.NewObject(
		types.Pair{Key: "main", Value: "dist/index.js"},
		types.Pair{Key: "exports", Value: "ignored"},
	)

	doc := m.PublishManifest(exports, fields)
	out, err := types.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"a","exports":"./src/index.ts","publishConfig":{"access":"public","main":"dist/index.js","exports":{".":"dist/index.js"}}}`,
		string(out))

	after, err := types.Marshal(m.Doc)
	require.NoError(t, err)
	assert.Equal(t, string(original), string(after), "source document must not change")
}
