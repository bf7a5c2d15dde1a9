// Test Type: Unit Test
// Description: Tests for package.json loading, caching and publish manifest generation

package manifest_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/filesystem"
	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, fs types.FS, dir, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(dir, manifest.FileName), []byte(content), 0644))
}

func TestParse(t *testing.T) {
	m, err := manifest.Parse([]byte(`{
		"name": "@scope/pkg",
		"version": "1.2.3-beta.1",
		"type": "module",
		"private": true,
		"exports": {"./foo": "./src/foo.ts", ".": "./src/index.ts"},
		"jiek": {"outdir": "lib"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "@scope/pkg", m.Name)
	require.NotNil(t, m.Version)
	assert.Equal(t, "1.2.3-beta.1", m.Version.String())
	assert.True(t, m.IsModule())
	assert.True(t, m.Private)
	assert.Equal(t, []string{"name", "version", "type", "private", "exports", "jiek"}, m.Doc.Keys())

	cfg := m.Config()
	require.NotNil(t, cfg)
	outdir, _ := cfg.GetString("outdir")
	assert.Equal(t, "lib", outdir)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{name: "invalid_json", content: `{"name": `, code: errors.ErrManifestParse},
		{name: "missing_name", content: `{"version": "1.0.0"}`, code: errors.ErrConfigValid},
		{name: "invalid_version", content: `{"name": "a", "version": "one"}`, code: errors.ErrManifestParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), err.Error())
		})
	}
}

func TestLoad(t *testing.T) {
	fs := filesystem.NewMemory()
	writeManifest(t, fs, "/ws/packages/a", `{"name": "a"}`)

	t.Run("existing", func(t *testing.T) {
		m, err := manifest.Load(fs, "/ws/packages/a")
		require.NoError(t, err)
		assert.Equal(t, "a", m.Name)
		assert.Equal(t, "/ws/packages/a", m.Dir)
		assert.Equal(t, "/ws/packages/a/package.json", m.Path)
		assert.Nil(t, m.Version)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := manifest.Load(fs, "/ws/packages/missing")
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
	})
}

func TestEntrypoints(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected any
		code     errors.ErrorCode
	}{
		{
			name:     "jiek_inputs_win",
			content:  `{"name": "a", "exports": "./src/index.ts", "jiek": {"inputs": ["src/index.ts"]}}`,
			expected: []any{"src/index.ts"},
		},
		{
			name:     "exports_string",
			content:  `{"name": "a", "exports": "./src/index.ts"}`,
			expected: "./src/index.ts",
		},
		{
			name:    "nothing_declared",
			content: `{"name": "a", "main": "index.js"}`,
			code:    errors.ErrConfigValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := manifest.Parse([]byte(tt.content))
			require.NoError(t, err)

			ep, err := m.Entrypoints()
			if tt.code != "" {
				assert.True(t, errors.IsErrorCode(err, tt.code))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ep)
		})
	}
}

func TestWrite(t *testing.T) {
	fs := filesystem.NewMemory()
	doc := types.NewObject(
		types.Pair{Key: "name", Value: "a"},
		types.Pair{Key: "engines", Value: types.NewObject(types.Pair{Key: "node", Value: ">=18"})},
	)

	require.NoError(t, manifest.Write(fs, "/ws/a", doc))

	data, err := fs.ReadFile("/ws/a/package.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"engines\": {\n    \"node\": \">=18\"\n  }\n}\n", string(data))
}

func TestWriteIfChanged(t *testing.T) {
	fs := filesystem.NewMemory()
	doc := types.NewObject(types.Pair{Key: "name", Value: "a"})

	written, err := manifest.WriteIfChanged(fs, "/ws/a", doc)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = manifest.WriteIfChanged(fs, "/ws/a", doc.Clone())
	require.NoError(t, err)
	assert.False(t, written, "identical content is not rewritten")

	doc.Set("version", "1.0.0")
	written, err = manifest.WriteIfChanged(fs, "/ws/a", doc)
	require.NoError(t, err)
	assert.True(t, written)
}
