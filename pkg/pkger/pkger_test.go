// Test Type: Unit Test
// Description: Tests for convention based package field assembly

package pkger_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/filesystem"
	"github.com/arthur-debert/jiek/pkg/pkger"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packageWithSources(t *testing.T, files ...string) types.FS {
	t.Helper()
	fs := filesystem.NewMemory()
	for _, f := range files {
		p := filepath.Join("/ws/pkg", f)
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, fs.WriteFile(p, []byte("export {}\n"), 0644))
	}
	return fs
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := types.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func TestPkger_Defaults(t *testing.T) {
	fs := packageWithSources(t, "src/index.ts", "src/named.ts")

	fields, err := pkger.Pkger(fs, pkger.Options{Cwd: "/ws/pkg"})
	require.NoError(t, err)

	assert.Equal(t, "./dist/index.d.ts", fields.Types)
	assert.Equal(t, "./dist/index.umd.js", fields.Main)
	assert.Equal(t, "./dist/index.esm.js", fields.Module)
	assert.Equal(t, "./dist/index.umd.min.js", fields.Unpkg)
	assert.Equal(t, "./dist/index.umd.min.js", fields.Jsdelivr)
	assert.Equal(t, "./dist/index.esm.min.js", fields.Browser)

	assert.Equal(t, []string{".", "./named", "package.json"}, fields.Exports.Keys())
	assert.Equal(t,
		`{"types":"./dist/index.d.ts","import":"./dist/index.esm.js","require":"./dist/index.umd.js","default":"./dist/index.esm.js"}`,
		toJSON(t, mustGet(t, fields.Exports, ".")))
	assert.Equal(t,
		`{"types":"./dist/named.d.ts","import":"./dist/named.esm.js","require":"./dist/named.umd.js","default":"./dist/named.esm.js"}`,
		toJSON(t, mustGet(t, fields.Exports, "./named")))

	passthrough, _ := fields.Exports.GetString("package.json")
	assert.Equal(t, "package.json", passthrough)

	assert.Equal(t, `{"<5.0":{"*":["*","./dist/*","./dist/*/index.d.ts"]}}`, toJSON(t, fields.TypesVersions))
}

func TestPkger_Object(t *testing.T) {
	fs := packageWithSources(t, "src/index.ts")

	fields, err := pkger.Pkger(fs, pkger.Options{Cwd: "/ws/pkg", NoCDN: true, NoBrowser: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"types", "main", "module", "typesVersions", "exports"}, fields.Object().Keys())
	assert.Empty(t, fields.Unpkg)
	assert.Empty(t, fields.Browser)
}

func TestPkger_CustomLayout(t *testing.T) {
	fs := packageWithSources(t, "lib/index.ts", "lib/extra.ts")

	fields, err := pkger.Pkger(fs, pkger.Options{
		Cwd:       "/ws/pkg",
		Source:    "lib",
		Outdir:    "build",
		UMDSuffix: ".cjs",
		ESMSuffix: ".mod",
		DTSExt:    ".mts",
	})
	require.NoError(t, err)

	assert.Equal(t, "./build/index.d.mts", fields.Types)
	assert.Equal(t, "./build/index.cjs.js", fields.Main)
	assert.Equal(t, "./build/index.mod.js", fields.Module)
	assert.True(t, fields.Exports.Has("./extra"))
}

func TestPkger_Outputs(t *testing.T) {
	fs := packageWithSources(t, "src/index.ts", "src/named.ts")

	fields, err := pkger.Pkger(fs, pkger.Options{Cwd: "/ws/pkg", NoCDN: true})
	require.NoError(t, err)

	var dists []string
	for _, o := range fields.Outputs {
		dists = append(dists, o.Dist)
	}
	assert.Equal(t, []string{
		"./dist/index.esm.min.js",
		"./dist/index.esm.js",
		"./dist/index.umd.js",
		"./dist/named.esm.js",
		"./dist/named.umd.js",
	}, dists)
	assert.Equal(t, "src/named.ts", fields.Outputs[3].Source)
}

func TestPkger_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts pkger.Options
		code errors.ErrorCode
	}{
		{name: "trailing_slash_outdir", opts: pkger.Options{Outdir: "dist/"}, code: errors.ErrConfigValid},
		{name: "only_esm", opts: pkger.Options{OnlyESM: true}, code: errors.ErrUnsupportedFeature},
		{name: "regexp_input", opts: pkger.Options{Inputs: []string{"regexp:.*"}}, code: errors.ErrUnsupportedFeature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Cwd = "/ws/pkg"
			_, err := pkger.Pkger(filesystem.NewMemory(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code))
		})
	}
}

func mustGet(t *testing.T, obj *types.Object, key string) any {
	t.Helper()
	v, ok := obj.Get(key)
	require.True(t, ok, key)
	return v
}
