// Test Type: Unit Test
// Description: Tests mapping of changed files to packages and incremental rebuilds

package watch_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/jiek/pkg/build"
	"github.com/arthur-debert/jiek/pkg/bundler"
	"github.com/arthur-debert/jiek/pkg/filesystem"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/arthur-debert/jiek/pkg/watch"
	"github.com/arthur-debert/jiek/pkg/workspace"
)

func TestClassify(t *testing.T) {
	ws := &workspace.Workspace{
		Root: "/ws",
		Packages: []workspace.Package{
			{Name: "a", Dir: "/ws/packages/a"},
			{Name: "b", Dir: "/ws/packages/b"},
		},
	}

	tests := []struct {
		name     string
		changed  []string
		expected watch.Change
	}{
		{
			name:     "source_file",
			changed:  []string{"/ws/packages/b/src/index.ts", "/ws/packages/b/src/util.ts"},
			expected: watch.Change{Packages: []string{"b"}},
		},
		{
			name:     "outputs_are_ignored",
			changed:  []string{"/ws/packages/a/dist/index.js"},
			expected: watch.Change{},
		},
		{
			name:     "outdir_prefix_is_not_outdir",
			changed:  []string{"/ws/packages/a/distribution/notes.md"},
			expected: watch.Change{Packages: []string{"a"}},
		},
		{
			name:     "manifest",
			changed:  []string{"/ws/packages/a/package.json", "/ws/packages/b/src/index.ts"},
			expected: watch.Change{Packages: []string{"a", "b"}, Manifests: []string{"/ws/packages/a"}},
		},
		{
			name:     "new_package",
			changed:  []string{"/ws/packages/c/package.json"},
			expected: watch.Change{Full: true},
		},
		{
			name:     "nested_manifest",
			changed:  []string{"/ws/packages/a/fixtures/package.json"},
			expected: watch.Change{Full: true},
		},
		{
			name:     "outside_packages",
			changed:  []string{"/ws/README.md"},
			expected: watch.Change{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, watch.Classify(ws, "./dist", tt.changed))
		})
	}

	t.Run("unknown_workspace", func(t *testing.T) {
		assert.Equal(t, watch.Change{Full: true}, watch.Classify(nil, "dist", []string{"/ws/x.ts"}))
	})
}

func write(t *testing.T, fs types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fs.WriteFile(path, []byte(content), 0644))
}

func TestRebuilder(t *testing.T) {
	fs := filesystem.NewMemory()
	write(t, fs, "/ws/package.json", `{"name": "root", "private": true, "workspaces": ["packages/*"]}`)
	write(t, fs, "/ws/packages/a/package.json", `{"name": "a", "exports": "./src/index.ts"}`)
	write(t, fs, "/ws/packages/b/package.json", `{"name": "b", "exports": "./src/index.ts"}`)

	dry := bundler.NewDryRun()
	var results []*build.Result
	r, err := watch.NewRebuilder(build.Options{Root: "/ws", FileSystem: fs, Bundler: dry})
	require.NoError(t, err)
	r.OnResult = func(res *build.Result, err error) {
		require.NoError(t, err)
		results = append(results, res)
	}

	_, err = r.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, dry.Jobs(), 2)

	t.Run("only_changed_package_rebuilds", func(t *testing.T) {
		require.NoError(t, r.OnChange(context.Background(), []string{"/ws/packages/b/src/index.ts"}))
		jobs := dry.Jobs()
		require.Len(t, jobs, 3)
		assert.Equal(t, "b", jobs[2].Package)
	})

	t.Run("build_outputs_do_not_rebuild", func(t *testing.T) {
		require.NoError(t, r.OnChange(context.Background(), []string{"/ws/packages/b/dist/index.js"}))
		assert.Len(t, dry.Jobs(), 3)
	})

	t.Run("manifest_change_is_reloaded", func(t *testing.T) {
		write(t, fs, "/ws/packages/a/package.json", `{"name": "a", "exports": {".": "./src/index.ts", "./cli": "./src/cli.ts"}}`)
		require.NoError(t, r.OnChange(context.Background(), []string{"/ws/packages/a/package.json"}))

		last := results[len(results)-1]
		require.Len(t, last.Packages, 1)
		assert.Equal(t, []string{".", "./cli"}, last.Packages[0].Plan.Exports.Keys())
	})

	t.Run("new_package_triggers_full_build", func(t *testing.T) {
		write(t, fs, "/ws/packages/c/package.json", `{"name": "c", "exports": "./src/index.ts"}`)
		require.NoError(t, r.OnChange(context.Background(), []string{"/ws/packages/c/package.json"}))

		last := results[len(results)-1]
		assert.Len(t, last.Packages, 3)
	})
}
