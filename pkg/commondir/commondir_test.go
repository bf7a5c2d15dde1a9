// Test Type: Unit Test
// Description: Tests for the common directory inferencer

package commondir_test

import (
	"testing"

	"github.com/arthur-debert/jiek/pkg/commondir"
	"github.com/stretchr/testify/assert"
)

func TestCommondir(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		cwd      string
		expected string
	}{
		{
			name:     "empty_input",
			paths:    nil,
			cwd:      "/ws",
			expected: "",
		},
		{
			name:     "single_path_yields_its_directory",
			paths:    []string{"src/index.ts"},
			cwd:      "/ws/pkg",
			expected: "/ws/pkg/src/",
		},
		{
			name:     "siblings",
			paths:    []string{"src/index.ts", "src/foo.ts"},
			cwd:      "/ws/pkg",
			expected: "/ws/pkg/src/",
		},
		{
			name:     "nested_and_shallow",
			paths:    []string{"src/index.ts", "src/utils/format.ts", "src/a/b/c.ts"},
			cwd:      "/ws/pkg",
			expected: "/ws/pkg/src/",
		},
		{
			name:     "directory_aligned_not_string_prefix",
			paths:    []string{"/ws/src/a.ts", "/ws/srcx/b.ts"},
			cwd:      "/",
			expected: "/ws/",
		},
		{
			name:     "dot_slash_prefixes_are_normalized",
			paths:    []string{"./src/index.ts", "src/foo.ts"},
			cwd:      "/ws/pkg",
			expected: "/ws/pkg/src/",
		},
		{
			name:     "absolute_inputs_ignore_cwd",
			paths:    []string{"/a/b/c.ts", "/a/b/d/e.ts"},
			cwd:      "/elsewhere",
			expected: "/a/b/",
		},
		{
			name:     "only_root_in_common",
			paths:    []string{"/a/x.ts", "/b/y.ts"},
			cwd:      "/",
			expected: "/",
		},
		{
			name:     "parent_segments_are_resolved",
			paths:    []string{"../shared/a.ts", "../shared/b.ts"},
			cwd:      "/ws/pkg",
			expected: "/ws/shared/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, commondir.Commondir(tt.paths, tt.cwd))
		})
	}
}

func TestCommondir_DefaultsToWorkingDirectory(t *testing.T) {
	got := commondir.Commondir([]string{"a/x.ts", "a/y.ts"}, "")
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "/a/")
}
