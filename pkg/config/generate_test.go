// Test Type: Unit Test
// Description: Tests for configuration template generation and rendering

package config

import (
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentOutConfigValues(t *testing.T) {
	input := "# header\n\n[build]\noutdir = \"dist\"\n  minify = false\n"
	expected := "# header\n\n[build]\n# outdir = \"dist\"\n#   minify = false\n"
	assert.Equal(t, expected, commentOutConfigValues(input))
}

func TestGenerateConfigContent(t *testing.T) {
	content := GenerateConfigContent()
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "#"), "line should be commented: %q", line)
	}
	assert.Contains(t, content, "# outdir = \"./dist\"")
}

func TestRender(t *testing.T) {
	cfg := Default()
	cfg.Build.Outdir = "lib"
	cfg.Entries.Conditionals = map[string]bool{"development": true}

	out, err := Render(cfg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, toml.Unmarshal([]byte(out), &decoded))

	build := decoded["build"].(map[string]interface{})
	assert.Equal(t, "lib", build["outdir"])
	watch := decoded["watch"].(map[string]interface{})
	assert.Equal(t, "300ms", watch["debounce"])
	entries := decoded["entries"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"development": true}, entries["conditionals"])
}
