// Test Type: Unit Test
// Description: Tests for applying the package.json jiek field over the workspace configuration

package config

import (
	"testing"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPackage(t *testing.T) {
	base := Default()
	base.Entries.Conditionals = map[string]bool{"development": true}

	jiek, err := types.ParseObject([]byte(`{
		"inputs": ["src/index.ts"],
		"outdir": "lib",
		"withSource": true,
		"skipJS": false,
		"sourceTag": "pkg-a",
		"crossModuleConvertor": false,
		"skipKey": ["./internal"],
		"conditionals": {"browser": true},
		"pkger": {"source": "source", "noCDN": true},
		"unknownSetting": 1
	}`))
	require.NoError(t, err)

	cfg, err := base.ForPackage(jiek)
	require.NoError(t, err)

	assert.Equal(t, "lib", cfg.Build.Outdir)
	assert.True(t, cfg.Entries.WithSource)
	assert.True(t, cfg.Entries.AllowJS)
	assert.Equal(t, "pkg-a", cfg.Entries.SourceTag)
	assert.False(t, cfg.Entries.CrossModule)
	assert.Equal(t, []string{"./internal"}, cfg.Entries.SkipKey)
	assert.Equal(t, map[string]bool{"development": true, "browser": true}, cfg.Entries.Conditionals)
	assert.Equal(t, "source", cfg.Pkger.Source)
	assert.True(t, cfg.Pkger.NoCDN)
	assert.Equal(t, base.Watch.Debounce, cfg.Watch.Debounce)

	t.Run("base_is_unchanged", func(t *testing.T) {
		assert.Equal(t, "./dist", base.Build.Outdir)
		assert.Equal(t, map[string]bool{"development": true}, base.Entries.Conditionals)
	})
}

func TestForPackage_NoField(t *testing.T) {
	base := Default()
	cfg, err := base.ForPackage(nil)
	require.NoError(t, err)
	assert.Equal(t, base.Build, cfg.Build)
	assert.NotSame(t, base, cfg)
}

func TestForPackage_Errors(t *testing.T) {
	tests := []struct {
		name string
		jiek string
	}{
		{name: "skip_js_not_bool", jiek: `{"skipJS": "yes"}`},
		{name: "pkger_not_object", jiek: `{"pkger": true}`},
		{name: "unknown_mode", jiek: `{"mode": "webpack"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jiek, err := types.ParseObject([]byte(tt.jiek))
			require.NoError(t, err)

			_, err = Default().ForPackage(jiek)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid), err.Error())
		})
	}
}
