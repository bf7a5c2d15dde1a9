package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/types"
)

// packageKeys maps keys of the package.json "jiek" field to config keys
var packageKeys = map[string]string{
	"outdir":               "build.outdir",
	"mode":                 "build.mode",
	"minify":               "build.minify",
	"sourcemap":            "build.sourcemap",
	"target":               "build.target",
	"withSource":           "entries.with_source",
	"withSuffix":           "entries.with_suffix",
	"allowJS":              "entries.allow_js",
	"sourceTag":            "entries.source_tag",
	"crossModuleConvertor": "entries.cross_module",
	"skipKey":              "entries.skip_key",
	"skipValue":            "entries.skip_value",
	"conditionals":         "entries.conditionals",
}

// pkgerKeys maps keys of the "jiek.pkger" object to config keys
var pkgerKeys = map[string]string{
	"source":    "pkger.source",
	"inputs":    "pkger.inputs",
	"noIndex":   "pkger.no_index",
	"noBrowser": "pkger.no_browser",
	"noCDN":     "pkger.no_cdn",
	"onlyESM":   "pkger.only_esm",
	"umdSuffix": "pkger.umd_suffix",
	"esmSuffix": "pkger.esm_suffix",
	"minSuffix": "pkger.min_suffix",
	"dtsExt":    "pkger.dts_ext",
}

// ForPackage returns the configuration of one package: c with the
// package.json "jiek" field applied on top. The receiver is not modified.
// "inputs" is not a setting and is read from the manifest directly.
func (c *Config) ForPackage(jiek *types.Object) (*Config, error) {
	if jiek == nil || jiek.Len() == 0 {
		clone := c.clone()
		return clone, nil
	}
	logger := logging.GetLogger("config.package")

	overrides := make(map[string]interface{})
	var invalid error
	jiek.Range(func(key string, value any) bool {
		switch key {
		case "inputs":
			return true
		case "skipJS":
			skip, ok := value.(bool)
			if !ok {
				invalid = errors.Newf(errors.ErrConfigValid, "jiek.skipJS must be a boolean, got %T", value)
				return false
			}
			overrides["entries.allow_js"] = !skip
			return true
		case "pkger":
			obj, ok := value.(*types.Object)
			if !ok {
				invalid = errors.Newf(errors.ErrConfigValid, "jiek.pkger must be an object, got %T", value)
				return false
			}
			obj.Range(func(k string, v any) bool {
				if target, ok := pkgerKeys[k]; ok {
					overrides[target] = plain(v)
				} else {
					logger.Trace().Str("key", "pkger."+k).Msg("Ignoring unknown package setting")
				}
				return true
			})
			return true
		}

		if target, ok := packageKeys[key]; ok {
			overrides[target] = plain(value)
		} else {
			logger.Trace().Str("key", key).Msg("Ignoring unknown package setting")
		}
		return true
	})
	if invalid != nil {
		return nil, invalid
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(c.toMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load base config")
	}
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply package config")
	}
	return unmarshal(k)
}

func (c *Config) clone() *Config {
	out := *c
	out.Entries.SkipKey = append([]string(nil), c.Entries.SkipKey...)
	out.Entries.SkipValue = append([]string(nil), c.Entries.SkipValue...)
	out.Entries.Conditionals = make(map[string]bool, len(c.Entries.Conditionals))
	for k, v := range c.Entries.Conditionals {
		out.Entries.Conditionals[k] = v
	}
	out.Pkger.Inputs = append([]string(nil), c.Pkger.Inputs...)
	out.Workspace.Packages = append([]string(nil), c.Workspace.Packages...)
	out.Watch.Ignore = append([]string(nil), c.Watch.Ignore...)
	return &out
}

// toMap converts a Config back to nested maps for koanf merging
func (c *Config) toMap() map[string]interface{} {
	conditionals := make(map[string]interface{}, len(c.Entries.Conditionals))
	for k, v := range c.Entries.Conditionals {
		conditionals[k] = v
	}

	return map[string]interface{}{
		"build": map[string]interface{}{
			"outdir":         c.Build.Outdir,
			"mode":           c.Build.Mode,
			"concurrency":    c.Build.Concurrency,
			"minify":         c.Build.Minify,
			"sourcemap":      c.Build.Sourcemap,
			"target":         c.Build.Target,
			"write_manifest": c.Build.WriteManifest,
			"cache_size":     c.Build.CacheSize,
		},
		"entries": map[string]interface{}{
			"with_source":  c.Entries.WithSource,
			"with_suffix":  c.Entries.WithSuffix,
			"allow_js":     c.Entries.AllowJS,
			"source_tag":   c.Entries.SourceTag,
			"cross_module": c.Entries.CrossModule,
			"skip_key":     c.Entries.SkipKey,
			"skip_value":   c.Entries.SkipValue,
			"conditionals": conditionals,
		},
		"pkger": map[string]interface{}{
			"source":     c.Pkger.Source,
			"inputs":     c.Pkger.Inputs,
			"no_index":   c.Pkger.NoIndex,
			"no_browser": c.Pkger.NoBrowser,
			"no_cdn":     c.Pkger.NoCDN,
			"only_esm":   c.Pkger.OnlyESM,
			"umd_suffix": c.Pkger.UMDSuffix,
			"esm_suffix": c.Pkger.ESMSuffix,
			"min_suffix": c.Pkger.MinSuffix,
			"dts_ext":    c.Pkger.DTSExt,
		},
		"workspace": map[string]interface{}{
			"packages": c.Workspace.Packages,
		},
		"watch": map[string]interface{}{
			"debounce": c.Watch.Debounce.String(),
			"ignore":   c.Watch.Ignore,
		},
	}
}

// plain converts ordered objects to maps so koanf and mapstructure can
// decode them
func plain(v any) any {
	switch t := v.(type) {
	case *types.Object:
		m := make(map[string]interface{}, t.Len())
		t.Range(func(k string, inner any) bool {
			m[k] = plain(inner)
			return true
		})
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}
