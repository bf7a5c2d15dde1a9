package config

import (
	"runtime"
	"time"
)

// Build modes
const (
	ModeExports = "exports"
	ModePkger   = "pkger"
)

// Build holds bundling settings
type Build struct {
	Outdir        string `koanf:"outdir" toml:"outdir"`
	Mode          string `koanf:"mode" toml:"mode"`
	Concurrency   int    `koanf:"concurrency" toml:"concurrency"`
	Minify        bool   `koanf:"minify" toml:"minify"`
	Sourcemap     bool   `koanf:"sourcemap" toml:"sourcemap"`
	Target        string `koanf:"target" toml:"target"`
	WriteManifest bool   `koanf:"write_manifest" toml:"write_manifest"`
	CacheSize     int    `koanf:"cache_size" toml:"cache_size"`
}

// Entries holds export map synthesis settings
type Entries struct {
	WithSource   bool            `koanf:"with_source" toml:"with_source"`
	WithSuffix   bool            `koanf:"with_suffix" toml:"with_suffix"`
	AllowJS      bool            `koanf:"allow_js" toml:"allow_js"`
	SourceTag    string          `koanf:"source_tag" toml:"source_tag"`
	CrossModule  bool            `koanf:"cross_module" toml:"cross_module"`
	SkipKey      []string        `koanf:"skip_key" toml:"skip_key"`
	SkipValue    []string        `koanf:"skip_value" toml:"skip_value"`
	Conditionals map[string]bool `koanf:"conditionals" toml:"conditionals"`
}

// Pkger holds settings of the convention based mode
type Pkger struct {
	Source    string   `koanf:"source" toml:"source"`
	Inputs    []string `koanf:"inputs" toml:"inputs"`
	NoIndex   bool     `koanf:"no_index" toml:"no_index"`
	NoBrowser bool     `koanf:"no_browser" toml:"no_browser"`
	NoCDN     bool     `koanf:"no_cdn" toml:"no_cdn"`
	OnlyESM   bool     `koanf:"only_esm" toml:"only_esm"`
	UMDSuffix string   `koanf:"umd_suffix" toml:"umd_suffix"`
	ESMSuffix string   `koanf:"esm_suffix" toml:"esm_suffix"`
	MinSuffix string   `koanf:"min_suffix" toml:"min_suffix"`
	DTSExt    string   `koanf:"dts_ext" toml:"dts_ext"`
}

// Workspace holds package discovery settings
type Workspace struct {
	Packages []string `koanf:"packages" toml:"packages"`
}

// Watch holds watch mode settings
type Watch struct {
	Debounce time.Duration `koanf:"debounce" toml:"debounce"`
	Ignore   []string      `koanf:"ignore" toml:"ignore"`
}

// Config is the main configuration structure
type Config struct {
	Build     Build     `koanf:"build" toml:"build"`
	Entries   Entries   `koanf:"entries" toml:"entries"`
	Pkger     Pkger     `koanf:"pkger" toml:"pkger"`
	Workspace Workspace `koanf:"workspace" toml:"workspace"`
	Watch     Watch     `koanf:"watch" toml:"watch"`
}

// Default returns the embedded defaults
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipEnv: true})
	if err != nil {
		// only reachable with broken embedded defaults
		return &Config{
			Build:   Build{Outdir: "./dist", Mode: ModeExports, CacheSize: 256},
			Entries: Entries{CrossModule: true},
			Watch:   Watch{Debounce: 300 * time.Millisecond},
		}
	}
	return cfg
}

// Workers returns the number of packages to build at once
func (c *Config) Workers() int {
	if c.Build.Concurrency > 0 {
		return c.Build.Concurrency
	}
	return runtime.NumCPU()
}
