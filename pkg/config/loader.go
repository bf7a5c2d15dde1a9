package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// sections: JIEK_ENTRIES__WITH_SOURCE=true sets entries.with_source.
const EnvPrefix = "JIEK_"

// RootConfigFiles are looked up in the workspace root, first match wins
var RootConfigFiles = []string{"jiek.toml", ".jiek.toml"}

// LoadOptions configures Load
type LoadOptions struct {
	// Root is the workspace root searched for RootConfigFiles
	Root string
	// File is an explicit configuration file replacing the root lookup
	File string
	// Overrides are dotted keys applied last, typically from flags
	Overrides map[string]interface{}
	// SkipEnv ignores JIEK_* variables
	SkipEnv bool
}

// Load builds the configuration from, in increasing priority: embedded
// defaults, the root configuration file, the environment and overrides.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Root config file
	path, err := configFilePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load config file").
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Environment
	if !opts.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return unmarshal(k)
}

func configFilePath(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", errors.Wrap(err, errors.ErrConfigLoad, "config file not found").
				WithDetail("path", opts.File)
		}
		return opts.File, nil
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	for _, name := range RootConfigFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapToBoolMapHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be expressed in types
func (c *Config) Validate() error {
	switch c.Build.Mode {
	case ModeExports, ModePkger:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown build mode %q", c.Build.Mode).
			WithDetail("allowed", []string{ModeExports, ModePkger})
	}
	if c.Build.Outdir == "" {
		return errors.New(errors.ErrConfigValid, "build.outdir must not be empty")
	}
	if c.Build.Concurrency < 0 {
		return errors.Newf(errors.ErrConfigValid, "build.concurrency must not be negative, got %d", c.Build.Concurrency)
	}
	return nil
}

func mapToBoolMapHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() == reflect.Map && t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Bool {
			newMap := make(map[string]bool)
			if m, ok := data.(map[string]interface{}); ok {
				for k, v := range m {
					if b, ok := v.(bool); ok {
						newMap[k] = b
					}
				}
				return newMap, nil
			}
		}
		return data, nil
	}
}
