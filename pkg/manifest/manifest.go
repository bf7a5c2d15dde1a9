// Package manifest loads, inspects and rewrites package.json files.
//
// A Manifest keeps the whole document as an ordered types.Object so that a
// rewritten manifest differs from the original only where jiek touched it.
package manifest

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/types"
)

// FileName is the manifest file name inside a package directory
const FileName = "package.json"

// ConfigField is the manifest field holding per package jiek settings
const ConfigField = "jiek"

// Manifest is a parsed package.json
type Manifest struct {
	// Dir is the package directory
	Dir string
	// Path is the manifest file path
	Path string

	Name    string
	Version *semver.Version
	// Type is the "type" field: "module", "commonjs" or empty
	Type    string
	Private bool

	// Doc is the full document in source order
	Doc *types.Object
}

// Load reads and parses <dir>/package.json
func Load(fsys types.FS, dir string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")
	path := filepath.Join(dir, FileName)

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrManifestNotFound, "package.json not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read package.json").
			WithDetail("path", path)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.Dir = dir
	m.Path = path

	logger.Trace().Str("path", path).Str("name", m.Name).Msg("Loaded manifest")
	return m, nil
}

// Parse decodes manifest content. The name field is required; a version,
// when present, must be a valid semantic version.
func Parse(data []byte) (*Manifest, error) {
	doc, err := types.ParseObject(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "cannot parse package.json")
	}

	m := &Manifest{Doc: doc}
	m.Name, _ = doc.GetString("name")
	if m.Name == "" {
		return nil, errors.New(errors.ErrConfigValid, "package.json is missing the name field")
	}

	if raw, ok := doc.GetString("version"); ok && raw != "" {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrManifestParse, "invalid version %q", raw).
				WithDetail("name", m.Name)
		}
		m.Version = v
	}

	m.Type, _ = doc.GetString("type")
	if private, ok := doc.Get("private"); ok {
		m.Private, _ = private.(bool)
	}
	return m, nil
}

// IsModule reports whether .js files of the package are ES modules
func (m *Manifest) IsModule() bool {
	return m.Type == "module"
}

// Config returns the jiek field, or nil when the package has none
func (m *Manifest) Config() *types.Object {
	cfg, _ := m.Doc.GetObject(ConfigField)
	return cfg
}

// Entrypoints returns the entry point declaration: jiek.inputs when set,
// otherwise the exports field.
func (m *Manifest) Entrypoints() (any, error) {
	if cfg := m.Config(); cfg != nil {
		if inputs, ok := cfg.Get("inputs"); ok {
			return inputs, nil
		}
	}
	if exports, ok := m.Doc.Get("exports"); ok {
		return exports, nil
	}
	return nil, errors.New(errors.ErrConfigValid, "package declares neither exports nor jiek.inputs").
		WithDetail("name", m.Name)
}

// Write stores doc as <dir>/package.json with two space indentation
func Write(fsys types.FS, dir string, doc *types.Object) error {
	_, err := WriteIfChanged(fsys, dir, doc)
	return err
}

// WriteIfChanged is Write that leaves the file alone when its content
// already matches, so watchers see no event. It reports whether it wrote.
func WriteIfChanged(fsys types.FS, dir string, doc *types.Object) (bool, error) {
	path := filepath.Join(dir, FileName)
	data, err := types.MarshalIndent(doc, "  ")
	if err != nil {
		return false, errors.Wrap(err, errors.ErrManifestWrite, "cannot encode package.json").
			WithDetail("path", path)
	}
	data = append(data, '\n')

	if current, err := fsys.ReadFile(path); err == nil && bytes.Equal(current, data) {
		return false, nil
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return false, errors.Wrap(err, errors.ErrManifestWrite, "cannot write package.json").
			WithDetail("path", path)
	}
	logger := logging.GetLogger("manifest")
	logger.Debug().Str("path", path).Msg("Wrote manifest")
	return true, nil
}
