// Package workspace discovers the packages of a monorepo.
//
// Package globs come from pnpm-workspace.yaml, then the "workspaces" field
// of the root package.json, then the configured fallback. A pattern starting
// with "!" excludes matching directories. Without any pattern the root
// directory is the only package.
package workspace

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/types"
)

// PnpmWorkspaceFile declares workspace packages for pnpm
const PnpmWorkspaceFile = "pnpm-workspace.yaml"

// Package is one buildable package of the workspace
type Package struct {
	Name string
	// Dir is the package directory
	Dir string
	// RelDir is Dir relative to the workspace root, "." for the root
	RelDir   string
	Manifest *manifest.Manifest
}

// Workspace is the set of discovered packages, sorted by name
type Workspace struct {
	Root     string
	Patterns []string
	Packages []Package
}

type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// Discover finds the packages under root. Manifests are loaded through
// cache. fallback is used when the workspace declares no patterns.
func Discover(fsys types.FS, cache *manifest.Cache, root string, fallback []string) (*Workspace, error) {
	logger := logging.GetLogger("workspace")
	root = filepath.Clean(root)

	patterns, err := readPatterns(fsys, root)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = fallback
	}

	ws := &Workspace{Root: root, Patterns: patterns}
	if len(patterns) == 0 {
		m, err := cache.Load(root)
		if err != nil {
			return nil, err
		}
		ws.Packages = []Package{{Name: m.Name, Dir: root, RelDir: ".", Manifest: m}}
		logger.Debug().Str("root", root).Msg("No workspace patterns, using root package")
		return ws, nil
	}

	dirs, err := expand(fsys, root, patterns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	for _, rel := range dirs {
		dir := filepath.Join(root, filepath.FromSlash(rel))
		m, err := cache.Load(dir)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrManifestNotFound) {
				logger.Trace().Str("dir", rel).Msg("Skipping directory without package.json")
				continue
			}
			return nil, err
		}
		if other, dup := seen[m.Name]; dup {
			return nil, errors.Newf(errors.ErrWorkspaceInvalid, "package name %q is used twice", m.Name).
				WithDetail("dirs", []string{other, rel})
		}
		seen[m.Name] = rel
		ws.Packages = append(ws.Packages, Package{Name: m.Name, Dir: dir, RelDir: rel, Manifest: m})
		logger.Trace().Str("name", m.Name).Str("dir", rel).Msg("Found package")
	}

	sort.Slice(ws.Packages, func(i, j int) bool {
		return ws.Packages[i].Name < ws.Packages[j].Name
	})

	logger.Info().Int("count", len(ws.Packages)).Msg("Discovered packages")
	return ws, nil
}

// readPatterns returns the declared package globs, or nil
func readPatterns(fsys types.FS, root string) ([]string, error) {
	pnpmPath := filepath.Join(root, PnpmWorkspaceFile)
	data, err := fsys.ReadFile(pnpmPath)
	if err == nil {
		var pnpm pnpmWorkspace
		if err := yaml.Unmarshal(data, &pnpm); err != nil {
			return nil, errors.Wrap(err, errors.ErrWorkspaceInvalid, "cannot parse pnpm-workspace.yaml").
				WithDetail("path", pnpmPath)
		}
		return pnpm.Packages, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read pnpm-workspace.yaml").
			WithDetail("path", pnpmPath)
	}

	data, err = fsys.ReadFile(filepath.Join(root, manifest.FileName))
	if err != nil {
		return nil, nil
	}
	doc, err := types.ParseObject(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "cannot parse root package.json")
	}

	value, ok := doc.Get("workspaces")
	if !ok {
		return nil, nil
	}
	// yarn also accepts {"packages": [...]}
	if obj, isObj := value.(*types.Object); isObj {
		value, _ = obj.Get("packages")
	}
	list, ok := value.([]any)
	if !ok {
		return nil, errors.New(errors.ErrWorkspaceInvalid, "workspaces must be an array of globs")
	}
	patterns := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.New(errors.ErrWorkspaceInvalid, "workspaces must be an array of globs")
		}
		patterns = append(patterns, s)
	}
	return patterns, nil
}

// expand resolves package globs into sorted directories relative to root
func expand(fsys types.FS, root string, patterns []string) ([]string, error) {
	var include, exclude []string
	for _, p := range patterns {
		negated := strings.HasPrefix(p, "!")
		p = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(p, "!"), "./"), "/")
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Newf(errors.ErrWorkspaceInvalid, "invalid workspace pattern %q", p)
		}
		if negated {
			exclude = append(exclude, p)
		} else {
			include = append(include, p)
		}
	}

	set := make(map[string]bool)
	for _, p := range include {
		matches, err := fsys.Glob(root, path.Join(p, manifest.FileName))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrWorkspaceInvalid, "cannot expand workspace pattern %q", p)
		}
		for _, m := range matches {
			dir := path.Dir(m)
			if isExcluded(dir, exclude) {
				continue
			}
			set[dir] = true
		}
	}

	dirs := make([]string, 0, len(set))
	for dir := range set {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isExcluded(dir string, exclude []string) bool {
	if dir == "node_modules" || strings.HasPrefix(dir, "node_modules/") || strings.Contains(dir, "/node_modules/") {
		return true
	}
	for _, p := range exclude {
		if ok, _ := doublestar.Match(p, dir); ok {
			return true
		}
	}
	return false
}

// Select returns the packages named in names, matching package name,
// directory name or directory relative to the root. No names selects all.
func (w *Workspace) Select(names []string) ([]Package, error) {
	if len(names) == 0 {
		return w.Packages, nil
	}

	var selected []Package
	picked := make(map[string]bool)
	for _, name := range names {
		pkg, ok := w.find(name)
		if !ok {
			return nil, errors.Newf(errors.ErrPackageNotFound, "no package named %q", name).
				WithDetail("name", name)
		}
		if picked[pkg.Name] {
			continue
		}
		picked[pkg.Name] = true
		selected = append(selected, pkg)
	}
	return selected, nil
}

func (w *Workspace) find(name string) (Package, bool) {
	clean := strings.TrimSuffix(strings.TrimPrefix(name, "./"), "/")
	for _, p := range w.Packages {
		if p.Name == name || p.RelDir == clean {
			return p, true
		}
	}
	for _, p := range w.Packages {
		if filepath.Base(p.Dir) == clean {
			return p, true
		}
	}
	return Package{}, false
}

// PackageOf returns the innermost package containing file
func (w *Workspace) PackageOf(file string) (Package, bool) {
	file = filepath.Clean(file)
	var best Package
	found := false
	for _, p := range w.Packages {
		if file != p.Dir && !strings.HasPrefix(file, p.Dir+string(filepath.Separator)) {
			continue
		}
		if !found || len(p.Dir) > len(best.Dir) {
			best, found = p, true
		}
	}
	return best, found
}
