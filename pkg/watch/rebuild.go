package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/arthur-debert/jiek/pkg/build"
	"github.com/arthur-debert/jiek/pkg/config"
	"github.com/arthur-debert/jiek/pkg/filesystem"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/workspace"
)

// Change is a batch of changed paths mapped onto the workspace
type Change struct {
	// Packages are the names of the packages to rebuild, sorted
	Packages []string
	// Manifests are the package directories whose package.json changed
	Manifests []string
	// Full is set when the change may alter the package set itself
	Full bool
}

// Classify maps changed paths to packages. Paths under a package's outdir
// are build outputs and ignored. A package.json that belongs to no known
// package, or any change when ws is nil, asks for a full rebuild.
func Classify(ws *workspace.Workspace, outdir string, changed []string) Change {
	var c Change
	if ws == nil {
		c.Full = len(changed) > 0
		return c
	}

	pkgs := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range changed {
		isManifest := filepath.Base(p) == manifest.FileName
		pkg, ok := ws.PackageOf(p)
		if !ok {
			if isManifest {
				c.Full = true
			}
			continue
		}
		if isManifest && filepath.Dir(filepath.Clean(p)) != pkg.Dir {
			// a nested package not discovered yet
			c.Full = true
			continue
		}
		if isOutput(pkg.Dir, outdir, p) {
			continue
		}
		pkgs[pkg.Name] = true
		if isManifest {
			dirs[pkg.Dir] = true
		}
	}

	for name := range pkgs {
		c.Packages = append(c.Packages, name)
	}
	for dir := range dirs {
		c.Manifests = append(c.Manifests, dir)
	}
	sort.Strings(c.Packages)
	sort.Strings(c.Manifests)
	return c
}

func isOutput(pkgDir, outdir, p string) bool {
	if outdir == "" {
		return false
	}
	out := filepath.Join(pkgDir, filepath.FromSlash(outdir))
	p = filepath.Clean(p)
	return p == out || len(p) > len(out) && p[:len(out)+1] == out+string(filepath.Separator)
}

// Rebuilder runs the build for the packages touched by a change. The
// manifest cache is shared across builds and invalidated on package.json
// changes.
type Rebuilder struct {
	opts build.Options
	// OnResult is called after every build
	OnResult func(*build.Result, error)

	mu sync.Mutex
	ws *workspace.Workspace
}

// NewRebuilder creates a Rebuilder. Missing options are filled in, the
// cache included, so that invalidation reaches the cache the builds read
// from.
func NewRebuilder(opts build.Options) (*Rebuilder, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.FileSystem == nil {
		opts.FileSystem = filesystem.NewOS()
	}
	if opts.Cache == nil {
		cache, err := manifest.NewCache(opts.FileSystem, opts.Config.Build.CacheSize)
		if err != nil {
			return nil, err
		}
		opts.Cache = cache
	}
	return &Rebuilder{opts: opts}, nil
}

// Build runs a build of opts.Packages and remembers the workspace
func (r *Rebuilder) Build(ctx context.Context) (*build.Result, error) {
	return r.run(ctx, r.opts.Packages)
}

// OnChange is a Config.OnChange callback
func (r *Rebuilder) OnChange(ctx context.Context, changed []string) error {
	logger := logging.GetLogger("watch.rebuild")

	r.mu.Lock()
	ws := r.ws
	r.mu.Unlock()

	c := Classify(ws, r.opts.Config.Build.Outdir, changed)
	for _, dir := range c.Manifests {
		r.opts.Cache.Invalidate(dir)
	}

	var names []string
	switch {
	case c.Full:
		logger.Info().Msg("Workspace changed, rebuilding selection")
		for _, p := range changed {
			if filepath.Base(p) == manifest.FileName {
				r.opts.Cache.Invalidate(filepath.Dir(p))
			}
		}
		names = r.opts.Packages
	case len(c.Packages) == 0:
		logger.Debug().Int("changed", len(changed)).Msg("No package affected")
		return nil
	default:
		names = r.restrict(c.Packages)
		if len(names) == 0 {
			return nil
		}
	}

	logger.Info().Strs("packages", names).Msg("Rebuilding")
	_, err := r.run(ctx, names)
	return err
}

// restrict keeps the packages that belong to the configured selection
func (r *Rebuilder) restrict(names []string) []string {
	if len(r.opts.Packages) == 0 {
		return names
	}
	r.mu.Lock()
	ws := r.ws
	r.mu.Unlock()
	selected, err := ws.Select(r.opts.Packages)
	if err != nil {
		return names
	}
	allowed := make(map[string]bool, len(selected))
	for _, p := range selected {
		allowed[p.Name] = true
	}
	var out []string
	for _, n := range names {
		if allowed[n] {
			out = append(out, n)
		}
	}
	return out
}

func (r *Rebuilder) run(ctx context.Context, names []string) (*build.Result, error) {
	opts := r.opts
	opts.Packages = names
	result, err := build.Run(ctx, opts)
	if result != nil && result.Workspace != nil {
		r.mu.Lock()
		r.ws = result.Workspace
		r.mu.Unlock()
	}
	if r.OnResult != nil {
		r.OnResult(result, err)
	}
	return result, err
}
