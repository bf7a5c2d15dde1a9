// Package build runs the package pipeline: discover the workspace, plan
// each selected package, bundle its targets and optionally write the
// publish fields back to package.json. Packages build concurrently.
package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/jiek/pkg/bundler"
	"github.com/arthur-debert/jiek/pkg/config"
	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/filesystem"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/arthur-debert/jiek/pkg/workspace"
)

// Options configures Run
type Options struct {
	// Root is the workspace root
	Root string
	// Packages selects packages by name or directory; empty builds all
	Packages []string
	Config   *config.Config

	// FileSystem defaults to the OS filesystem
	FileSystem types.FS
	// Bundler defaults to esbuild with the configured target
	Bundler bundler.Bundler
	// Cache is reused across runs when set
	Cache *manifest.Cache

	// PlanOnly stops after planning: nothing is bundled or written
	PlanOnly bool
}

// PackageResult is the outcome of one package
type PackageResult struct {
	Name     string
	Plan     *Plan
	Files    []string
	Warnings []string
	// ManifestWritten is set when package.json changed on disk
	ManifestWritten bool
	Duration        time.Duration
	Err             error
}

// Result is the outcome of Run, with packages sorted by name
type Result struct {
	Workspace *workspace.Workspace
	Packages  []PackageResult
}

// Failed returns the packages that did not build
func (r *Result) Failed() []PackageResult {
	var failed []PackageResult
	for _, p := range r.Packages {
		if p.Err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// Run builds the selected packages. A package failure does not stop the
// others; the returned error joins every failure.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("build")
	done := logging.LogOperationStart(logger, "build")
	defer done()

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	cache := opts.Cache
	if cache == nil {
		var err error
		cache, err = manifest.NewCache(fsys, cfg.Build.CacheSize)
		if err != nil {
			return nil, err
		}
	}

	ws, err := workspace.Discover(fsys, cache, opts.Root, cfg.Workspace.Packages)
	if err != nil {
		return nil, err
	}
	pkgs, err := ws.Select(opts.Packages)
	if err != nil {
		return nil, err
	}

	b := opts.Bundler
	if b == nil && !opts.PlanOnly {
		b, err = bundler.NewEsbuild(cfg.Build.Target, cfg.Build.Sourcemap)
		if err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("root", ws.Root).
		Int("packages", len(pkgs)).
		Int("workers", cfg.Workers()).
		Bool("planOnly", opts.PlanOnly).
		Msg("Starting build")

	r := &runner{fsys: fsys, cfg: cfg, bundler: b, planOnly: opts.PlanOnly}
	results := make([]PackageResult, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers())
	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			results[i] = r.buildPackage(gctx, pkg)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	result := &Result{Workspace: ws, Packages: results}

	failed := result.Failed()
	if len(failed) == 0 {
		logger.Info().Int("packages", len(results)).Msg("Build completed")
		return result, nil
	}

	errs := make([]error, 0, len(failed))
	for _, p := range failed {
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, p.Err))
	}
	logger.Error().Int("failed", len(failed)).Msg("Build failed")
	return result, errors.Wrapf(stderrors.Join(errs...), errors.ErrBuildFailed,
		"%d of %d packages failed", len(failed), len(results))
}

type runner struct {
	fsys     types.FS
	cfg      *config.Config
	bundler  bundler.Bundler
	planOnly bool
}

func (r *runner) buildPackage(ctx context.Context, pkg workspace.Package) (res PackageResult) {
	logger := logging.ForPackage("build", pkg.Name)
	start := time.Now()
	res.Name = pkg.Name
	defer func() { res.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	plan, err := PlanPackage(r.fsys, pkg, r.cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to plan package")
		res.Err = err
		return res
	}
	res.Plan = plan
	if r.planOnly {
		return res
	}

	if len(plan.Targets) > 0 {
		out, err := r.bundler.Bundle(ctx, bundler.Job{
			Package: pkg.Name,
			Dir:     pkg.Dir,
			Targets: plan.Targets,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to bundle package")
			res.Err = err
			return res
		}
		res.Files = out.Files
		res.Warnings = out.Warnings
	}

	if plan.Config.Build.WriteManifest {
		doc := pkg.Manifest.PublishManifest(plan.Exports, plan.Fields)
		written, err := manifest.WriteIfChanged(r.fsys, pkg.Dir, doc)
		if err != nil {
			res.Err = err
			return res
		}
		res.ManifestWritten = written
	}

	logger.Info().
		Int("files", len(res.Files)).
		Bool("manifest", res.ManifestWritten).
		Msg("Package built")
	return res
}
