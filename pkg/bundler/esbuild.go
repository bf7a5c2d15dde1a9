package bundler

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
)

// Esbuild bundles each target with esbuild. Dependencies stay external.
type Esbuild struct {
	target    api.Target
	sourcemap bool
}

// NewEsbuild creates an esbuild bundler for an ECMAScript target such as
// "es2020" or "esnext"
func NewEsbuild(target string, sourcemap bool) (*Esbuild, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	return &Esbuild{target: t, sourcemap: sourcemap}, nil
}

var targets = map[string]api.Target{
	"":       api.ES2020,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

// ParseTarget converts a target name to an esbuild target
func ParseTarget(name string) (api.Target, error) {
	t, ok := targets[strings.ToLower(name)]
	if !ok {
		return api.DefaultTarget, errors.Newf(errors.ErrConfigValid, "unknown build target %q", name).
			WithDetail("target", name)
	}
	return t, nil
}

// Bundle implements Bundler. Targets run in order; the first failure stops
// the job.
func (e *Esbuild) Bundle(ctx context.Context, job Job) (*Result, error) {
	logger := logging.ForPackage("bundler.esbuild", job.Package)
	result := &Result{Package: job.Package}

	for _, t := range job.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := api.Build(e.options(job.Dir, t))
		if len(res.Errors) > 0 {
			msg := res.Errors[0].Text
			if loc := res.Errors[0].Location; loc != nil {
				msg = loc.File + ": " + msg
			}
			return nil, errors.Newf(errors.ErrBundleFailed, "esbuild failed for %s: %s", t.Entry, msg).
				WithDetail("package", job.Package).
				WithDetail("outfile", t.Outfile).
				WithDetail("errors", len(res.Errors))
		}
		for _, w := range res.Warnings {
			result.Warnings = append(result.Warnings, w.Text)
		}
		result.Files = append(result.Files, t.Outfile)
		logger.Debug().
			Str("entry", t.Entry).
			Str("outfile", t.Outfile).
			Str("format", string(t.Format)).
			Msg("Bundled target")
	}
	return result, nil
}

func (e *Esbuild) options(dir string, t Target) api.BuildOptions {
	opts := api.BuildOptions{
		EntryPoints:       []string{t.Entry},
		Outfile:           t.Outfile,
		AbsWorkingDir:     dir,
		Bundle:            true,
		Write:             true,
		Packages:          api.PackagesExternal,
		Target:            e.target,
		LogLevel:          api.LogLevelSilent,
		MinifySyntax:      t.Minify,
		MinifyWhitespace:  t.Minify,
		MinifyIdentifiers: t.Minify,
	}
	if !filepath.IsAbs(dir) {
		if abs, err := filepath.Abs(dir); err == nil {
			opts.AbsWorkingDir = abs
		}
	}
	if e.sourcemap {
		opts.Sourcemap = api.SourceMapLinked
	}

	switch t.Format {
	case FormatESM:
		opts.Format = api.FormatESModule
		opts.Platform = api.PlatformNeutral
	case FormatCJS:
		opts.Format = api.FormatCommonJS
		opts.Platform = api.PlatformNode
	case FormatIIFE:
		opts.Format = api.FormatIIFE
		opts.Platform = api.PlatformBrowser
		opts.GlobalName = t.GlobalName
	}
	return opts
}
