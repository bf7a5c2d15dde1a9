// Package bundler turns synthesized outputs into bundler targets and runs
// them. Esbuild drives esbuild in process; DryRun only records what would
// be built.
package bundler

import (
	"context"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/arthur-debert/jiek/pkg/entrypoints"
)

// Format is the module format of a bundle
type Format string

const (
	FormatESM  Format = "esm"
	FormatCJS  Format = "cjs"
	FormatIIFE Format = "iife"
)

// Target is one entry compiled to one output file
type Target struct {
	// Entry is the source path relative to the package directory
	Entry string
	// Outfile is the output path relative to the package directory
	Outfile    string
	Format     Format
	Minify     bool
	GlobalName string
}

// Job is the set of targets of one package
type Job struct {
	Package string
	// Dir is the absolute package directory
	Dir     string
	Targets []Target
}

// Result reports what a bundler produced
type Result struct {
	Package  string
	Files    []string
	Warnings []string
}

// Bundler builds the targets of a job
type Bundler interface {
	Bundle(ctx context.Context, job Job) (*Result, error)
}

var declarationRe = regexp.MustCompile(`\.d\.[mc]?ts$`)

// PlanOptions configures PlanTargets
type PlanOptions struct {
	// IsModule is true for "type": "module" packages, where .js is ESM
	IsModule bool
	// Minify minifies every target, not only ".min." outputs
	Minify bool
	// PackageName seeds the global name of IIFE bundles
	PackageName string
}

// PlanTargets maps outputs to targets, one per distinct output file. The
// format follows the output name: .mjs and ".esm." are ESM, .cjs is
// CommonJS, ".umd." and ".iife." are IIFE and plain .js follows the package
// type. Declarations and non JavaScript outputs are skipped.
func PlanTargets(outputs []entrypoints.Output, opts PlanOptions) []Target {
	seen := make(map[string]bool)
	var targets []Target
	for _, o := range outputs {
		outfile := path.Clean(o.Dist)
		if seen[outfile] || declarationRe.MatchString(outfile) {
			continue
		}
		format, ok := formatOf(outfile, opts.IsModule)
		if !ok {
			continue
		}
		seen[outfile] = true

		t := Target{
			Entry:   path.Clean(o.Source),
			Outfile: outfile,
			Format:  format,
			Minify:  opts.Minify || strings.Contains(path.Base(outfile), ".min."),
		}
		if format == FormatIIFE {
			t.GlobalName = GlobalName(opts.PackageName)
		}
		targets = append(targets, t)
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Outfile < targets[j].Outfile
	})
	return targets
}

func formatOf(outfile string, isModule bool) (Format, bool) {
	base := path.Base(outfile)
	switch path.Ext(base) {
	case ".mjs":
		return FormatESM, true
	case ".cjs":
		return FormatCJS, true
	case ".js":
	default:
		return "", false
	}

	switch {
	case strings.Contains(base, ".umd.") || strings.Contains(base, ".iife."):
		return FormatIIFE, true
	case strings.Contains(base, ".esm."):
		return FormatESM, true
	case isModule:
		return FormatESM, true
	default:
		return FormatCJS, true
	}
}

// GlobalName derives an identifier for IIFE bundles from a package name:
// "@scope/my-lib" becomes "myLib".
func GlobalName(pkgName string) string {
	name := pkgName
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	upper := false
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = b.Len() > 0
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteRune('_')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "bundle"
	}
	return b.String()
}
