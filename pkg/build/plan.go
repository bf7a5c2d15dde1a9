package build

import (
	"github.com/arthur-debert/jiek/pkg/bundler"
	"github.com/arthur-debert/jiek/pkg/config"
	"github.com/arthur-debert/jiek/pkg/entrypoints"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/pkger"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/arthur-debert/jiek/pkg/workspace"
)

// Plan is everything known about a package build before bundling starts
type Plan struct {
	Package workspace.Package
	// Config is the effective configuration of the package
	Config *config.Config
	// Exports is the synthesized exports tree
	Exports *types.Object
	// Fields are the publish fields, exports included
	Fields  *types.Object
	Outputs []entrypoints.Output
	Targets []bundler.Target
}

// PlanPackage resolves the configuration of pkg and derives its exports,
// publish fields and bundler targets.
func PlanPackage(fsys types.FS, pkg workspace.Package, base *config.Config) (*Plan, error) {
	logger := logging.ForPackage("build.plan", pkg.Name)
	m := pkg.Manifest

	cfg, err := base.ForPackage(m.Config())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{Package: pkg, Config: cfg}
	switch cfg.Build.Mode {
	case config.ModePkger:
		err = planPkger(fsys, plan)
	default:
		err = planExports(plan)
	}
	if err != nil {
		return nil, err
	}

	plan.Targets = bundler.PlanTargets(plan.Outputs, bundler.PlanOptions{
		IsModule:    m.IsModule(),
		Minify:      cfg.Build.Minify,
		PackageName: m.Name,
	})

	logger.Debug().
		Str("mode", cfg.Build.Mode).
		Int("exports", plan.Exports.Len()).
		Int("targets", len(plan.Targets)).
		Msg("Planned package")
	return plan, nil
}

// SynthesisOptions maps a package configuration to synthesizer options
func SynthesisOptions(cfg *config.Config, dir, pkgType string) (entrypoints.Options, error) {
	skipValue, err := entrypoints.PatternRules(cfg.Entries.SkipValue)
	if err != nil {
		return entrypoints.Options{}, err
	}

	conditionals := entrypoints.BooleanConditionals(cfg.Entries.Conditionals)
	if cfg.Entries.CrossModule {
		conditionals = append(conditionals, entrypoints.CrossModuleConditionals(pkgType)...)
	}

	return entrypoints.Options{
		Cwd:    dir,
		Outdir: cfg.Build.Outdir,
		Skip: entrypoints.SkipOptions{
			SkipKey:   entrypoints.LiteralRules(cfg.Entries.SkipKey),
			SkipValue: skipValue,
			AllowJS:   cfg.Entries.AllowJS,
		},
		WithSource:   cfg.Entries.WithSource,
		SourceTag:    cfg.Entries.SourceTag,
		WithSuffix:   cfg.Entries.WithSuffix,
		Conditionals: conditionals,
	}, nil
}

func planExports(plan *Plan) error {
	m := plan.Package.Manifest

	raw, err := m.Entrypoints()
	if err != nil {
		return err
	}
	ep, err := entrypoints.ParseEntrypoints(raw)
	if err != nil {
		return err
	}

	opts, err := SynthesisOptions(plan.Config, plan.Package.Dir, m.Type)
	if err != nil {
		return err
	}
	res, err := entrypoints.Synthesize(ep, opts)
	if err != nil {
		return err
	}

	plan.Exports = res.Exports
	plan.Outputs = res.Outputs
	plan.Fields = manifest.EntryFields(res.Exports, m.IsModule())
	plan.Fields.Set("exports", res.Exports)
	return nil
}

func planPkger(fsys types.FS, plan *Plan) error {
	p := plan.Config.Pkger
	fields, err := pkger.Pkger(fsys, pkger.Options{
		Cwd:       plan.Package.Dir,
		Source:    p.Source,
		Inputs:    p.Inputs,
		Outdir:    plan.Config.Build.Outdir,
		NoIndex:   p.NoIndex,
		NoBrowser: p.NoBrowser,
		NoCDN:     p.NoCDN,
		OnlyESM:   p.OnlyESM,
		UMDSuffix: p.UMDSuffix,
		ESMSuffix: p.ESMSuffix,
		MinSuffix: p.MinSuffix,
		DTSExt:    p.DTSExt,
	})
	if err != nil {
		return err
	}

	plan.Exports = fields.Exports
	plan.Outputs = fields.Outputs
	plan.Fields = fields.Object()
	return nil
}
