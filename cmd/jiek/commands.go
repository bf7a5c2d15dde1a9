package jiek

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/jiek/internal/version"
	"github.com/arthur-debert/jiek/pkg/build"
	"github.com/arthur-debert/jiek/pkg/bundler"
	"github.com/arthur-debert/jiek/pkg/config"
	"github.com/arthur-debert/jiek/pkg/entrypoints"
	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/filesystem"
	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/arthur-debert/jiek/pkg/watch"
	"github.com/arthur-debert/jiek/pkg/workspace"
)

// buildFlags are the flags overriding the [build] and [entries] sections
type buildFlags struct {
	outdir      string
	minify      bool
	sourcemap   bool
	target      string
	concurrency int
	write       bool
	withSource  bool
	dryRun      bool
}

func addBuildFlags(cmd *cobra.Command, f *buildFlags) {
	cmd.Flags().StringVarP(&f.outdir, "outdir", "o", "", MsgFlagOutdir)
	cmd.Flags().BoolVarP(&f.minify, "minify", "m", false, MsgFlagMinify)
	cmd.Flags().BoolVar(&f.sourcemap, "sourcemap", false, MsgFlagSourcemap)
	cmd.Flags().StringVarP(&f.target, "target", "t", "", MsgFlagTarget)
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, MsgFlagConcurrency)
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&f.withSource, "with-source", false, MsgFlagWithSource)
}

// overrides returns the configuration keys of the flags set on cmd
func (f *buildFlags) overrides(cmd *cobra.Command) map[string]interface{} {
	o := make(map[string]interface{})
	set := func(flag, key string, value interface{}) {
		if cmd.Flags().Changed(flag) {
			o[key] = value
		}
	}
	set("outdir", "build.outdir", f.outdir)
	set("minify", "build.minify", f.minify)
	set("sourcemap", "build.sourcemap", f.sourcemap)
	set("target", "build.target", f.target)
	set("concurrency", "build.concurrency", f.concurrency)
	set("write", "build.write_manifest", f.write)
	set("with-source", "entries.with_source", f.withSource)
	if f.dryRun {
		o["build.write_manifest"] = false
	}
	return o
}

func newBuildCmd(g *globalOptions) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:               "build [<package>...]",
		Short:             MsgBuildShort,
		Long:              MsgBuildLong,
		Example:           MsgBuildExample,
		GroupID:           "core",
		ValidArgsFunction: completePackages(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(f.overrides(cmd))
			if err != nil {
				return err
			}
			root, err := g.rootDir()
			if err != nil {
				return err
			}

			opts := build.Options{Root: root, Packages: args, Config: cfg}
			if f.dryRun {
				opts.Bundler = bundler.NewDryRun()
			}

			r, err := g.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			result, err := build.Run(cmd.Context(), opts)
			if result != nil {
				if rerr := r.RenderBuild(result); rerr != nil {
					log.Error().Err(rerr).Msg("Failed to render build result")
				}
			}
			return err
		},
	}
	addBuildFlags(cmd, f)
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:               "watch [<package>...]",
		Short:             MsgWatchShort,
		Long:              MsgWatchLong,
		GroupID:           "core",
		ValidArgsFunction: completePackages(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(f.overrides(cmd))
			if err != nil {
				return err
			}
			root, err := g.rootDir()
			if err != nil {
				return err
			}
			r, err := g.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, root, args, cfg, func(result *build.Result, _ error) {
				if result == nil {
					return
				}
				if err := r.RenderBuild(result); err != nil {
					log.Error().Err(err).Msg("Failed to render build result")
				}
				_ = r.RenderMessage("Muted", MsgWatching)
			})
		},
	}
	addBuildFlags(cmd, f)
	return cmd
}

// runWatch builds once, then rebuilds on change until ctx is done. Package
// failures are reported through onResult and do not stop watching.
func runWatch(ctx context.Context, root string, packages []string, cfg *config.Config, onResult func(*build.Result, error)) error {
	rebuilder, err := watch.NewRebuilder(build.Options{
		Root:     root,
		Packages: packages,
		Config:   cfg,
	})
	if err != nil {
		return err
	}

	result, err := rebuilder.Build(ctx)
	onResult(result, err)
	if err != nil && !errors.IsErrorCode(err, errors.ErrBuildFailed) {
		return err
	}
	rebuilder.OnResult = onResult

	w, err := watch.New(watch.Config{
		Root:     root,
		Ignore:   cfg.Watch.Ignore,
		Debounce: cfg.Watch.Debounce,
		OnChange: rebuilder.OnChange,
	})
	if err != nil {
		return fmt.Errorf(MsgErrWatch, err)
	}
	return w.Run(ctx)
}

func newExportsCmd(g *globalOptions) *cobra.Command {
	var (
		entries []string
		fields  bool
		f       = &buildFlags{}
	)
	cmd := &cobra.Command{
		Use:               "exports [<package>...]",
		Short:             MsgExportsShort,
		Long:              MsgExportsLong,
		Example:           MsgExportsExample,
		GroupID:           "core",
		ValidArgsFunction: completePackages(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(f.overrides(cmd))
			if err != nil {
				return err
			}
			r, err := g.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if len(entries) > 0 {
				exports, err := adhocExports(g, cfg, entries)
				if err != nil {
					return err
				}
				return r.RenderJSON(exports)
			}

			doc, err := planDocument(cmd.Context(), g, args, cfg, func(p *build.Plan) *types.Object {
				if fields {
					return p.Fields
				}
				return p.Exports
			})
			if doc != nil {
				if rerr := r.RenderJSON(doc); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&entries, "entry", "e", nil, MsgFlagEntry)
	cmd.Flags().BoolVarP(&fields, "fields", "f", false, MsgFlagFields)
	cmd.Flags().StringVarP(&f.outdir, "outdir", "o", "", MsgFlagOutdir)
	cmd.Flags().BoolVar(&f.withSource, "with-source", false, MsgFlagWithSource)
	return cmd
}

// adhocExports synthesizes the exports of entry points given on the command
// line, relative to --root or the current directory
func adhocExports(g *globalOptions, cfg *config.Config, entries []string) (*types.Object, error) {
	root := g.root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid directory").WithDetail("dir", root)
	}

	var value any = entries
	if len(entries) == 1 {
		value = entries[0]
	}
	ep, err := entrypoints.ParseEntrypoints(value)
	if err != nil {
		return nil, err
	}

	pkgType := ""
	if m, err := manifest.Load(filesystem.NewOS(), root); err == nil {
		pkgType = m.Type
	}
	opts, err := build.SynthesisOptions(cfg, root, pkgType)
	if err != nil {
		return nil, err
	}
	return entrypoints.EntrypointsToExports(ep, opts)
}

// planDocument plans the selected packages and returns the object pick
// selects from each plan. Several packages are keyed by name.
func planDocument(ctx context.Context, g *globalOptions, packages []string, cfg *config.Config, pick func(*build.Plan) *types.Object) (*types.Object, error) {
	root, err := g.rootDir()
	if err != nil {
		return nil, err
	}
	result, err := build.Run(ctx, build.Options{
		Root:     root,
		Packages: packages,
		Config:   cfg,
		PlanOnly: true,
	})
	if result == nil {
		return nil, err
	}

	planned := make([]build.PackageResult, 0, len(result.Packages))
	for _, p := range result.Packages {
		if p.Err == nil && p.Plan != nil {
			planned = append(planned, p)
		}
	}
	if len(result.Packages) == 1 {
		if len(planned) == 0 {
			return nil, result.Packages[0].Err
		}
		return pick(planned[0].Plan), nil
	}

	doc := types.NewObject()
	for _, p := range planned {
		doc.Set(p.Name, pick(p.Plan))
	}
	return doc, err
}

func newPkgerCmd(g *globalOptions) *cobra.Command {
	var (
		source    string
		noIndex   bool
		noBrowser bool
		noCDN     bool
		onlyESM   bool
		outdir    string
	)
	cmd := &cobra.Command{
		Use:               "pkger [<package>...]",
		Short:             MsgPkgerShort,
		Long:              MsgPkgerLong,
		GroupID:           "core",
		ValidArgsFunction: completePackages(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{"build.mode": config.ModePkger}
			set := func(flag, key string, value interface{}) {
				if cmd.Flags().Changed(flag) {
					overrides[key] = value
				}
			}
			set("source", "pkger.source", source)
			set("no-index", "pkger.no_index", noIndex)
			set("no-browser", "pkger.no_browser", noBrowser)
			set("no-cdn", "pkger.no_cdn", noCDN)
			set("only-esm", "pkger.only_esm", onlyESM)
			set("outdir", "build.outdir", outdir)

			cfg, err := g.loadConfig(overrides)
			if err != nil {
				return err
			}
			r, err := g.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			doc, err := planDocument(cmd.Context(), g, args, cfg, func(p *build.Plan) *types.Object {
				return p.Fields
			})
			if doc != nil {
				if rerr := r.RenderJSON(doc); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "Source directory, relative to each package")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "Do not export the index module as \".\"")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Omit the browser field")
	cmd.Flags().BoolVar(&noCDN, "no-cdn", false, "Omit the unpkg and jsdelivr fields")
	cmd.Flags().BoolVar(&onlyESM, "only-esm", false, "Emit ES modules only")
	cmd.Flags().StringVarP(&outdir, "outdir", "o", "", MsgFlagOutdir)
	return cmd
}

func newGenConfigCmd(g *globalOptions) *cobra.Command {
	var (
		write     bool
		effective bool
	)
	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.GenerateConfigContent()
			if effective {
				cfg, err := g.loadConfig(nil)
				if err != nil {
					return err
				}
				if content, err = config.Render(cfg); err != nil {
					return err
				}
			}

			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}

			root, err := g.rootDir()
			if err != nil {
				return err
			}
			path := filepath.Join(root, config.RootConfigFiles[0])
			if _, err := os.Stat(path); err == nil {
				return errors.Newf(errors.ErrInvalidInput, MsgErrConfigDup, path).WithDetail("path", path)
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "failed to write configuration").
					WithDetail("path", path)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, path)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagGenWrite)
	cmd.Flags().BoolVar(&effective, "effective", false, MsgFlagEffective)
	return cmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

// completePackages completes the names of the workspace packages
func completePackages(g *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := g.loadConfig(nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		root, err := g.rootDir()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		fsys := filesystem.NewOS()
		cache, err := manifest.NewCache(fsys, cfg.Build.CacheSize)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ws, err := workspace.Discover(fsys, cache, root, cfg.Workspace.Packages)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		taken := make(map[string]bool, len(args))
		for _, a := range args {
			taken[a] = true
		}
		var names []string
		for _, p := range ws.Packages {
			if !taken[p.Name] {
				names = append(names, p.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
