// Package jiek implements the jiek command line
package jiek

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/jiek/internal/version"
	"github.com/arthur-debert/jiek/pkg/config"
	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/filesystem"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/output"
	"github.com/arthur-debert/jiek/pkg/workspace"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	root       string
	configFile string
	noColor    bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "jiek",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Options{
				Verbosity: g.verbosity,
				NoColor:   g.noColor || !colorAllowed(os.Stderr),
			})
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&g.root, "root", "r", "", MsgFlagRoot)
	rootCmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, MsgFlagNoColor)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newBuildCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newExportsCmd(g))
	rootCmd.AddCommand(newPkgerCmd(g))
	rootCmd.AddCommand(newGenConfigCmd(g))
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// rootDir returns the absolute workspace root: --root when given, else the
// workspace containing the current directory
func (g *globalOptions) rootDir() (string, error) {
	if g.root == "" {
		root, fallback, err := workspace.FindRoot(filesystem.NewOS(), ".")
		if err != nil {
			return "", err
		}
		if fallback {
			log.Debug().Str("root", root).Msg("No package.json found, using current directory")
		}
		return root, nil
	}
	abs, err := filepath.Abs(g.root)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "invalid workspace root").
			WithDetail("root", g.root)
	}
	return abs, nil
}

// loadConfig loads the configuration of the workspace root with overrides
// applied last
func (g *globalOptions) loadConfig(overrides map[string]interface{}) (*config.Config, error) {
	root, err := g.rootDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(config.LoadOptions{
		Root:      root,
		File:      g.configFile,
		Overrides: overrides,
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// renderer creates an output renderer for w. Colors are used only on a
// terminal, and never with --no-color or NO_COLOR set.
func (g *globalOptions) renderer(w io.Writer) (*output.Renderer, error) {
	return output.NewRenderer(w, g.noColor || !colorAllowed(w))
}

func colorAllowed(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// ReportError writes err to w in the error style. Errors raised by cobra
// itself (unknown flags, bad arguments) are followed by a usage hint.
func ReportError(w io.Writer, err error) {
	r, rerr := output.NewRenderer(w, !colorAllowed(w))
	if rerr != nil {
		_, _ = io.WriteString(w, "Error: "+err.Error()+"\n")
		return
	}
	_ = r.RenderError(err)
	if errors.GetErrorCode(err) == errors.ErrUnknown {
		_ = r.RenderMessage("Muted", `Run "jiek --help" for usage.`)
	}
}
