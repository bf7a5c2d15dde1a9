package jiek

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort       = "Build and publish workspace packages"
	MsgBuildShort      = "Bundle packages"
	MsgWatchShort      = "Rebuild packages on change"
	MsgExportsShort    = "Print the synthesized export maps"
	MsgPkgerShort      = "Print the fields derived from source files"
	MsgGenConfigShort  = "Generate a jiek.toml template"
	MsgCompletionShort = "Generate shell completion script"
	MsgVersionShort    = "Print version information"

	MsgWatching      = "Watching for changes..."
	MsgConfigWritten = "Wrote %s\n"
	MsgVersionFormat = "jiek version %s\n  commit: %s\n  built:  %s\n"

	MsgErrNoCommand = "no command specified"
	MsgErrWatch     = "failed to start watcher: %w"
	MsgErrConfigDup = "%s already exists"

	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagRoot        = "Workspace root (default is the current directory)"
	MsgFlagConfig      = "Configuration file (default is <root>/jiek.toml)"
	MsgFlagNoColor     = "Disable colored output"
	MsgFlagOutdir      = "Output directory, relative to each package"
	MsgFlagMinify      = "Minify every output"
	MsgFlagSourcemap   = "Emit linked source maps"
	MsgFlagTarget      = "esbuild target (es2015 ... es2022, esnext)"
	MsgFlagConcurrency = "Packages built at the same time (0 uses the number of CPUs)"
	MsgFlagWrite       = "Write the synthesized fields to publishConfig"
	MsgFlagDryRun      = "Plan the build without bundling or writing files"
	MsgFlagWithSource  = "Add the source path to every export record"
	MsgFlagEntry       = "Entry point to resolve instead of package manifests (repeatable)"
	MsgFlagFields      = "Print main, module and types along with exports"
	MsgFlagGenWrite    = "Write the template to <root>/jiek.toml"
	MsgFlagEffective   = "Print the effective configuration instead of the template"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/exports-long.txt
	msgExportsLongRaw string
	MsgExportsLong    = strings.TrimSpace(msgExportsLongRaw)

	//go:embed msgs/exports-example.txt
	msgExportsExampleRaw string
	MsgExportsExample    = strings.TrimRight(msgExportsExampleRaw, "\n")

	//go:embed msgs/pkger-long.txt
	msgPkgerLongRaw string
	MsgPkgerLong    = strings.TrimSpace(msgPkgerLongRaw)

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
