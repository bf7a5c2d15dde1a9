package entrypoints

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/types"
)

// reservedPatternPrefix marks patterns that would be regular expressions
const reservedPatternPrefix = "regexp:"

var inputKeyRe = regexp.MustCompile(`^(.+?)(/index)?\.(?:[mc]?tsx?|[mc]?jsx?)$`)

// InputOptions configures ResolveInputs
type InputOptions struct {
	// Cwd is the directory patterns are matched in
	Cwd string
	// NoIndex disables mapping the first match to "."
	NoIndex bool
}

// ResolveInputs expands glob patterns under opts.Cwd into a subpath ->
// relative path mapping. Unless NoIndex is set the first match becomes ".";
// every other match is keyed by its path without extension and without a
// trailing "/index". Later matches overwrite earlier ones with the same key.
func ResolveInputs(fsys types.FS, patterns []string, opts InputOptions) (*types.Object, error) {
	logger := logging.GetLogger("entrypoints.inputs")

	inputs := types.NewObject()
	indexPath := ""
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, reservedPatternPrefix) {
			return nil, errors.Newf(errors.ErrUnsupportedFeature,
				"input pattern %q uses the reserved %q prefix", pattern, reservedPatternPrefix).
				WithDetail("pattern", pattern)
		}

		matches, err := fsys.Glob(opts.Cwd, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot expand input pattern %q", pattern).
				WithDetail("cwd", opts.Cwd)
		}
		sort.Strings(matches)
		logger.Trace().Str("pattern", pattern).Int("matches", len(matches)).Msg("Expanded input pattern")

		for _, match := range matches {
			if strings.HasPrefix(match, reservedPatternPrefix) {
				return nil, errors.Newf(errors.ErrUnsupportedFeature,
					"input %q uses the reserved %q prefix", match, reservedPatternPrefix).
					WithDetail("pattern", pattern)
			}
			if !opts.NoIndex && inputs.Len() == 0 && indexPath == "" {
				indexPath = match
				inputs.Set(".", match)
				continue
			}
			// the index file keeps its "." entry and never gets a second key
			// such as "./index" from a later pattern
			if match == indexPath {
				continue
			}
			inputs.Set(InputKey(match), match)
		}
	}

	logger.Debug().Str("cwd", opts.Cwd).Int("inputs", inputs.Len()).Msg("Resolved inputs")
	return inputs, nil
}

// InputKey derives the export subpath for a matched file:
// "utils/index.ts" -> "./utils", "named.ts" -> "./named".
func InputKey(match string) string {
	m := inputKeyRe.FindStringSubmatch(toSlash(match))
	if m == nil {
		return "./" + toSlash(match)
	}
	return "./" + m[1]
}
