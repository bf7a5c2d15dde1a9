// Package commondir computes the deepest directory shared by a set of paths.
package commondir

import (
	"path/filepath"
	"strings"
)

// Commondir returns the longest directory-aligned prefix shared by every
// path, ending in "/". Relative paths are resolved against cwd first; an
// empty cwd means the process working directory. An empty input yields "".
//
// A single path yields its own directory, since the candidate prefix stops
// growing at the file name.
func Commondir(paths []string, cwd string) string {
	if len(paths) == 0 {
		return ""
	}

	resolved := make([]string, len(paths))
	for i, p := range paths {
		resolved[i] = resolve(p, cwd)
	}

	common := ""
	for _, segment := range strings.Split(resolved[0], "/") {
		candidate := common + segment + "/"
		if !allHavePrefix(resolved, candidate) {
			break
		}
		common = candidate
	}
	return common
}

func resolve(p, cwd string) string {
	if !filepath.IsAbs(p) {
		base := cwd
		if base == "" {
			base, _ = filepath.Abs(".")
		}
		p = filepath.Join(base, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	return filepath.ToSlash(abs)
}

func allHavePrefix(paths []string, prefix string) bool {
	for _, p := range paths {
		if !strings.HasPrefix(p, prefix) {
			return false
		}
	}
	return true
}
