package entrypoints

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/jiek/pkg/commondir"
	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/types"
)

// ResolveOptions configures Resolve
type ResolveOptions struct {
	// Cwd is the package directory relative paths are resolved against.
	// Empty means the process working directory.
	Cwd  string
	Skip SkipOptions
}

var indexFileRe = regexp.MustCompile(`^index\.(ts|js|tsx|jsx|mts|cts|mjs|cjs)$`)

// Resolve normalizes a declaration into a canonical subpath mapping and
// returns it with the common source directory of its leaves.
//
// A Single maps to "." and its directory. A List is filtered by the value
// rules first; the first remaining entry maps to "." when it is an index
// file, the others to "./<name without extension>". A Tree is returned
// unfiltered, filtering only decides which leaves take part in directory
// inference.
func Resolve(ep Entrypoints, opts ResolveOptions) (string, *types.Object, error) {
	logger := logging.GetLogger("entrypoints.resolve")

	switch e := ep.(type) {
	case Single:
		s := string(e)
		logger.Trace().Str("entry", s).Msg("Resolved single entry point")
		return path.Dir(toSlash(s)), types.NewObject(types.Pair{Key: ".", Value: s}), nil

	case List:
		entries := make([]string, 0, len(e))
		for _, entry := range e {
			if opts.Skip.SkipsValue(entry) {
				logger.Trace().Str("entry", entry).Msg("Skipping entry point")
				continue
			}
			entries = append(entries, entry)
		}

		dir := inferDir(entries, opts.Cwd)
		mapping := types.NewObject()
		for i, entry := range entries {
			name := stripDir(entry, dir, opts.Cwd)
			if i == 0 && indexFileRe.MatchString(name) {
				mapping.Set(".", entry)
				continue
			}
			mapping.Set("./"+trimExt(name), entry)
		}
		logger.Trace().Str("dir", dir).Int("count", mapping.Len()).Msg("Resolved entry point list")
		return dir, mapping, nil

	case Tree:
		tree := e.Map
		if tree == nil {
			tree = types.NewObject()
		}
		leaves := uniqueLeaves(Filter(tree, opts.Skip))
		dir := inferDir(leaves, opts.Cwd)
		logger.Trace().Str("dir", dir).Int("leaves", len(leaves)).Msg("Resolved entry point tree")
		return dir, tree, nil

	default:
		return "", nil, errors.New(errors.ErrUnsupportedShape, "no entry points declared")
	}
}

// inferDir returns the common directory of entries, relative to cwd when
// the entries are relative and without a trailing slash.
func inferDir(entries []string, cwd string) string {
	switch len(entries) {
	case 0:
		return ""
	case 1:
		return path.Dir(toSlash(entries[0]))
	}

	common := strings.TrimSuffix(commondir.Commondir(entries, cwd), "/")
	if common == "" {
		common = "/"
	}
	if filepath.IsAbs(entries[0]) {
		return common
	}

	base := cwd
	if base == "" {
		base, _ = filepath.Abs(".")
	}
	rel, err := filepath.Rel(base, filepath.FromSlash(common))
	if err != nil {
		return common
	}
	return filepath.ToSlash(rel)
}

func uniqueLeaves(tree *types.Object) []string {
	seen := make(map[string]bool)
	var leaves []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			if !seen[t] {
				seen[t] = true
				leaves = append(leaves, t)
			}
		case *types.Object:
			t.Range(func(_ string, inner any) bool {
				walk(inner)
				return true
			})
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(tree)
	return leaves
}

// stripDir returns p relative to dir. Paths outside dir are returned
// cleaned but otherwise unchanged.
func stripDir(p, dir, cwd string) string {
	rel, ok := relativeTo(p, dir, cwd)
	if !ok {
		return path.Clean(toSlash(p))
	}
	return rel
}

// relativeTo returns p relative to dir when p lies inside it. Relative
// paths are resolved against cwd, so a dir that climbs above cwd ("..")
// still contains the leaves below cwd.
func relativeTo(p, dir, cwd string) (string, bool) {
	clean := path.Clean(toSlash(p))
	if dir == "" {
		if path.IsAbs(clean) || isOutside(clean) {
			return "", false
		}
		return clean, true
	}

	prefix := path.Clean(toSlash(dir))
	if prefix == "." {
		if !path.IsAbs(clean) && !isOutside(clean) {
			return clean, true
		}
	} else {
		withSlash := prefix
		if withSlash != "/" {
			withSlash += "/"
		}
		if strings.HasPrefix(clean, withSlash) {
			return strings.TrimPrefix(clean, withSlash), true
		}
	}

	base := cwd
	if base == "" {
		base, _ = filepath.Abs(".")
	}
	rel, err := filepath.Rel(absolute(dir, base), absolute(p, base))
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || isOutside(rel) {
		return "", false
	}
	return rel, true
}

func absolute(p, base string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

func toSlash(p string) string {
	return filepath.ToSlash(p)
}
