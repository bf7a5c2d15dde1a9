package workspace

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/manifest"
	"github.com/arthur-debert/jiek/pkg/types"
)

// FindRoot walks up from start looking for the workspace root:
//
//  1. the nearest directory declaring workspace packages (pnpm-workspace.yaml
//     or a "workspaces" field)
//  2. the nearest directory holding a package.json
//  3. start itself
//
// The boolean reports whether the fallback was used.
func FindRoot(fsys types.FS, start string) (string, bool, error) {
	logger := logging.GetLogger("workspace")

	start, err := filepath.Abs(start)
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrInvalidInput, "invalid start directory").
			WithDetail("start", start)
	}

	nearest := ""
	for dir := start; ; dir = filepath.Dir(dir) {
		patterns, err := readPatterns(fsys, dir)
		if err != nil {
			return "", false, err
		}
		if len(patterns) > 0 {
			logger.Debug().Str("root", dir).Msg("Found workspace root")
			return dir, false, nil
		}
		if nearest == "" && hasManifest(fsys, dir) {
			nearest = dir
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}

	if nearest != "" {
		logger.Debug().Str("root", nearest).Msg("Using nearest package as root")
		return nearest, false, nil
	}
	logger.Debug().Str("root", start).Msg("No package.json found, using start directory")
	return start, true, nil
}

func hasManifest(fsys types.FS, dir string) bool {
	_, err := fsys.Stat(filepath.Join(dir, manifest.FileName))
	return err == nil || !os.IsNotExist(err)
}
