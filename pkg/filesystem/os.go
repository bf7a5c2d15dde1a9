package filesystem

import (
	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/spf13/afero"
)

// NewOS creates a filesystem backed by the real disk
func NewOS() types.FS {
	return NewAferoFS(afero.NewOsFs())
}
