package entrypoints

import (
	"strings"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/types"
)

// Entrypoints is an entry point declaration. It is one of Single, List or
// Tree.
type Entrypoints interface {
	isEntrypoints()
}

// Single is one source path exposed as "."
type Single string

// List is an ordered list of source paths
type List []string

// Tree maps export subpaths to source paths or conditional objects
type Tree struct {
	Map *types.Object
}

func (Single) isEntrypoints() {}
func (List) isEntrypoints()   {}
func (Tree) isEntrypoints()   {}

// ParseEntrypoints converts a decoded JSON value into a declaration. It
// accepts a string, an array of strings or an object. An object whose keys
// are all conditions is the declaration of the "." subpath.
func ParseEntrypoints(value any) (Entrypoints, error) {
	switch v := value.(type) {
	case Entrypoints:
		return v, nil
	case string:
		return Single(v), nil
	case []string:
		return List(v), nil
	case []any:
		list := make(List, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Newf(errors.ErrUnsupportedShape,
					"entry point list item %d is %T, expected a string", i, item).
					WithDetail("index", i)
			}
			list = append(list, s)
		}
		return list, nil
	case *types.Object:
		return parseTree(v)
	case nil:
		return nil, errors.New(errors.ErrUnsupportedShape, "no entry points declared")
	default:
		return nil, errors.Newf(errors.ErrUnsupportedShape,
			"entry points must be a string, an array or an object, got %T", value)
	}
}

func parseTree(obj *types.Object) (Entrypoints, error) {
	subpaths, conditions := 0, 0
	for _, key := range obj.Keys() {
		if key == "." || strings.HasPrefix(key, "./") {
			subpaths++
			continue
		}
		if strings.HasPrefix(key, ".") {
			return nil, errors.Newf(errors.ErrUnsupportedShape,
				"invalid export subpath %q, must be \".\" or start with \"./\"", key).
				WithDetail("key", key)
		}
		conditions++
	}

	if subpaths > 0 && conditions > 0 {
		return nil, errors.New(errors.ErrUnsupportedShape,
			"exports object mixes subpath keys and condition keys")
	}
	if conditions > 0 {
		return Tree{Map: types.NewObject(types.Pair{Key: ".", Value: obj})}, nil
	}
	return Tree{Map: obj}, nil
}
