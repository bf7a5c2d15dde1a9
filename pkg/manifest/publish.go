package manifest

import (
	"path"

	"github.com/arthur-debert/jiek/pkg/types"
)

// PublishConfigField is where synthesized fields are written. Package
// managers apply publishConfig over the manifest when packing, so the
// development manifest keeps pointing at sources.
const PublishConfigField = "publishConfig"

// EntryFields derives main, module and types from the "." entry of an
// exports tree. Fields that cannot be derived are left out.
func EntryFields(exports *types.Object, isModule bool) *types.Object {
	fields := types.NewObject()
	dot, ok := exports.Get(".")
	if !ok {
		return fields
	}

	switch v := dot.(type) {
	case string:
		fields.Set("main", v)
		if path.Ext(v) == ".mjs" || (isModule && path.Ext(v) == ".js") {
			fields.Set("module", v)
		}
	case *types.Object:
		def := leafPath(v, "default")
		if main := firstNonEmpty(leafPath(v, "require"), cjsOnly(def, isModule)); main != "" {
			fields.Set("main", main)
		} else if def != "" {
			fields.Set("main", def)
		}
		if module := firstNonEmpty(leafPath(v, "import"), esmOnly(def, isModule)); module != "" {
			fields.Set("module", module)
		}
		if typesPath := leafPath(v, "types"); typesPath != "" {
			fields.Set("types", typesPath)
		}
	}
	return fields
}

// PublishManifest returns a copy of the manifest document whose
// publishConfig carries exports and the given fields. Existing
// publishConfig entries are kept unless overwritten.
func (m *Manifest) PublishManifest(exports *types.Object, fields *types.Object) *types.Object {
	doc := m.Doc.Clone()

	publish, ok := doc.GetObject(PublishConfigField)
	if !ok {
		publish = types.NewObject()
	}
	fields.Range(func(key string, value any) bool {
		if key == "exports" {
			return true
		}
		publish.Set(key, types.CloneValue(value))
		return true
	})
	publish.Set("exports", exports.Clone())

	doc.Set(PublishConfigField, publish)
	return doc
}

// leafPath returns the output path a condition resolves to: the string
// itself, the default of a record, or the default of a nested record.
func leafPath(obj *types.Object, condition string) string {
	v, ok := obj.Get(condition)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case *types.Object:
		if s := leafPath(t, "default"); s != "" {
			return s
		}
		return firstNonEmpty(leafPath(t, "require"), leafPath(t, "import"))
	}
	return ""
}

func cjsOnly(p string, isModule bool) string {
	switch path.Ext(p) {
	case ".cjs":
		return p
	case ".js":
		if !isModule {
			return p
		}
	}
	return ""
}

func esmOnly(p string, isModule bool) string {
	switch path.Ext(p) {
	case ".mjs":
		return p
	case ".js":
		if isModule {
			return p
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
