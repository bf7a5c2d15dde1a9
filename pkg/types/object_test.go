// Test Type: Unit Test
// Description: Tests for the ordered JSON object used by export maps and manifests

package types_test

import (
	"encoding/json"
	"testing"

	"github.com/arthur-debert/jiek/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_PreservesInsertionOrder(t *testing.T) {
	obj := types.NewObject(
		types.Pair{Key: "./z", Value: "dist/z.js"},
		types.Pair{Key: ".", Value: "dist/index.js"},
		types.Pair{Key: "./a", Value: "dist/a.js"},
	)

	assert.Equal(t, []string{"./z", ".", "./a"}, obj.Keys())

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"./z":"dist/z.js",".":"dist/index.js","./a":"dist/a.js"}`, string(out))
}

func TestObject_SetKeepsPositionOfExistingKey(t *testing.T) {
	obj := types.NewObject(
		types.Pair{Key: "import", Value: "a"},
		types.Pair{Key: "default", Value: "b"},
	)
	obj.Set("import", "c")

	assert.Equal(t, []string{"import", "default"}, obj.Keys())
	v, ok := obj.GetString("import")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestObject_Delete(t *testing.T) {
	obj := types.NewObject(
		types.Pair{Key: "a", Value: "1"},
		types.Pair{Key: "b", Value: "2"},
		types.Pair{Key: "c", Value: "3"},
	)
	keys := obj.Keys()

	obj.Delete("b")
	obj.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	assert.False(t, obj.Has("b"))
	assert.Equal(t, []string{"a", "b", "c"}, keys, "Keys must return a copy")
}

func TestObject_CloneIsDeep(t *testing.T) {
	inner := types.NewObject(types.Pair{Key: "import", Value: "src/a.ts"})
	obj := types.NewObject(
		types.Pair{Key: "./a", Value: inner},
		types.Pair{Key: "./list", Value: []any{"x"}},
	)

	clone := obj.Clone()
	inner.Set("require", "src/a.cts")
	obj.Set("./b", "src/b.ts")

	clonedInner, ok := clone.GetObject("./a")
	require.True(t, ok)
	assert.Equal(t, []string{"import"}, clonedInner.Keys())
	assert.False(t, clone.Has("./b"))
}

func TestParseObject_RoundTripsOrder(t *testing.T) {
	src := `{"name":"pkg","exports":{"./b":"./src/b.ts",".":{"require":"./src/index.cts","import":"./src/index.ts"}},"version":"1.0.0","private":true,"files":["dist"]}`

	obj, err := types.ParseObject([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "exports", "version", "private", "files"}, obj.Keys())

	exports, ok := obj.GetObject("exports")
	require.True(t, ok)
	assert.Equal(t, []string{"./b", "."}, exports.Keys())

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestParseObject_DoesNotEscapeHTML(t *testing.T) {
	obj, err := types.ParseObject([]byte(`{"engines":{"node":">=18 <22"}}`))
	require.NoError(t, err)

	out, err := types.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"engines":{"node":">=18 <22"}}`, string(out))
}

func TestMarshalIndent(t *testing.T) {
	obj := types.NewObject(
		types.Pair{Key: "name", Value: "pkg"},
		types.Pair{Key: "typesVersions", Value: types.NewObject(types.Pair{Key: "<5.0", Value: []any{"*"}})},
	)

	out, err := types.MarshalIndent(obj, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"pkg\",\n  \"typesVersions\": {\n    \"<5.0\": [\n      \"*\"\n    ]\n  }\n}", string(out))
}

func TestParseObject_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "array_root", input: `["a"]`},
		{name: "trailing_tokens", input: `{"a":1} {"b":2}`},
		{name: "truncated", input: `{"a":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := types.ParseObject([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseValue(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		v, err := types.ParseValue([]byte(`"./src/index.ts"`))
		require.NoError(t, err)
		assert.Equal(t, "./src/index.ts", v)
	})

	t.Run("array_of_strings", func(t *testing.T) {
		v, err := types.ParseValue([]byte(`["src/index.ts","src/foo.ts"]`))
		require.NoError(t, err)
		assert.Equal(t, []any{"src/index.ts", "src/foo.ts"}, v)
	})

	t.Run("object", func(t *testing.T) {
		v, err := types.ParseValue([]byte(`{"./foo":"src/foo.ts",".":"src/index.ts"}`))
		require.NoError(t, err)
		obj, ok := v.(*types.Object)
		require.True(t, ok)
		assert.Equal(t, []string{"./foo", "."}, obj.Keys())
	})

	t.Run("numbers_stay_numbers", func(t *testing.T) {
		v, err := types.ParseValue([]byte(`{"n":10}`))
		require.NoError(t, err)
		obj := v.(*types.Object)
		n, _ := obj.Get("n")
		assert.Equal(t, json.Number("10"), n)
	})
}
