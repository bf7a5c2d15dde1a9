// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code lookups used by the build pipeline

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "configuration_error",
			code:    errors.ErrConfigValid,
			message: "outdir must not end with a path separator",
			wantStr: "[CONFIG_INVALID] outdir must not end with a path separator",
		},
		{
			name:    "unsupported_shape",
			code:    errors.ErrUnsupportedShape,
			message: "nested conditional objects are not supported",
			wantStr: "[UNSUPPORTED_SHAPE] nested conditional objects are not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details, "details should be initialized")
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnsupportedFeature, "pattern %q uses the reserved %s prefix", "regexp:.*", "regexp:")
	assert.Equal(t, `pattern "regexp:.*" uses the reserved regexp: prefix`, err.Message)
	assert.Equal(t, errors.ErrUnsupportedFeature, err.Code)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("unexpected end of JSON input")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrManifestParse, "cannot parse package.json")

		require.NotNil(t, err)
		assert.Equal(t, errors.ErrManifestParse, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[MANIFEST_PARSE] cannot parse package.json: unexpected end of JSON input", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrUnsupportedShape, "array leaf").
		WithDetail("key", "./foo").
		WithDetail("condition", "import")

	assert.Equal(t, "./foo", err.Details["key"])
	assert.Equal(t, "import", err.Details["condition"])
}

func TestWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"package": "@scope/pkg",
		"outdir":  "dist/",
		"targets": 4,
	}

	err := errors.New(errors.ErrConfigValid, "invalid outdir").WithDetails(details)

	for k, v := range details {
		assert.Equal(t, v, err.Details[k], k)
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrUnsupportedShape, "nested conditional")
	err2 := errors.New(errors.ErrUnsupportedShape, "array leaf")
	err3 := errors.New(errors.ErrConfigValid, "bad outdir")

	t.Run("same_code_is_equal", func(t *testing.T) {
		assert.True(t, err1.Is(err2))
	})

	t.Run("different_code_not_equal", func(t *testing.T) {
		assert.False(t, err1.Is(err3))
	})

	t.Run("works_with_errors_Is_through_fmt_wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("package a: %w", err1)
		assert.True(t, stderrors.Is(wrapped, err2))
	})
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrPackageNotFound, "no package named foo"),
			code:     errors.ErrPackageNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrPackageNotFound, "no package named foo"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      errors.Wrap(stderrors.New("permission denied"), errors.ErrFileAccess, "cannot read src"),
			code:     errors.ErrFileAccess,
			expected: true,
		},
		{
			name:     "non_jiek_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errors.ErrorCode
	}{
		{
			name:     "jiek_error",
			err:      errors.New(errors.ErrBundleFailed, "esbuild failed"),
			expected: errors.ErrBundleFailed,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			expected: errors.ErrUnknown,
		},
		{
			name:     "nil_error",
			err:      nil,
			expected: errors.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.GetErrorCode(tt.err))
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := errors.New(errors.ErrManifestNotFound, "missing").WithDetail("path", "packages/a/package.json")
	assert.Equal(t, "packages/a/package.json", errors.GetErrorDetails(err)["path"])
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fileErr := errors.Wrap(rootCause, errors.ErrFileAccess, "cannot read package.json")
	manifestErr := errors.Wrap(fileErr, errors.ErrManifestParse, "failed to load manifest")

	t.Run("top_level_has_correct_code", func(t *testing.T) {
		assert.True(t, errors.IsErrorCode(manifestErr, errors.ErrManifestParse))
	})

	t.Run("can_find_middle_error", func(t *testing.T) {
		var jiekErr *errors.JiekError
		require.True(t, stderrors.As(manifestErr.Unwrap(), &jiekErr))
		assert.Equal(t, errors.ErrFileAccess, jiekErr.Code)
	})

	t.Run("can_find_root_cause", func(t *testing.T) {
		assert.True(t, stderrors.Is(manifestErr, rootCause))
	})
}
