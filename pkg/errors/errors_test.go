package errors

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineErrorChainingPreservesType(t *testing.T) {
	err := NewEngineError(nil, ErrorCodeIO, "boom").
		WithKey("a").
		WithOperation("Set").
		WithGeneration(3).
		WithDetail("retries", 2)

	require.Equal(t, "a", err.Key())
	require.Equal(t, "Set", err.Operation())
	require.Equal(t, uint64(3), err.Generation())
	require.Equal(t, ErrorCodeIO, err.Code())
	require.Equal(t, 2, err.Details()["retries"])
}

func TestNewKeyNotFoundErrorCarriesEngineCode(t *testing.T) {
	err := NewKeyNotFoundError("a")
	require.Equal(t, ErrorCodeKeyNotFound, err.Code())
	require.Equal(t, "key not found", err.Error())
	require.Equal(t, "a", err.Key())
}

func TestIsAndAsEngineError(t *testing.T) {
	err := NewKeyNotFoundError("a")
	require.True(t, IsEngineError(err))

	extracted, ok := AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, err, extracted)

	require.False(t, IsEngineError(stdErrors.New("plain")))
}

func TestGetErrorCodeDispatchesAcrossErrorTypes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"validation", NewRequiredFieldError("field"), ErrorCodeInvalidInput},
		{"storage", NewStorageError(nil, ErrorCodeDiskFull, "no space"), ErrorCodeDiskFull},
		{"index", NewIndexKeyNotFoundError("a"), ErrorCodeIndexKeyNotFound},
		{"engine", NewKeyNotFoundError("a"), ErrorCodeKeyNotFound},
		{"plain", stdErrors.New("oops"), ErrorCodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, GetErrorCode(tc.err))
		})
	}
}

func TestGetErrorDetailsReturnsEmptyMapForPlainErrors(t *testing.T) {
	details := GetErrorDetails(stdErrors.New("oops"))
	require.NotNil(t, details)
	require.Empty(t, details)
}

func TestGetErrorDetailsExtractsStructuredContext(t *testing.T) {
	err := NewStorageError(nil, ErrorCodeIO, "failed").WithDetail("path", "/tmp/x")
	details := GetErrorDetails(err)
	require.Equal(t, "/tmp/x", details["path"])
}

func TestValidationErrorFluentFields(t *testing.T) {
	err := NewFieldRangeError("threshold", 0, 1, 100)
	require.Equal(t, "threshold", err.Field())
	require.Equal(t, "range", err.Rule())
	require.Equal(t, 0, err.Provided())
	require.Equal(t, 1, err.Details()["minValue"])
	require.Equal(t, 100, err.Details()["maxValue"])
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := stdErrors.New("disk exploded")
	err := NewStorageError(cause, ErrorCodeIO, "failed to write")
	require.ErrorIs(t, err, cause)
}
