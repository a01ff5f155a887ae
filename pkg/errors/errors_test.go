package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationError(t *testing.T) {
	err := WrapGenerationError("base", "protos/secret.proto", "tool: boom",
		fmt.Errorf("%w: exit status 1", ErrToolFailed))

	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.True(t, errors.Is(err, ErrToolFailed))
	assert.False(t, IsAmbiguousOutputError(err))
	assert.Contains(t, err.Error(), "protos/secret.proto")
	assert.Contains(t, err.Error(), "tool: boom")

	source, ok := GetSource(err)
	require.True(t, ok)
	assert.Equal(t, "protos/secret.proto", source)

	category, ok := GetCategory(err)
	require.True(t, ok)
	assert.Equal(t, "base", category)
}

func TestWrapGenerationError_NilErr(t *testing.T) {
	assert.NoError(t, WrapGenerationError("base", "x.proto", "", nil))
}

func TestAmbiguousOutputError(t *testing.T) {
	tests := []struct {
		name     string
		matches  int
		sentinel error
	}{
		{"zero outputs", 0, ErrNoOutput},
		{"two outputs", 2, ErrExtraOutput},
		{"many outputs", 5, ErrExtraOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAmbiguousOutputError("dss", "protos/dss/share.proto", tt.matches)

			assert.True(t, IsAmbiguousOutputError(err))
			assert.False(t, IsGenerationError(err))
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Contains(t, err.Error(), "protos/dss/share.proto")
		})
	}
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(WrapGenerationError("base", "a.proto", "", ErrToolFailed)))
	assert.True(t, IsFatal(NewAmbiguousOutputError("base", "a.proto", 0)))
	assert.False(t, IsFatal(WrapFilesystemError("a.proto", "stat", errors.New("gone"))))
	assert.False(t, IsFatal(NewPathError("a.txt")))
}

func TestFilesystemError(t *testing.T) {
	err := WrapFilesystemError("/tmp/x", "rename", errors.New("permission denied"))

	assert.True(t, IsFilesystemError(err))
	assert.True(t, errors.Is(err, ErrFilesystemFailed))
	assert.Contains(t, err.Error(), "rename")

	assert.NoError(t, WrapFilesystemError("/tmp/x", "rename", nil))
}

func TestPathError(t *testing.T) {
	err := NewPathError("protos/readme.txt")

	assert.True(t, IsPathError(err))
	assert.True(t, errors.Is(err, ErrBadSourcePath))
	assert.Contains(t, err.Error(), "protos/readme.txt")
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("workers", "must be at least 1")

	assert.True(t, IsConfigError(err))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "workers")
}

func TestIsTimeoutError(t *testing.T) {
	timeout := WrapGenerationError("base", "a.proto", "",
		fmt.Errorf("%w after 2m", ErrToolTimeout))
	assert.True(t, IsTimeoutError(timeout))

	plain := WrapGenerationError("base", "a.proto", "", ErrToolFailed)
	assert.False(t, IsTimeoutError(plain))
}

func TestJoinErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	assert.NoError(t, JoinErrors())
	assert.NoError(t, JoinErrors(nil, nil))
	assert.Equal(t, first, JoinErrors(nil, first))

	joined := JoinErrors(first, nil, second)
	require.Error(t, joined)
	assert.True(t, errors.Is(joined, first))
	assert.True(t, errors.Is(joined, second))
}
