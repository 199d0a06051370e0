package options

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultOptions(t *testing.T) {
	opts := NewDefaultOptions()
	require.Equal(t, DefaultDataDir, opts.DataDir)
	require.Equal(t, DefaultGarbageThreshold, opts.GarbageThreshold)
	require.Equal(t, DefaultEngine, opts.Engine)
	require.Equal(t, DefaultSegmentDirectory, opts.SegmentOptions.Directory)
}

func TestWithDataDirTrimsAndIgnoresBlank(t *testing.T) {
	opts := NewDefaultOptions()
	WithDataDir("  /custom/path  ")(&opts)
	require.Equal(t, "/custom/path", opts.DataDir)

	WithDataDir("   ")(&opts)
	require.Equal(t, "/custom/path", opts.DataDir, "blank value must not overwrite existing setting")
}

func TestWithGarbageThresholdIgnoresZero(t *testing.T) {
	opts := NewDefaultOptions()
	WithGarbageThreshold(1024)(&opts)
	require.Equal(t, uint64(1024), opts.GarbageThreshold)

	WithGarbageThreshold(0)(&opts)
	require.Equal(t, uint64(1024), opts.GarbageThreshold)
}

func TestWithEngineNormalizesCase(t *testing.T) {
	opts := NewDefaultOptions()
	WithEngine("  KVS  ")(&opts)
	require.Equal(t, "kvs", opts.Engine)
}

func TestWithSegmentDirOverridesDefault(t *testing.T) {
	opts := NewDefaultOptions()
	WithSegmentDir("custom-segments")(&opts)
	require.Equal(t, "custom-segments", opts.SegmentOptions.Directory)
}
