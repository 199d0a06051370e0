package engine

import (
	"context"
	"testing"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, threshold uint64) *Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.GarbageThreshold = threshold

	eng, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestSetThenGetRoundTrip(t *testing.T) {
	eng := newTestEngine(t, 1<<20)
	ctx := context.Background()

	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("1")))

	value, found, err := eng.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)
}

func TestGetAbsentKeyReturnsNotFound(t *testing.T) {
	eng := newTestEngine(t, 1<<20)
	value, found, err := eng.Get(context.Background(), []byte("missing"))
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, value)
}

func TestOverwriteIsVisibleToSubsequentGet(t *testing.T) {
	eng := newTestEngine(t, 1<<20)
	ctx := context.Background()

	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("1")))
	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("2")))

	value, found, err := eng.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), value)
}

func TestRemoveThenGetReturnsNotFound(t *testing.T) {
	eng := newTestEngine(t, 1<<20)
	ctx := context.Background()

	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("1")))
	require.NoError(t, eng.Remove(ctx, []byte("a")))

	_, found, err := eng.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestRemoveAbsentKeyIsKeyNotFoundError(t *testing.T) {
	eng := newTestEngine(t, 1<<20)
	err := eng.Remove(context.Background(), []byte("missing"))
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeKeyNotFound, errors.GetErrorCode(err))
}

func TestCompactionRunsAutomaticallyPastThreshold(t *testing.T) {
	eng := newTestEngine(t, 1)
	ctx := context.Background()

	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("1")))
	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("2")))

	require.Equal(t, uint64(0), eng.Garbage())

	value, found, err := eng.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), value)
}

func TestClonesShareWriterAndIndex(t *testing.T) {
	eng := newTestEngine(t, 1<<20)
	ctx := context.Background()

	clone := eng.Clone()
	defer clone.Close()

	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("1")))

	value, found, err := clone.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)
}

func TestCloneCloseDoesNotAffectRoot(t *testing.T) {
	eng := newTestEngine(t, 1<<20)
	ctx := context.Background()

	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("1")))

	clone := eng.Clone()
	require.NoError(t, clone.Close())

	value, found, err := eng.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)

	require.NoError(t, eng.Set(ctx, []byte("b"), []byte("2")))
}

func TestOperationsAfterCloseReturnErrEngineClosed(t *testing.T) {
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()

	eng, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	ctx := context.Background()
	require.ErrorIs(t, eng.Set(ctx, []byte("a"), []byte("1")), ErrEngineClosed)
	require.ErrorIs(t, eng.Remove(ctx, []byte("a")), ErrEngineClosed)
	_, _, err = eng.Get(ctx, []byte("a"))
	require.ErrorIs(t, err, ErrEngineClosed)
}

func TestRestartRecoversPreviouslyWrittenKeys(t *testing.T) {
	dataDir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dataDir

	eng, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.Set(ctx, []byte("a"), []byte("1")))
	require.NoError(t, eng.Set(ctx, []byte("b"), []byte("2")))
	require.NoError(t, eng.Remove(ctx, []byte("b")))
	require.NoError(t, eng.Close())

	eng2, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)
	defer eng2.Close()

	value, found, err := eng2.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)

	_, found, err = eng2.Get(ctx, []byte("b"))
	require.NoError(t, err)
	require.False(t, found)
}
