package storage

import (
	"context"
	"os"
	"testing"

	"github.com/ignitedb/ignite/internal/index"
	internallog "github.com/ignitedb/ignite/internal/log"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, threshold uint64) (*Storage, *index.Index) {
	t.Helper()

	dataDir := t.TempDir()
	idx, err := index.New(context.Background(), &index.Config{DataDir: dataDir, Logger: logger.Nop()})
	require.NoError(t, err)

	opts := options.NewDefaultOptions()
	opts.DataDir = dataDir
	opts.GarbageThreshold = threshold

	store, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop(), Index: idx})
	require.NoError(t, err)
	return store, idx
}

func TestSetWritesAndUpdatesIndex(t *testing.T) {
	store, idx := newTestStorage(t, 1<<20)

	crossed, err := store.Set([]byte("a"), []byte("1"))
	require.NoError(t, err)
	require.False(t, crossed)

	loc, ok := idx.Get("a")
	require.True(t, ok)
	require.Equal(t, uint64(0), loc.Generation)
}

func TestSetOverwriteAccumulatesGarbage(t *testing.T) {
	store, _ := newTestStorage(t, 1<<20)

	_, err := store.Set([]byte("a"), []byte("1"))
	require.NoError(t, err)
	require.Equal(t, uint64(0), store.Garbage())

	_, err = store.Set([]byte("a"), []byte("2"))
	require.NoError(t, err)
	require.Greater(t, store.Garbage(), uint64(0))
}

func TestRemoveAbsentKeyReturnsKeyNotFound(t *testing.T) {
	store, _ := newTestStorage(t, 1<<20)

	_, err := store.Remove([]byte("missing"))
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeKeyNotFound, errors.GetErrorCode(err))
}

func TestRemoveDeletesLiveKey(t *testing.T) {
	store, idx := newTestStorage(t, 1<<20)

	_, err := store.Set([]byte("a"), []byte("1"))
	require.NoError(t, err)

	_, err = store.Remove([]byte("a"))
	require.NoError(t, err)

	_, ok := idx.Get("a")
	require.False(t, ok)
}

func TestSetReportsThresholdCrossed(t *testing.T) {
	store, _ := newTestStorage(t, 1)

	_, err := store.Set([]byte("a"), []byte("1"))
	require.NoError(t, err)

	crossed, err := store.Set([]byte("a"), []byte("2"))
	require.NoError(t, err)
	require.True(t, crossed)
}

func TestAdoptGenerationResetsState(t *testing.T) {
	store, _ := newTestStorage(t, 1)

	_, err := store.Set([]byte("a"), []byte("1"))
	require.NoError(t, err)
	_, err = store.Set([]byte("a"), []byte("2"))
	require.NoError(t, err)
	require.Greater(t, store.Garbage(), uint64(0))

	require.NoError(t, store.AdoptGeneration(5))
	require.Equal(t, uint64(5), store.Generation())
	require.Equal(t, uint64(0), store.Garbage())

	crossed, err := store.Set([]byte("b"), []byte("3"))
	require.NoError(t, err)
	require.False(t, crossed)
}

func TestNewResumesFromExistingSegments(t *testing.T) {
	dataDir := t.TempDir()
	idx, err := index.New(context.Background(), &index.Config{DataDir: dataDir, Logger: logger.Nop()})
	require.NoError(t, err)

	opts := options.NewDefaultOptions()
	opts.DataDir = dataDir

	segmentDir := dataDir + "/" + opts.SegmentOptions.Directory
	store, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop(), Index: idx})
	require.NoError(t, err)
	_, err = store.Set([]byte("a"), []byte("1"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	idx2, err := index.New(context.Background(), &index.Config{DataDir: segmentDir, Logger: logger.Nop()})
	require.NoError(t, err)
	store2, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop(), Index: idx2})
	require.NoError(t, err)
	require.Equal(t, uint64(0), store2.Generation())

	_, err = store2.Set([]byte("b"), []byte("2"))
	require.NoError(t, err)
	require.NoError(t, store2.Close())
}

func TestNewTrimsPartialTrailingRecord(t *testing.T) {
	dataDir := t.TempDir()
	idx, err := index.New(context.Background(), &index.Config{DataDir: dataDir, Logger: logger.Nop()})
	require.NoError(t, err)

	opts := options.NewDefaultOptions()
	opts.DataDir = dataDir
	segmentDir := dataDir + "/" + opts.SegmentOptions.Directory

	store, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop(), Index: idx})
	require.NoError(t, err)
	_, err = store.Set([]byte("a"), []byte("1"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	f, err := internallog.OpenForAppend(segmentDir, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte{byte(internallog.KindSet), 0, 0, 0, 9, 'p', 'a', 'r'})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	info, err := os.Stat(segmentDir + "/gen-0.log")
	require.NoError(t, err)
	sizeBeforeReopen := info.Size()

	idx2, err := index.New(context.Background(), &index.Config{DataDir: segmentDir, Logger: logger.Nop()})
	require.NoError(t, err)
	store2, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop(), Index: idx2})
	require.NoError(t, err)

	info, err = os.Stat(segmentDir + "/gen-0.log")
	require.NoError(t, err)
	require.Less(t, info.Size(), sizeBeforeReopen)

	require.NoError(t, store2.Close())
}
