// Package engine provides the core database engine implementation for the Ignite storage system.
//
// The engine serves as the central coordinator and entry point for all database operations.
// It orchestrates the interaction between four main subsystems:
//   - Index: Manages in-memory data structures for fast key lookups
//   - Storage: Handles the append-only write path, including segment rotation
//   - Reader: A per-clone cache of read-only segment handles backing Get
//   - Compaction: Reclaims space held by superseded writes and tombstones
//
// The engine implements a thread-safe interface with proper lifecycle management,
// ensuring resources are properly initialized and cleaned up. It uses atomic operations
// for state management to provide consistent behavior across concurrent operations.
//
// Engine is the facade spec.md's concurrency model calls "clonable": Clone
// returns a new Engine that shares the writer, the index, and the compaction
// state with its parent, but gets its own reader.Set. A caller that wants
// read parallelism across goroutines clones once per goroutine rather than
// sharing a single Engine's reader cache.
package engine

import (
	"context"
	stdErrors "errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/compaction"
	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/reader"
	"github.com/ignitedb/ignite/internal/storage"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")
)

// Engine represents the main database engine that coordinates all subsystems.
// It acts as the primary interface for database operations and manages the lifecycle
// of all internal components. The engine is designed to be thread-safe and supports
// concurrent operations while maintaining data consistency.
type Engine struct {
	options *options.Options   // options contains all configuration parameters for the engine and its subsystems.
	log     *zap.SugaredLogger // log provides structured logging capabilities throughout the engine.

	// closed, writerMu and lastMergeGen are shared by every clone of this
	// Engine: they gate and serialize the one underlying writer+index pair,
	// regardless of how many facade clones exist.
	closed       *atomic.Bool
	writerMu     *sync.Mutex
	lastMergeGen *atomic.Uint64

	index      *index.Index           // index manages the in-memory data structures for fast data access.
	storage    *storage.Storage       // storage handles all persistent data operations.
	compaction *compaction.Compaction // compaction merges live records and retires old segments, run inline by Set/Remove.

	// reader is NOT shared across clones — each clone gets its own handle
	// cache, per the reader-set-per-clone decision this module makes for
	// Go's lack of thread-local storage.
	reader *reader.Set

	// isClone distinguishes a cloned facade from the root Engine a caller
	// got from New. Close on a clone only releases that clone's reader
	// handles; the shared writer, index and closed flag are only ever torn
	// down by closing the root.
	isClone bool
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New creates and initializes a new Engine instance with the provided configuration.
// This constructor follows the dependency injection pattern, making the engine
// testable and allowing for different configurations in different environments.
//
// Returns:
//   - *Engine: A fully initialized engine ready for use
//   - error: Any error encountered during initialization, typically from storage setup
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Engine configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	segmentDir := filepath.Join(config.Options.DataDir, config.Options.SegmentOptions.Directory)

	// Recover the index (and the garbage byte count it implies) from
	// whatever segments already exist on disk before anything else is
	// initialized, since storage bootstrap depends on it.
	idx, garbage, err := index.Recover(ctx, &index.Config{DataDir: segmentDir, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, &storage.Config{
		Logger:         config.Logger,
		Options:        config.Options,
		Index:          idx,
		InitialGarbage: garbage,
	})
	if err != nil {
		return nil, err
	}

	compactor := compaction.New(&compaction.Config{Logger: config.Logger})

	var closed atomic.Bool
	var lastMergeGen atomic.Uint64

	return &Engine{
		options:      config.Options,
		log:          config.Logger,
		closed:       &closed,
		writerMu:     &sync.Mutex{},
		lastMergeGen: &lastMergeGen,
		index:        idx,
		storage:      store,
		compaction:   compactor,
		reader:       reader.NewSet(segmentDir),
	}, nil
}

// Clone returns a new Engine sharing this one's writer, index and
// compaction state, with its own independent reader handle cache.
func (e *Engine) Clone() *Engine {
	return &Engine{
		options:      e.options,
		log:          e.log,
		closed:       e.closed,
		writerMu:     e.writerMu,
		lastMergeGen: e.lastMergeGen,
		index:        e.index,
		storage:      e.storage,
		compaction:   e.compaction,
		reader:       reader.NewSet(e.storage.SegmentDir()),
		isClone:      true,
	}
}

// Set writes key/value durably and updates the index. If cumulative garbage
// has crossed the configured threshold as a result, it compacts before
// returning.
func (e *Engine) Set(ctx context.Context, key, value []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.writerMu.Lock()
	defer e.writerMu.Unlock()

	crossed, err := e.storage.Set(key, value)
	if err != nil {
		return err
	}
	if crossed {
		return e.compact(ctx)
	}
	return nil
}

// Remove deletes key, returning a KeyNotFound error if it has no live entry.
// If cumulative garbage has crossed the configured threshold as a result, it
// compacts before returning.
func (e *Engine) Remove(ctx context.Context, key []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.writerMu.Lock()
	defer e.writerMu.Unlock()

	crossed, err := e.storage.Remove(key)
	if err != nil {
		return err
	}
	if crossed {
		return e.compact(ctx)
	}
	return nil
}

// Get resolves key's current value through this clone's reader set. It
// never takes the writer lock: readers proceed concurrently with any single
// in-flight writer, observing the index only through its own RWMutex.
func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if e.closed.Load() {
		return nil, false, ErrEngineClosed
	}
	return e.reader.Get(e.index, e.lastMergeGen, string(key))
}

// Generation reports the writer's current active segment generation.
func (e *Engine) Generation() uint64 {
	return e.storage.Generation()
}

// Garbage reports the writer's cumulative dead-byte count since the last
// compaction.
func (e *Engine) Garbage() uint64 {
	return e.storage.Garbage()
}

// compact runs one merge pass. Callers must already hold writerMu.
func (e *Engine) compact(ctx context.Context) error {
	e.log.Infow("Garbage threshold crossed, starting compaction", "garbage", e.storage.Garbage())
	return e.compaction.Compact(ctx, e.storage.SegmentDir(), e.index, e.storage, e.lastMergeGen)
}

// Close releases this Engine's resources. On a clone, that means only the
// clone's own reader handle cache — the shared writer and index outlive it,
// since other clones (or the root) may still be using them. On the root
// Engine returned by New, Close additionally tears down storage and the
// index, gated by the shared closed flag so it only happens once regardless
// of how many clones exist.
func (e *Engine) Close() error {
	if e.isClone {
		return e.reader.Close()
	}

	// Use atomic compare-and-swap to transition from open (false) to closed (true).
	// This operation is atomic and thread-safe, ensuring only one goroutine
	// can successfully close the engine. The operation returns true if the
	// swap was successful (engine was open) or false if it failed (already closed).
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	if err := e.reader.Close(); err != nil {
		e.log.Warnw("Failed to close reader handles cleanly", "error", err)
	}

	// Perform the actual shutdown by closing the storage subsystem, then the index.
	if err := e.storage.Close(); err != nil {
		return err
	}
	return e.index.Close()
}
