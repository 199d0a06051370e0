// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (KeyDir/Index) with an append-only log
// structure on disk to achieve high throughput. It is designed for applications
// requiring fast read and write operations, such as caching, session management,
// and real-time data processing, aiming to provide a simple, efficient, and
// reliable solution for persistent key/value storage in Go applications.
package ignite

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ignitedb/ignite/internal/engine"
	kverrors "github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/filesys"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
)

// engineMarkerFile names the one-line file, written at the root of a data
// directory, recording which backend created it. It exists purely to refuse
// opening a directory that was previously used by a different backend; it
// is never consulted for anything else.
const engineMarkerFile = ".ignite-engine"

// supportedEngine is the only backend this module implements. The name is
// kept distinct from "sled" so that the refusal contract spec.md describes
// is honored even though sled itself is never built: requesting sled gets
// UnsupportedEngine, and opening a directory whose marker names sled gets
// MismatchedEngine.
const supportedEngine = "kvs"

// Represents an instance of the Ignite key/value data store.
// It encapsulates the core engine responsible for data handling and
// the configuration options for this specific database instance.
//
// Instance is the primary entry point for interacting with the Ignite store,
// providing methods for setting, getting, and deleting key-value pairs.
type Instance struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// Creates and initializes a new Ignite DB instance.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	// Initialize a logger for the given service.
	log := logger.New(service)

	// Initialize default options.
	defaultOpts := options.NewDefaultOptions()

	// Apply any provided functional options to override defaults.
	if len(opts) > 0 {
		for _, opt := range opts {
			opt(&defaultOpts)
		}
	}

	if defaultOpts.Engine != supportedEngine {
		return nil, kverrors.NewUnsupportedEngineError(defaultOpts.Engine)
	}

	if err := filesys.CreateDir(defaultOpts.DataDir, 0755, true); err != nil {
		return nil, kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "Failed to create data directory").
			WithPath(defaultOpts.DataDir)
	}

	if err := checkEngineMarker(defaultOpts.DataDir, defaultOpts.Engine); err != nil {
		return nil, err
	}

	// Create a new internal engine with the initialized logger.
	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// checkEngineMarker enforces that a data directory is only ever opened by
// the backend that created it. A directory with no marker yet is stamped
// with engineName; a directory whose marker disagrees is refused.
func checkEngineMarker(dataDir, engineName string) error {
	markerPath := filepath.Join(dataDir, engineMarkerFile)

	exists, err := filesys.Exists(markerPath)
	if err != nil {
		return kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "Failed to check engine marker file").
			WithPath(markerPath)
	}
	if !exists {
		if err := filesys.WriteFile(markerPath, 0644, []byte(engineName)); err != nil {
			return kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "Failed to write engine marker file").
				WithPath(markerPath)
		}
		return nil
	}

	contents, err := filesys.ReadFile(markerPath)
	if err != nil {
		return kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "Failed to read engine marker file").
			WithPath(markerPath)
	}

	marked := strings.TrimSpace(string(contents))
	if marked != engineName {
		return kverrors.NewMismatchedEngineError(dataDir, marked, engineName)
	}
	return nil
}

// Set stores a key-value pair in the database.
// If the key already exists, its value will be updated.
// The operation is durable and will be written to the append-only log.
func (i *Instance) Set(ctx context.Context, key string, value []byte) error {
	return i.engine.Set(ctx, []byte(key), value)
}

// Get retrieves the value associated with the given key. It returns
// ok == false, with a nil error, when the key has no live entry.
func (i *Instance) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return i.engine.Get(ctx, []byte(key))
}

// Delete removes a key-value pair from the database. Removing a key with no
// live entry returns a KeyNotFound error rather than succeeding silently.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Remove(ctx, []byte(key))
}

// Generation reports the writer's current active segment generation.
func (i *Instance) Generation() uint64 {
	return i.engine.Generation()
}

// Garbage reports the writer's cumulative dead-byte count since the last
// compaction.
func (i *Instance) Garbage() uint64 {
	return i.engine.Garbage()
}

// Clone returns an Instance sharing this one's writer and index but with its
// own independent reader handle cache, suitable for handing to a goroutine
// that will call Get concurrently with the rest of the program.
func (i *Instance) Clone() *Instance {
	return &Instance{engine: i.engine.Clone(), options: i.options}
}

// Close gracefully shuts down the Ignite DB instance, releasing all
// associated resources, flushing any pending writes, and ensuring data
// durability.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
