// Package index provides the in-memory hash table implementation for the ignite key-value store.
// This package embodies the core Bitcask architectural principle: maintain all keys in memory
// with minimal metadata while storing actual values on disk for optimal memory utilization.
//
// The design philosophy centers on memory efficiency as the primary constraint. Every byte
// stored in the Location structure directly impacts the system's ability to handle
// large datasets. The approach here prioritizes compact data structures over convenience
// features, recognizing that memory constraints often determine system scalability limits.
//
// The index enables O(1) key lookups through an in-memory hash table while keeping
// storage overhead minimal. This allows the system to handle datasets significantly
// larger than available RAM while maintaining excellent read performance characteristics.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/ignitedb/ignite/internal/log"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/seginfo"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new, empty Index instance configured according
// to the provided parameters. The returned Index is immediately ready for
// concurrent use and includes optimizations like pre-allocated map capacity.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:      config.Logger,
		dataDir:  config.DataDir,
		location: make(map[string]Location, 2046),
	}, nil
}

// Recover rebuilds an Index from scratch by replaying every segment found in
// dataDir, in ascending generation order. Replaying in order guarantees that
// when a key was written more than once (across the same or different
// segments) its final Location reflects the latest write, and that a trailing
// Remove tombstone correctly deletes any earlier entry.
//
// It also returns the cumulative byte size of every Set command that replay
// determined was NOT the live entry for its key — i.e. every Set superseded
// by a later Set or tombstoned by a Remove — so the caller can seed the
// writer's garbage counter without re-scanning the log a second time.
func Recover(ctx context.Context, config *Config) (*Index, uint64, error) {
	idx, err := New(ctx, config)
	if err != nil {
		return nil, 0, err
	}

	generations, err := seginfo.ListGenerations(config.DataDir)
	if err != nil {
		return nil, 0, err
	}

	var garbage uint64
	for _, generation := range generations {
		err := log.Replay(config.DataDir, generation, func(cmd *log.Command, pos, length int64) error {
			key := string(cmd.Key)
			switch cmd.Kind {
			case log.KindSet:
				loc := Location{Generation: generation, Offset: pos, Length: length}
				if prev, existed := idx.putLocked(key, loc); existed {
					garbage += uint64(prev.Length)
				}
			case log.KindRemove:
				if prev, existed := idx.deleteLocked(key); existed {
					garbage += uint64(prev.Length)
				}
			}
			return nil
		})
		if err != nil {
			return nil, 0, errors.NewCorruptedLogError(err, "", generation).
				WithMessage("failed to replay segment during index recovery")
		}
	}

	config.Logger.Infow(
		"Index recovered from disk", "generations", len(generations), "keys", len(idx.location), "garbage", garbage,
	)
	return idx, garbage, nil
}

// Get looks up the current Location for key. The returned Location is a copy:
// callers read it without holding any lock, so a concurrent Put or Delete can
// never observe a caller mutating it and a caller can never see a Location
// torn mid-update.
func (idx *Index) Get(key string) (Location, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.location[key]
	return loc, ok
}

// Put records loc as the current Location for key, returning the previous
// Location (if any) so the caller can account for it as newly-garbage bytes.
func (idx *Index) Put(key string, loc Location) (Location, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.putLocked(key, loc)
}

func (idx *Index) putLocked(key string, loc Location) (Location, bool) {
	prev, existed := idx.location[key]
	idx.location[key] = loc
	return prev, existed
}

// Delete removes key's entry entirely, returning its last Location (if any)
// so the caller can account for it as newly-garbage bytes.
func (idx *Index) Delete(key string) (Location, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.deleteLocked(key)
}

func (idx *Index) deleteLocked(key string) (Location, bool) {
	prev, existed := idx.location[key]
	if existed {
		delete(idx.location, key)
	}
	return prev, existed
}

// Len reports the number of live keys currently tracked.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.location)
}

// Range calls visit once for every live key/Location pair. visit must not
// call back into the Index: Range holds the read lock for its entire
// duration, and compaction relies on that to take a consistent snapshot of
// every entry pinned to the generation being merged.
func (idx *Index) Range(visit func(key string, loc Location) bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for key, loc := range idx.location {
		if !visit(key, loc) {
			return
		}
	}
}

// Remap overwrites key's Location in place, used by compaction once a live
// record has been copied into the merged segment. It reports whether key was
// still present and still pointed at expectFrom — compaction only performs
// the remap when both hold, since a write racing ahead of compaction may have
// already superseded the entry.
func (idx *Index) Remap(key string, expectFrom Location, to Location) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	current, ok := idx.location[key]
	if !ok || current != expectFrom {
		return false
	}
	idx.location[key] = to
	return true
}

// Close gracefully shuts down the Index, cleaning up resources and ensuring
// that the index cannot be used after closure.
func (idx *Index) Close() error {
	// Use atomic compare-and-swap to safely check and update the closed state.
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index system")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	// Clear the location map to release all memory associated with
	// the index entries.
	clear(idx.location)
	idx.location = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
