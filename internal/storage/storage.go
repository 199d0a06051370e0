// Package storage provides the append-only writer half of Ignite's storage
// engine: the component responsible for extending the active segment file
// and keeping the in-memory index in lockstep with every command it writes.
//
// Core Architecture:
//
// The storage system operates on the concept of "segments" - individual
// files named gen-N.log that hold a run of encoded commands. Segments are
// never edited in place, only appended to; a new generation is only opened
// when compaction reserves one. This keeps the write path a pure append, the
// cheapest possible disk operation, and gives compaction a clean boundary to
// merge across.
//
// Initialization and Recovery:
//
// When the storage system starts up, it scans the configured directory to
// discover existing segments, picks the highest generation as active, and
// trims any partial trailing record a prior crash may have left before
// resuming appends. An empty directory starts fresh at generation 0.
package storage

import (
	"context"
	stdErrors "errors"
	"os"
	"path/filepath"

	"github.com/ignitedb/ignite/internal/index"
	internallog "github.com/ignitedb/ignite/internal/log"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/filesys"
	"github.com/ignitedb/ignite/pkg/seginfo"
)

var (
	ErrSegmentClosed = stdErrors.New("operation failed: cannot access closed segment")
)

// New creates and initializes a new Storage instance, performing all necessary setup operations
// to prepare the storage system for data writes. This function handles the complex bootstrap
// process that ensures the storage system can continue seamlessly from any previous state.
func New(ctx context.Context, config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil || config.Index == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Storage configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	config.Logger.Infow(
		"Initializing storage system",
		"dataDir", config.Options.DataDir,
		"garbageThreshold", config.Options.GarbageThreshold,
		"segmentDir", config.Options.SegmentOptions.Directory,
	)

	segmentDir := filepath.Join(config.Options.DataDir, config.Options.SegmentOptions.Directory)
	if err := filesys.CreateDir(segmentDir, 0755, true); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to create segment directory",
		).WithPath(segmentDir).WithDetail("permission", "0755").WithDetail("forceCreate", true)
	}

	storage := &Storage{
		segmentDir: segmentDir,
		log:        config.Logger,
		index:      config.Index,
		garbage:    config.InitialGarbage,
		threshold:  config.Options.GarbageThreshold,
	}

	generations, err := seginfo.ListGenerations(segmentDir)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to list segment generations").
			WithPath(segmentDir)
	}

	var generation uint64
	var position int64

	if len(generations) == 0 {
		config.Logger.Infow("No existing segments found, starting fresh", "generation", generation)
	} else {
		generation = generations[len(generations)-1]

		validLength, err := internallog.ValidLength(segmentDir, generation)
		if err != nil {
			return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to determine valid segment length").
				WithDetail("generation", generation)
		}

		path := seginfo.SegmentPath(segmentDir, generation)
		if info, statErr := seginfo.GetFileInfo(path); statErr == nil && info.Size() > validLength {
			config.Logger.Warnw(
				"Trimming partial trailing record left by a prior crash",
				"generation", generation, "diskSize", info.Size(), "validLength", validLength,
			)
			if err := os.Truncate(path, validLength); err != nil {
				return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to truncate segment").
					WithPath(path)
			}
		}

		position = validLength
		config.Logger.Infow("Resuming active segment", "generation", generation, "position", position)
	}

	file, err := internallog.OpenForAppend(segmentDir, generation)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to open active segment for append").
			WithDetail("generation", generation)
	}

	storage.generation = generation
	storage.file = file
	storage.position = position

	config.Logger.Infow(
		"Storage system initialized successfully",
		"activeGeneration", generation, "position", position, "garbage", storage.garbage,
	)
	return storage, nil
}

// Set appends a Set command for key/value to the active segment, then
// updates the index to point at the newly-written location. It reports
// whether cumulative garbage has reached the configured threshold.
func (s *Storage) Set(key, value []byte) (bool, error) {
	if s.closed.Load() {
		return false, ErrSegmentClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	offset := s.position
	cmd := internallog.NewSet(key, value)
	n, err := cmd.Encode(s.file)
	s.position += n
	if err != nil {
		return false, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to append set command").
			WithDetail("generation", s.generation).WithDetail("offset", offset)
	}
	if err := s.file.Sync(); err != nil {
		return false, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to sync active segment").
			WithDetail("generation", s.generation)
	}

	loc := index.Location{Generation: s.generation, Offset: offset, Length: n}
	if prev, existed := s.index.Put(string(key), loc); existed {
		s.garbage += uint64(prev.Length)
	}

	return s.garbage >= s.threshold, nil
}

// Remove appends a tombstone for key to the active segment and deletes key
// from the index. It returns a KeyNotFound EngineError if key has no live
// entry, matching the contract that Remove on an absent key is an error, not
// a no-op. It reports whether cumulative garbage has reached the configured
// threshold.
func (s *Storage) Remove(key []byte) (bool, error) {
	if s.closed.Load() {
		return false, ErrSegmentClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.index.Get(string(key))
	if !existed {
		return false, errors.NewKeyNotFoundError(string(key))
	}

	cmd := internallog.NewRemove(key)
	n, err := cmd.Encode(s.file)
	s.position += n
	if err != nil {
		return false, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to append remove command").
			WithDetail("generation", s.generation)
	}
	if err := s.file.Sync(); err != nil {
		return false, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to sync active segment").
			WithDetail("generation", s.generation)
	}

	s.index.Delete(string(key))
	s.garbage += uint64(prev.Length)

	return s.garbage >= s.threshold, nil
}

// Generation reports the active segment's generation number.
func (s *Storage) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Garbage reports the cumulative dead-byte count tracked since the last
// compaction (or since startup, if compaction has never run).
func (s *Storage) Garbage() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.garbage
}

// SegmentDir reports the directory segment files live in.
func (s *Storage) SegmentDir() string {
	return s.segmentDir
}

// AdoptGeneration switches the active segment to a freshly-created,
// still-empty generation and resets the garbage counter. Compaction calls
// this once it has finished merging every live record into merge_gen and has
// reserved new_gen for future writes, handing control of new_gen to Storage.
func (s *Storage) AdoptGeneration(generation uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := internallog.OpenForAppend(s.segmentDir, generation)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to open adopted segment for append").
			WithDetail("generation", generation)
	}

	if err := s.file.Close(); err != nil {
		s.log.Warnw("Failed to close previous active segment", "error", err, "generation", s.generation)
	}

	s.file = file
	s.generation = generation
	s.position = 0
	s.garbage = 0
	return nil
}

// Close flushes and closes the active segment file.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSegmentClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Infow("Closing storage system", "generation", s.generation)
	if err := s.file.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close active segment").
			WithDetail("generation", s.generation)
	}
	s.log.Infow("Storage system closed successfully")
	return nil
}
