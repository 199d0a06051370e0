// Package reader implements the per-clone handle cache that backs every
// Get. Go has no addressable thread-local storage and no stable goroutine
// identity, so unlike the reference store's "per-thread, lazily populated"
// reader handles, a reader.Set here is attached one-per-Engine-facade-clone
// instead: cheap to create (it shares the writer and index, only the file
// handle cache is unshared), and a caller that wants read parallelism across
// goroutines clones the facade once per goroutine, exactly the pattern the
// facade contract already describes.
package reader

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/index"
	internallog "github.com/ignitedb/ignite/internal/log"
	"github.com/ignitedb/ignite/pkg/errors"
)

// Set is a lazily-populated cache of read-only segment file handles,
// scoped to a single Engine facade clone. No lock in this package is ever
// held across disk I/O: the index lookup, the handle lookup, and the read
// itself are three separate, short-lived critical sections.
type Set struct {
	dataDir      string
	mu           sync.Mutex
	handles      map[uint64]*os.File
	seenMergeGen uint64
}

// NewSet creates an empty reader handle cache rooted at dataDir.
func NewSet(dataDir string) *Set {
	return &Set{dataDir: dataDir, handles: make(map[uint64]*os.File)}
}

// Get resolves key's current value, if any. It consults idx for the
// location, opens (or reuses) a read handle for that location's segment
// generation, and decodes exactly one command from it. It reports false,
// nil, nil when key has no live entry.
//
// lastMergeGen is observed with acquire semantics on every call: when it has
// advanced past handles this Set cached before the merge, those handles are
// closed and dropped so the cache never pins file descriptors for segments
// compaction has already removed.
func (s *Set) Get(idx *index.Index, lastMergeGen *atomic.Uint64, key string) ([]byte, bool, error) {
	return s.get(idx, lastMergeGen, key, false)
}

// get is Get's implementation, with retried tracking whether this call is
// already a retry so a location that keeps disappearing can't loop forever.
//
// A Get can read a key's location out of the index, then lose a race with a
// concurrent compaction that remaps the key to a new generation and deletes
// the generation Get just read — all before Get reaches OpenForRead. Since
// Compaction.Compact publishes lastMergeGen before it retires any segment,
// an OpenForRead failing with "not exist" against a generation older than
// the now-observed lastMergeGen means exactly that race happened: the index
// entry has already been remapped, so re-resolving the location and trying
// once more finds it in the merge generation instead.
func (s *Set) get(idx *index.Index, lastMergeGen *atomic.Uint64, key string, retried bool) ([]byte, bool, error) {
	loc, ok := idx.Get(key)
	if !ok {
		return nil, false, nil
	}

	s.mu.Lock()
	if merge := lastMergeGen.Load(); merge > s.seenMergeGen {
		s.evictStaleLocked(merge)
		s.seenMergeGen = merge
	}

	file, ok := s.handles[loc.Generation]
	if !ok {
		f, err := internallog.OpenForRead(s.dataDir, loc.Generation)
		if err != nil {
			s.mu.Unlock()
			if !retried && os.IsNotExist(err) && loc.Generation < lastMergeGen.Load() {
				return s.get(idx, lastMergeGen, key, true)
			}
			return nil, false, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to open segment for read").
				WithDetail("generation", loc.Generation)
		}
		s.handles[loc.Generation] = f
		file = f
	}
	s.mu.Unlock()

	section := io.NewSectionReader(file, loc.Offset, loc.Length)
	cmd, _, err := internallog.Decode(section)
	if err != nil {
		return nil, false, errors.NewCorruptedLogError(err, key, loc.Generation)
	}
	if cmd.Kind != internallog.KindSet {
		return nil, false, errors.NewCorruptedLogError(nil, key, loc.Generation).
			WithMessage("index pointed at a non-set command")
	}

	return cmd.Value, true, nil
}

// evictStaleLocked closes and drops every cached handle for a generation
// below floor. Callers must hold s.mu.
func (s *Set) evictStaleLocked(floor uint64) {
	for generation, f := range s.handles {
		if generation < floor {
			f.Close()
			delete(s.handles, generation)
		}
	}
}

// Close releases every handle this Set has opened. It is safe, though
// unnecessary, to call more than once.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for generation, f := range s.handles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.handles, generation)
	}
	return firstErr
}
