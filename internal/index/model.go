package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Location pinpoints exactly where one Set command lives on disk: which
// segment generation it's in, the byte offset the command starts at, and the
// total encoded length of the command. Length lets a reader seek past the
// record in one step and lets the writer account for it as garbage once a
// newer write or a Remove supersedes it.
//
// Location is rewritten wholesale by compaction: its Length stays the same,
// its Generation and Offset change atomically from readers' point of view,
// since the remap happens under the index's exclusive lock.
type Location struct {
	// Generation identifies which segment file holds the command.
	Generation uint64

	// Offset is the command's byte position within that segment.
	Offset int64

	// Length is the full encoded size of the command, used both to bound a
	// read and to account for garbage when the command is superseded.
	Length int64
}

// Index represents the in-memory hash table that maps keys to their disk
// locations. It holds exactly one entry per currently-live key; an entry is
// absent iff the key has no live Set (either never set, or its last
// operation was a Remove).
//
// The Index keeps all keys in memory for immediate lookup while storing only
// a fixed-size location per key, so the system can handle datasets much
// larger than available RAM while keeping lookups O(1).
type Index struct {
	dataDir  string             // Filesystem path where segment files are stored.
	log      *zap.SugaredLogger // Structured logging.
	location map[string]Location
	mu       sync.RWMutex // Protects concurrent access to location.
	closed   atomic.Bool
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string             // Filesystem directory containing segment files.
	Logger  *zap.SugaredLogger // Structured logging for Index operations.
}
