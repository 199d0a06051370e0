package storage

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

// Storage is the append-only writer half of the engine. It owns exactly one
// active segment file at a time and is the only component permitted to
// extend it; every Set or Remove call appends one self-delimiting command,
// updates the shared Index under its own lock, and tracks how many bytes of
// the segment generation it has written so far are dead (superseded by a
// later write or a tombstone).
//
// Storage does not decide when to compact — it only reports, via the bool
// returned from Set and Remove, whether cumulative garbage has crossed the
// configured threshold. The engine owns that decision and invokes
// internal/compaction when it does.
type Storage struct {
	segmentDir string             // Full path to the directory holding segment files.
	generation uint64             // Generation number of the active segment.
	file       *os.File           // The currently active segment file, open for append.
	position   int64              // Byte offset the next append will start at.
	garbage    uint64             // Cumulative dead bytes written within the tracked window.
	threshold  uint64             // Garbage threshold that triggers compaction.
	index      *index.Index       // Shared key -> location table, updated on every write.
	log        *zap.SugaredLogger // Structured logger for operational visibility and debugging.
	mu         sync.Mutex         // Serializes appends to the active segment.
	closed     atomic.Bool        // Flag indicating whether the storage has been closed.
}

// Config encapsulates all the configuration parameters required to initialize a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger

	// Index is the table Storage updates on every successful append. It must
	// already reflect the state recovered from whatever segments exist on
	// disk, with InitialGarbage set to match.
	Index *index.Index

	// InitialGarbage seeds the garbage counter from a prior recovery pass, so
	// bytes that were already dead before this process started still count
	// toward the next compaction decision.
	InitialGarbage uint64
}
