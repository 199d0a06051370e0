package options

const (
	// Specifies the default base directory where IgniteDB will store its data files.
	// If no other directory is specified during initialization, this path will be used.
	DefaultDataDir = "/var/lib/ignitedb"

	// Defines the default cumulative garbage, in bytes, the writer tolerates
	// before triggering compaction. 4 MiB, matching the reference store this
	// module's on-disk format is compatible with.
	DefaultGarbageThreshold uint64 = 4 * 1024 * 1024

	// Names the only storage backend this module implements.
	DefaultEngine = "kvs"

	// Specifies the default subdirectory within the main data directory
	// where segment files will be stored.
	DefaultSegmentDirectory = "segments"
)

// Holds the default configuration settings for an IgniteDB instance.
var defaultOptions = Options{
	DataDir:          DefaultDataDir,
	GarbageThreshold: DefaultGarbageThreshold,
	Engine:           DefaultEngine,
	SegmentOptions: &segmentOptions{
		Directory: DefaultSegmentDirectory,
	},
}

func NewDefaultOptions() Options {
	return defaultOptions
}
