// Package options provides data structures and functions for configuring
// the Ignite database. It defines various parameters that control Ignite's
// storage behavior, performance, and maintenance operations, such as
// directory paths, segment characteristics, and compaction thresholds.
package options

import (
	"strings"
)

// Defines configurable parameters for the segment directory layout.
// Segment filenames themselves are not configurable — every segment is
// named "gen-<N>.log" with an unpadded decimal generation number, since
// that's the on-disk contract a separately started server or CLI must be
// able to rediscover without being told the naming scheme out of band.
type segmentOptions struct {
	// Specifies where segment files are stored, relative to DataDir.
	//
	// Default: "segments"
	Directory string `json:"directory"`
}

// Defines the configuration parameters for Ignite DB.
// It provides control over storage, performance and maintenance aspects.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Defines the cumulative byte-length of superseded or tombstoned Set
	// commands the writer tolerates before triggering compaction.
	//
	// Default: 4 MiB
	GarbageThreshold uint64 `json:"garbageThreshold"`

	// Names the storage backend a data directory is opened with. The only
	// backend this module implements is "kvs"; "sled" is accepted here only
	// so that opening a directory previously used by the alternative
	// embedded-tree backend can be refused with a clear error instead of
	// silently misinterpreting its files.
	//
	// Default: "kvs"
	Engine string `json:"engine"`

	// Configures segment directory layout.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies the Ignite system's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.SegmentOptions = opts.SegmentOptions
		o.GarbageThreshold = opts.GarbageThreshold
		o.Engine = opts.Engine
	}
}

// Sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the garbage threshold, in bytes, that triggers compaction.
func WithGarbageThreshold(threshold uint64) OptionFunc {
	return func(o *Options) {
		if threshold > 0 {
			o.GarbageThreshold = threshold
		}
	}
}

// Sets the storage backend identifier a data directory is opened with.
func WithEngine(engine string) OptionFunc {
	return func(o *Options) {
		engine = strings.TrimSpace(strings.ToLower(engine))
		if engine != "" {
			o.Engine = engine
		}
	}
}

// Sets the directory specifically for storing segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}
