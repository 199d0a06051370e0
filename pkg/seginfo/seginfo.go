// Package seginfo names, parses, and discovers log segment files.
//
// Filename Format: gen-N.log
//
// Where N is the segment's generation number, encoded as unpadded ASCII
// decimal. Generations only ever increase; there is no zero-padding because
// nothing in this module's recovery path depends on lexicographic filename
// order — every listing is parsed back to its numeric generation and sorted
// numerically before use.
//
// Example filenames:
//
//	gen-0.log
//	gen-1.log
//	gen-42.log
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	// Prefix is the fixed, non-configurable filename prefix every segment
	// carries. It is part of the on-disk layout contract, not a tunable.
	Prefix = "gen-"

	// Extension is the fixed filename suffix every segment carries.
	Extension = ".log"
)

// GenerateName returns the filename for the segment at the given generation.
func GenerateName(generation uint64) string {
	return fmt.Sprintf("%s%d%s", Prefix, generation, Extension)
}

// SegmentPath joins dir with the filename for the segment at generation.
func SegmentPath(dir string, generation uint64) string {
	return filepath.Join(dir, GenerateName(generation))
}

// ParseGeneration extracts the generation number from a segment filename. It
// ignores the directory portion of path, so callers may pass either a bare
// filename or a full path. Filenames that don't carry the fixed prefix and
// extension are rejected rather than ignored — callers that need to skip
// non-matching directory entries should check the returned bool.
func ParseGeneration(path string) (uint64, bool) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, Prefix) || !strings.HasSuffix(name, Extension) {
		return 0, false
	}

	digits := strings.TrimSuffix(strings.TrimPrefix(name, Prefix), Extension)
	if digits == "" {
		return 0, false
	}

	generation, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}

	return generation, true
}

// ListGenerations reads dir and returns every segment's generation number,
// sorted ascending. Entries whose name doesn't match the gen-N.log pattern
// are silently ignored, per the recovery contract: the segment directory may
// carry the marker file and other bookkeeping alongside the log segments.
func ListGenerations(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	generations := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		generation, ok := ParseGeneration(entry.Name())
		if !ok {
			continue
		}
		generations = append(generations, generation)
	}

	sort.Slice(generations, func(i, j int) bool { return generations[i] < generations[j] })
	return generations, nil
}

// GetFileInfo safely retrieves file system metadata for a given path.
func GetFileInfo(filePath string) (os.FileInfo, error) {
	file, err := os.OpenFile(filePath, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", filePath, err)
	}

	return stat, nil
}
