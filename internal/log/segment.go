package log

import (
	"io"
	"os"

	"github.com/ignitedb/ignite/pkg/seginfo"
)

// OpenForAppend opens (creating if necessary) the segment file for
// generation within dir, positioned for append-only writes. Segment bytes
// are never edited in place, only extended.
func OpenForAppend(dir string, generation uint64) (*os.File, error) {
	path := seginfo.SegmentPath(dir, generation)
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// OpenForRead opens the segment file for generation within dir, read-only,
// positioned at the start of the file.
func OpenForRead(dir string, generation uint64) (*os.File, error) {
	path := seginfo.SegmentPath(dir, generation)
	return os.OpenFile(path, os.O_RDONLY, 0644)
}

// Visitor is called once per command decoded while replaying a segment. pos
// is the command's byte offset within the segment and length is its total
// encoded size — exactly the two fields, alongside the generation, that make
// up a location record.
type Visitor func(cmd *Command, pos, length int64) error

// Replay decodes every command in the segment for generation, in file order,
// invoking visit for each. It stops cleanly at io.EOF or io.ErrUnexpectedEOF
// (a partial trailing record left by a crash mid-append) without returning
// an error — per this log's recovery contract, no data before an
// unreadable trailing record is discarded, and the partial bytes are simply
// never visited. Any other decode error is returned, since it indicates the
// segment decodes to something other than a valid command.
func Replay(dir string, generation uint64, visit Visitor) error {
	f, err := OpenForRead(dir, generation)
	if err != nil {
		return err
	}
	defer f.Close()

	var pos int64
	for {
		cmd, n, err := Decode(f)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := visit(cmd, pos, n); err != nil {
			return err
		}
		pos += n
	}
}

// CopyRange copies exactly length bytes starting at offset from the segment
// file for generation within dir into dst, without decoding them — used by
// compaction to carry a live record into the merged segment byte-for-byte.
func CopyRange(dir string, generation uint64, offset, length int64, dst io.Writer) (int64, error) {
	f, err := OpenForRead(dir, generation)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	section := io.NewSectionReader(f, offset, length)
	return io.Copy(dst, section)
}

// Remove deletes the segment file for generation within dir.
func Remove(dir string, generation uint64) error {
	return os.Remove(seginfo.SegmentPath(dir, generation))
}

// ValidLength returns the byte offset one past the last fully-decodable
// command in the segment for generation within dir — i.e. the length the
// file would have if any partial trailing record left by a crashed append
// were trimmed off. Storage bootstrap truncates to this length before
// resuming appends, so a half-written record can never corrupt a subsequent
// write.
func ValidLength(dir string, generation uint64) (int64, error) {
	var length int64
	err := Replay(dir, generation, func(cmd *Command, pos, n int64) error {
		length = pos + n
		return nil
	})
	return length, err
}
