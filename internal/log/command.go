// Package log implements the on-disk command codec and segment file access
// that back Ignite's append-only command log. Every mutation the engine
// makes is represented here as a Command, encoded once, and never edited in
// place — only appended, read, or (during compaction) copied verbatim into
// a new segment.
package log

import (
	"encoding/binary"
	"io"

	kverrors "github.com/ignitedb/ignite/pkg/errors"
)

// Kind tags which variant a Command record holds.
type Kind uint8

const (
	// KindSet tags a record that assigns a value to a key.
	KindSet Kind = 1

	// KindRemove tags a tombstone record for a key.
	KindRemove Kind = 2
)

// Command is a single tagged record written to the log. Set carries both a
// key and a value; Remove carries only a key and acts as a tombstone.
type Command struct {
	Kind  Kind
	Key   []byte
	Value []byte
}

// NewSet builds a Set command.
func NewSet(key, value []byte) *Command {
	return &Command{Kind: KindSet, Key: key, Value: value}
}

// NewRemove builds a Remove command.
func NewRemove(key []byte) *Command {
	return &Command{Kind: KindRemove, Key: key}
}

// Encode writes c to w as a self-delimiting frame and returns the number of
// bytes written. The format is a 1-byte kind tag followed by one
// length-prefixed byte string (the key) for Remove, or two for Set (key then
// value); lengths are 4-byte big-endian, the same length-prefix-then-payload
// shape the record framing in this codebase's proglog-family sibling
// packages uses for its own records.
func (c *Command) Encode(w io.Writer) (int64, error) {
	if _, err := w.Write([]byte{byte(c.Kind)}); err != nil {
		return 0, err
	}
	total := int64(1)

	n, err := writeFrame(w, c.Key)
	total += n
	if err != nil {
		return total, err
	}

	if c.Kind == KindSet {
		n, err = writeFrame(w, c.Value)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func writeFrame(w io.Writer, b []byte) (int64, error) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 4, nil
	}
	if _, err := w.Write(b); err != nil {
		return 4, err
	}
	return int64(4 + len(b)), nil
}

// Decode reads exactly one Command from r, returning the command and the
// number of bytes consumed.
//
// Three outcomes distinguish a clean stop from a real failure:
//   - io.EOF: the stream ended exactly on a record boundary. This is the
//     normal end of a segment and is never an error to the caller.
//   - io.ErrUnexpectedEOF: the stream ended partway through a record — the
//     signature of a crash that landed mid-append. Per this log's recovery
//     contract, this is treated as the end of the log, not a failure; no
//     data before the partial record is discarded.
//   - any other error: the bytes decoded but named a tag this codec doesn't
//     recognize, which is corruption and is always fatal for the read.
func Decode(r io.Reader) (*Command, int64, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return nil, 0, io.EOF
	}

	total := int64(1)
	readFrame := func() ([]byte, error) {
		var lenBuf [4]byte
		read, err := io.ReadFull(r, lenBuf[:])
		total += int64(read)
		if err != nil {
			return nil, io.ErrUnexpectedEOF
		}

		length := binary.BigEndian.Uint32(lenBuf[:])
		if length == 0 {
			return []byte{}, nil
		}

		buf := make([]byte, length)
		read, err = io.ReadFull(r, buf)
		total += int64(read)
		if err != nil {
			return nil, io.ErrUnexpectedEOF
		}
		return buf, nil
	}

	kind := Kind(tagBuf[0])
	switch kind {
	case KindSet:
		key, err := readFrame()
		if err != nil {
			return nil, total, err
		}
		value, err := readFrame()
		if err != nil {
			return nil, total, err
		}
		return &Command{Kind: KindSet, Key: key, Value: value}, total, nil

	case KindRemove:
		key, err := readFrame()
		if err != nil {
			return nil, total, err
		}
		return &Command{Kind: KindRemove, Key: key}, total, nil

	default:
		return nil, total, kverrors.NewCorruptedLogError(nil, "", 0).
			WithDetail("tag", kind).
			WithMessage("log segment contains an unrecognized command tag")
	}
}
