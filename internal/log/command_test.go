package log

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandEncodeDecodeSet(t *testing.T) {
	cmd := NewSet([]byte("greeting"), []byte("hello world"))

	var buf bytes.Buffer
	n, err := cmd.Encode(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	got, decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, n, decoded)
	require.Equal(t, KindSet, got.Kind)
	require.Equal(t, []byte("greeting"), got.Key)
	require.Equal(t, []byte("hello world"), got.Value)
}

func TestCommandEncodeDecodeRemove(t *testing.T) {
	cmd := NewRemove([]byte("greeting"))

	var buf bytes.Buffer
	_, err := cmd.Encode(&buf)
	require.NoError(t, err)

	got, _, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, KindRemove, got.Kind)
	require.Equal(t, []byte("greeting"), got.Key)
	require.Empty(t, got.Value)
}

func TestCommandEncodeDecodeEmptyValue(t *testing.T) {
	cmd := NewSet([]byte("k"), []byte{})

	var buf bytes.Buffer
	_, err := cmd.Encode(&buf)
	require.NoError(t, err)

	got, _, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, []byte{}, got.Value)
}

func TestDecodeCleanEOF(t *testing.T) {
	_, _, err := Decode(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}

func TestDecodeUnexpectedEOF(t *testing.T) {
	cmd := NewSet([]byte("k"), []byte("v"))
	var buf bytes.Buffer
	_, err := cmd.Encode(&buf)
	require.NoError(t, err)

	truncated := buf.Bytes()[:buf.Len()-2]
	_, _, err = Decode(bytes.NewReader(truncated))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeUnknownTag(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte{0xFF}))
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
	require.NotErrorIs(t, err, io.ErrUnexpectedEOF)
}
