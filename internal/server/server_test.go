package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ignitedb/ignite/internal/pool"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/ignite"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (*Client, func()) {
	t.Helper()

	instance, err := ignite.NewInstance(context.Background(), "test", options.WithDataDir(t.TempDir()))
	require.NoError(t, err)

	srv, err := New(&Config{Instance: instance, Pool: pool.NewNaivePool(), Logger: logger.Nop()})
	require.NoError(t, err)

	addr := freeTCPAddr(t)
	go func() {
		_ = srv.Serve(addr)
	}()
	waitForListener(t, addr)

	cleanup := func() {
		srv.Close()
		instance.Close(context.Background())
	}
	return NewClient(addr), cleanup
}

func freeTCPAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func waitForListener(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server never started listening on %s", addr)
}

func TestClientSetGetRemoveRoundTrip(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	require.NoError(t, client.Set("a", []byte("1")))

	value, found, err := client.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)

	require.NoError(t, client.Remove("a"))

	_, found, err = client.Get("a")
	require.NoError(t, err)
	require.False(t, found)
}

func TestClientGetAbsentKeyReturnsNotFound(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	value, found, err := client.Get("missing")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, value)
}

func TestClientRemoveAbsentKeyReturnsKeyNotFoundError(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	err := client.Remove("missing")
	require.Error(t, err)
	require.Equal(t, errors.ErrorCodeKeyNotFound, errors.GetErrorCode(err))
}

func TestMultipleSequentialConnectionsShareState(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	require.NoError(t, client.Set("a", []byte("1")))
	require.NoError(t, client.Set("b", []byte("2")))

	valueA, found, err := client.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), valueA)

	valueB, found, err := client.Get("b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), valueB)
}
