package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ignitedb/ignite/internal/pool"
	"github.com/ignitedb/ignite/pkg/ignite"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func TestAdminHealthzAndStats(t *testing.T) {
	instance, err := ignite.NewInstance(context.Background(), "test", options.WithDataDir(t.TempDir()))
	require.NoError(t, err)
	defer instance.Close(context.Background())

	srv, err := New(&Config{Instance: instance, Pool: pool.NewNaivePool(), Logger: logger.Nop()})
	require.NoError(t, err)

	admin := NewAdminHTTPServer("127.0.0.1:0", srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	admin.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var health healthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)

	require.NoError(t, instance.Set(context.Background(), "a", []byte("1")))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/stats", nil)
	admin.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, instance.Generation(), stats.Generation)
	require.Equal(t, instance.Garbage(), stats.Garbage)
}
