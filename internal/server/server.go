package server

import (
	"context"
	"encoding/json"
	"net"
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/pool"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/ignite"
	"go.uber.org/zap"
)

// Server accepts TCP connections and dispatches exactly one Set/Get/Remove
// per connection to a shared Instance, via a pool.Pool so requests are
// handled off the accept loop. The accept loop still waits whenever the pool
// has no worker free to take the next connection.
type Server struct {
	listener net.Listener
	instance *ignite.Instance
	pool     pool.Pool
	log      *zap.SugaredLogger
	closed   atomic.Bool
}

// Config holds the dependencies a Server needs to run.
type Config struct {
	Instance *ignite.Instance
	Pool     pool.Pool
	Logger   *zap.SugaredLogger
}

// New constructs a Server bound to no address yet; call Serve to start
// accepting connections.
func New(config *Config) (*Server, error) {
	if config == nil || config.Instance == nil || config.Pool == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Server configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}
	return &Server{instance: config.Instance, pool: config.Pool, log: config.Logger}, nil
}

// Serve binds addr and accepts connections until Close is called. Each
// accepted connection is submitted to the pool as one job; Serve itself
// blocks on net.Listener.Accept and, when every pool worker is busy, on
// pool.Spawn.
func (s *Server) Serve(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewEngineError(err, errors.ErrorCodeIO, "Failed to bind listener").WithDetail("addr", addr)
	}
	s.listener = listener

	s.log.Infow("Starting key-value store server", "addr", addr)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			s.log.Errorw("Failed to accept connection", "error", err)
			continue
		}

		s.log.Infow("Peer connected", "remoteAddr", conn.RemoteAddr().String())
		s.pool.Spawn(func() { s.handle(conn) })
	}
}

// Close stops accepting new connections. In-flight connections already
// handed to the pool are left to finish on their own.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.log.Errorw("Failed to decode request", "error", err, "remoteAddr", conn.RemoteAddr().String())
		return
	}
	s.log.Infow("Received request", "op", req.Op, "key", req.Key)

	clone := s.instance.Clone()
	defer clone.Close(context.Background())

	resp := s.dispatch(clone, &req)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Errorw("Failed to encode response", "error", err, "remoteAddr", conn.RemoteAddr().String())
	}
}

func (s *Server) dispatch(instance *ignite.Instance, req *Request) *Response {
	ctx := context.Background()

	switch req.Op {
	case OpSet:
		if err := instance.Set(ctx, req.Key, req.Value); err != nil {
			return &Response{Error: err.Error()}
		}
		return &Response{}

	case OpGet:
		value, found, err := instance.Get(ctx, req.Key)
		if err != nil {
			return &Response{Error: err.Error()}
		}
		return &Response{Value: value, Found: found}

	case OpRemove:
		if err := instance.Delete(ctx, req.Key); err != nil {
			return &Response{Error: err.Error()}
		}
		return &Response{}

	default:
		return &Response{Error: "unrecognized operation: " + string(req.Op)}
	}
}
