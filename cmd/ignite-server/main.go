// Command ignite-server runs the Ignite key-value store as a standalone
// TCP server, fronting an in-process engine with the JSON request/response
// protocol internal/server implements.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ignitedb/ignite/internal/pool"
	"github.com/ignitedb/ignite/internal/server"
	kverrors "github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/ignite"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/spf13/cobra"
)

var (
	addr    string
	engine  string
	workers int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignite-server [data-dir]",
		Short: "Run the Ignite key-value store server",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServer,
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4000", "TCP address to listen on")
	cmd.Flags().StringVar(&engine, "engine", "kvs", "storage engine backend (kvs|sled)")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of pool workers handling connections")

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	dataDir := "."
	if len(args) == 1 {
		dataDir = args[0]
	}

	log := logger.New("ignite-server")

	instance, err := ignite.NewInstance(
		context.Background(), "ignite-server",
		options.WithDataDir(dataDir), options.WithEngine(engine),
	)
	if err != nil {
		log.Errorw("Failed to initialize engine", "error", err, "code", kverrors.GetErrorCode(err))
		return err
	}
	defer instance.Close(context.Background())

	workerPool := pool.NewSharedQueuePool(workers, log)

	srv, err := server.New(&server.Config{Instance: instance, Pool: workerPool, Logger: log})
	if err != nil {
		return err
	}

	adminAddr, err := adminAddrFor(addr)
	if err != nil {
		log.Warnw("Could not derive admin HTTP address, skipping admin surface", "error", err)
	} else {
		adminSrv := server.NewAdminHTTPServer(adminAddr, srv)
		go func() {
			log.Infow("Starting admin HTTP surface", "addr", adminAddr)
			if err := adminSrv.ListenAndServe(); err != nil {
				log.Warnw("Admin HTTP surface stopped", "error", err)
			}
		}()
	}

	return srv.Serve(addr)
}

// adminAddrFor derives the admin HTTP address from the TCP protocol
// address: same host, port+1.
func adminAddrFor(addr string) (string, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", port+1)), nil
}
