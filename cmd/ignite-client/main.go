// Command ignite-client is a thin CLI over the Ignite TCP protocol: set,
// get, and rm subcommands, each opening one connection per invocation.
package main

import (
	"fmt"
	"os"

	"github.com/ignitedb/ignite/internal/server"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/spf13/cobra"
)

var addr string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignite-client",
		Short: "Talk to an Ignite key-value store server",
	}

	cmd.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:4000", "server TCP address")
	cmd.AddCommand(newSetCmd(), newGetCmd(), newRmCmd())
	return cmd
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a key to a value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := server.NewClient(addr)
			if err := client.Set(args[0], []byte(args[1])); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a key's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := server.NewClient(addr)
			value, found, err := client.Get(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			if !found {
				fmt.Println("Key not found")
				return nil
			}
			fmt.Println(string(value))
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := server.NewClient(addr)
			err := client.Remove(args[0])
			if err == nil {
				return nil
			}
			if errors.GetErrorCode(err) == errors.ErrorCodeKeyNotFound {
				fmt.Println("Key not found")
				os.Exit(1)
			}
			fmt.Fprintln(os.Stderr, err)
			return err
		},
	}
}
