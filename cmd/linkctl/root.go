package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcserver "github.com/atinyakov/linkshort/internal/app/server/grpc"
)

// dialer opens the client connection used by every command.
type dialer func(addr string) (grpc.ClientConnInterface, io.Closer, error)

func dialInsecure(addr string) (grpc.ClientConnInterface, io.Closer, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, conn, nil
}

type rootOptions struct {
	addr    string
	timeout time.Duration
	dial    dialer
	out     io.Writer
}

// withClient runs fn against the directory with the per-command timeout.
func (o *rootOptions) withClient(fn func(ctx context.Context, client *grpcserver.LinkDirectoryClient) error) error {
	conn, closer, err := o.dial(o.addr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	return fn(ctx, grpcserver.NewLinkDirectoryClient(conn))
}

func newRootCmd(out io.Writer, dial dialer) *cobra.Command {
	opts := &rootOptions{dial: dial, out: out}

	defaultAddr := "localhost:3200"
	if addr := os.Getenv("GRPC_ADDRESS"); addr != "" {
		defaultAddr = addr
	}

	rootCmd := &cobra.Command{
		Use:   "linkctl",
		Short: "short link management tool",
		Example: `linkctl create https://example.com/docs -c docs01
linkctl list
linkctl get docs01
linkctl resolve docs01
linkctl delete docs01`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&opts.addr, "addr", "a", defaultAddr, "link directory gRPC address")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "per call timeout")

	rootCmd.AddCommand(createCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(getCmd(opts))
	rootCmd.AddCommand(deleteCmd(opts))
	rootCmd.AddCommand(resolveCmd(opts))

	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}
