package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/config"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/grpcapi"
)

// newWatchCmd tails the gRPC change feed, one JSON object per line.
func newWatchCmd(load func() (config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print change events from a running server's gRPC feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.GRPCAddr
			}
			if addr == "" {
				return errors.New("no gRPC address: set --addr or FACILITY_GRPC_ADDR")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cfg.GRPCToken != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+cfg.GRPCToken)
			}
			return watch(ctx, addr, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "server gRPC address (defaults to grpc_addr)")
	return cmd
}

func watch(ctx context.Context, addr string, out io.Writer) error {
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer cc.Close()

	feed, err := grpcapi.Subscribe(ctx, cc)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for {
		ev, err := feed.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("recv: %w", err)
		}
		line, err := protojson.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		fmt.Fprintln(out, string(line))
	}
}
