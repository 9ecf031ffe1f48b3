package cli

import (
	"context"
	"log/slog"

	"github.com/hullworks/slipway/internal/server"
)

// Represents the 'slipway daemon' command.
type DaemonCmd struct{}

// Executes the daemon command.
//
// Starts the server on a Unix domain socket and blocks until the context
// is cancelled (e.g. via SIGINT or SIGTERM).
func (c *DaemonCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		SocketPath:          RootCmd.Socket,
		ContainerdAddress:   RootCmd.Containerd,
		ContainerdNamespace: RootCmd.Namespace,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("slipway daemon is running")

	<-ctx.Done()

	slog.Info("shutting down")
	return srv.Stop()
}
