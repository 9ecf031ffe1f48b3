package cli

import (
	"context"
	"log/slog"

	"github.com/hullworks/slipway/internal/build"
	"github.com/hullworks/slipway/internal/manifest"
	"github.com/hullworks/slipway/internal/runtime"
	"github.com/hullworks/slipway/internal/watch"
)

// Represents the 'slipway dev' command.
type DevCmd struct {
	Manifest string `short:"m" help:"Path to the build manifest." default:"slipway.toml" placeholder:"PATH"`
	Root     string `short:"r" help:"Build context directory." default:"." placeholder:"DIR"`
	Output   string `short:"o" help:"Directory for the exported image archive." default:"dist" placeholder:"DIR"`
	Resource string `help:"Name used for the build container." default:"node"`
	Platform string `short:"p" help:"Target platform (e.g. linux/amd64). Defaults to the host platform."`
}

// Executes the dev command.
//
// Builds once, then watches the build context and rebuilds on every change
// until interrupted. A failed rebuild is logged and the watch continues;
// the previously exported archive is left in place.
func (c *DevCmd) Run(ctx context.Context) error {
	rt, err := runtime.New(RootCmd.Containerd, RootCmd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	w, err := watch.New(watch.Config{
		Root:   c.Root,
		Ignore: []string{c.Output, c.Output + "/**"},
	})
	if err != nil {
		return err
	}

	go w.Run(ctx)

	c.rebuild(ctx, rt)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			slog.Info("source changed, rebuilding")
			c.rebuild(ctx, rt)
		}
	}
}

// Runs one build pass, logging instead of propagating failures.
//
// The manifest is reloaded on every pass so edits to it take effect
// without restarting the watch.
func (c *DevCmd) rebuild(ctx context.Context, rt *runtime.Runtime) {
	m, err := manifest.Load(c.Manifest)
	if err != nil {
		slog.Error("manifest rejected", "error", err)
		return
	}

	result, err := build.Run(ctx, build.NewRuntime(rt), build.Options{
		Manifest: m,
		Resource: c.Resource,
		Output:   c.Output,
		Root:     c.Root,
		Platform: c.Platform,
	})
	if err != nil {
		slog.Error("build failed", "error", err)
		return
	}

	slog.Info("image ready", "output", result.Output)
}
