package cli

import (
	"context"
	"log/slog"

	"github.com/hullworks/slipway/internal/build"
	"github.com/hullworks/slipway/internal/manifest"
	"github.com/hullworks/slipway/internal/runtime"
)

// Represents the 'slipway build' command.
type BuildCmd struct {
	Manifest string `short:"m" help:"Path to the build manifest." default:"slipway.toml" placeholder:"PATH"`
	Root     string `short:"r" help:"Build context directory." default:"." placeholder:"DIR"`
	Output   string `short:"o" help:"Directory for the exported image archive." default:"dist" placeholder:"DIR"`
	Resource string `help:"Name used for the build container." default:"node"`
	Platform string `short:"p" help:"Target platform (e.g. linux/amd64). Defaults to the host platform."`
}

// Executes the build command.
//
// Runs the full pipeline against containerd and exports the image archive
// into the output directory.
func (c *BuildCmd) Run(ctx context.Context) error {
	m, err := manifest.Load(c.Manifest)
	if err != nil {
		return err
	}

	rt, err := runtime.New(RootCmd.Containerd, RootCmd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, build.NewRuntime(rt), build.Options{
		Manifest: m,
		Resource: c.Resource,
		Output:   c.Output,
		Root:     c.Root,
		Platform: c.Platform,
	})
	if err != nil {
		return err
	}

	slog.Info("image ready", "output", result.Output, "phase", result.Phase)
	return nil
}
