package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hullworks/slipway/internal/paths"
	"github.com/hullworks/slipway/internal/runtime"
)

// Represents the 'slipway run' command.
type RunCmd struct {
	Tag  string   `arg:"" help:"Tag of the image to launch."`
	ID   string   `help:"Container ID. Generated when omitted."`
	Data string   `help:"Host directory backing the image's declared mount points." placeholder:"DIR"`
	Args []string `arg:"" optional:"" passthrough:"" help:"Override for the image's default command."`
}

// Executes the run command.
//
// Launches the image in the foreground with its default command, or with
// the override arguments when given. Each mount point declared by the image
// is backed by a host directory under the data directory, created on first
// use. Blocks until the process exits and reports its exit code.
func (c *RunCmd) Run(ctx context.Context) error {
	rt, err := runtime.New(RootCmd.Containerd, RootCmd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	mounts, err := c.mountBindings(ctx, rt)
	if err != nil {
		return err
	}

	code, err := rt.Launch(ctx, runtime.LaunchOptions{
		Tag:    c.Tag,
		ID:     c.ID,
		Args:   c.Args,
		Mounts: mounts,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return err
	}

	if code != 0 {
		return fmt.Errorf("process exited with status %d", code)
	}

	slog.Info("process exited", "code", code)
	return nil
}

// Builds host-backed mount bindings for the image's declared mount points.
//
// Each declared mount point maps to a directory under the data directory,
// namespaced by image tag so separate images never share state.
func (c *RunCmd) mountBindings(ctx context.Context, rt *runtime.Runtime) ([]runtime.MountBinding, error) {
	volumes, err := rt.ImageVolumes(ctx, c.Tag, runtime.DefaultPlatform())
	if err != nil {
		return nil, err
	}

	data := c.Data
	if data == "" {
		data = paths.Volumes()
	}

	mounts := make([]runtime.MountBinding, 0, len(volumes))
	for _, volume := range volumes {
		host := filepath.Join(data, tagSlug(c.Tag), strings.TrimPrefix(volume, "/"))
		if err := os.MkdirAll(host, paths.DefaultDirMode); err != nil {
			return nil, err
		}

		slog.Debug("binding mount point", "host", host, "target", volume)
		mounts = append(mounts, runtime.MountBinding{Source: host, Target: volume})
	}

	return mounts, nil
}

// Converts an image tag to a path-safe directory name.
func tagSlug(tag string) string {
	return strings.NewReplacer("/", "-", ":", "-").Replace(tag)
}
