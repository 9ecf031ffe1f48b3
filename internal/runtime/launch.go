package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/google/uuid"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Binds a host directory to a mount point inside a launched container.
type MountBinding struct {
	Source string // Host directory backing the mount.
	Target string // Mount point inside the container.
}

// Controls a foreground container launch.
type LaunchOptions struct {
	Tag    string         // Tag of the image to launch.
	ID     string         // Container ID. Empty generates one.
	Args   []string       // Full command override. Empty runs the image's default command.
	Mounts []MountBinding // Host directories bound to declared mount points.
	Stdout io.Writer      // Receives the process stdout. Nil discards.
	Stderr io.Writer      // Receives the process stderr. Nil discards.
}

// Instantiates an image as a single foreground container and blocks until
// its process exits.
//
// The process is the image's default command unless Args is set, in which
// case the override fully replaces it with nothing appended. Each mount
// binding is attached as a read-write bind mount. The process exit code is
// returned verbatim; slipway neither interprets the failure of the launched
// process nor restarts it. Cancelling the context kills the task.
func (rt *Runtime) Launch(ctx context.Context, opts LaunchOptions) (int, error) {
	platform := DefaultPlatform()

	id := opts.ID
	if id == "" {
		id = launchID()
	}

	if err := rt.unpackImage(ctx, opts.Tag, platform); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	image, err := rt.resolveImage(ctx, opts.Tag, platform)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: platform,
	}

	// Remove any stale container from a previous launch with the same ID.
	c.remove(ctx)

	ctr, err := rt.createLaunchContainer(ctx, c, image, opts)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer ctr.Delete(context.WithoutCancel(ctx), containerd.WithSnapshotCleanup)

	slog.Info("container starting", "id", id, "image", opts.Tag)

	return runTask(ctx, ctr, opts.Stdout, opts.Stderr)
}

// Creates the containerd container for a launch.
//
// The OCI spec starts from the image config, so the default launch command
// baked in at build time applies unless an override is given. The override
// is applied after the image config, replacing the entire argument list.
func (rt *Runtime) createLaunchContainer(ctx context.Context, c *Container, image containerd.Image, opts LaunchOptions) (containerd.Container, error) {
	specOpts := []oci.SpecOpts{
		oci.WithDefaultSpecForPlatform(c.platform),
		oci.WithImageConfig(image),
		oci.WithHostNamespace(specs.NetworkNamespace),
		oci.WithHostResolvconf,
	}

	if len(opts.Mounts) > 0 {
		specOpts = append(specOpts, oci.WithMounts(mountSpecs(opts.Mounts)))
	}

	if len(opts.Args) > 0 {
		specOpts = append(specOpts, oci.WithProcessArgs(opts.Args...))
	}

	return rt.client.NewContainer(ctx, c.id,
		containerd.WithImage(image),
		containerd.WithSnapshotter(snapshotter),
		containerd.WithNewSnapshot(c.id, image),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(specOpts...),
	)
}

// Starts the container's primary task in the foreground and waits for it.
//
// Returns the exit code of the process. When the context is cancelled the
// task is killed and the resulting exit code is returned.
func runTask(ctx context.Context, ctr containerd.Container, stdout, stderr io.Writer) (int, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	task, err := ctr.NewTask(ctx, cio.NewCreator(cio.WithStreams(nil, stdout, stderr)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer task.Delete(context.WithoutCancel(ctx), containerd.WithProcessKill)

	statusC, err := task.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := task.Start(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	var exitStatus containerd.ExitStatus
	select {
	case exitStatus = <-statusC:
	case <-ctx.Done():
		task.Kill(context.WithoutCancel(ctx), syscall.SIGKILL)
		exitStatus = <-statusC
	}

	code, _, err := exitStatus.Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return int(code), nil
}

// Converts mount bindings to OCI bind-mount entries.
func mountSpecs(bindings []MountBinding) []specs.Mount {
	mounts := make([]specs.Mount, 0, len(bindings))
	for _, b := range bindings {
		mounts = append(mounts, specs.Mount{
			Destination: b.Target,
			Type:        "none",
			Source:      b.Source,
			Options:     []string{"rbind", "rw"},
		})
	}
	return mounts
}

// Returns a fresh launch container ID.
func launchID() string {
	return "launch-" + uuid.NewString()[:8]
}
