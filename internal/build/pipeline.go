package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/hullworks/slipway/internal/manifest"
	"github.com/hullworks/slipway/internal/paths"
	"github.com/hullworks/slipway/internal/runtime"
)

// Container abstracts the build-container operations the pipeline needs.
//
// *runtime.Container satisfies it; tests substitute a fake to verify stage
// ordering without containerd.
type Container interface {
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*runtime.ExecResult, error)
	MkdirAll(ctx context.Context, path string) error
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
	Stop(ctx context.Context) error
	Export(ctx context.Context, output string, cfg runtime.ImageConfig) error
	Destroy(ctx context.Context)
}

// Runtime abstracts base-image resolution and container creation.
type Runtime interface {
	ResolveBase(ctx context.Context, ref, root string) (string, error)
	StartContainer(ctx context.Context, tag, id, platform string) (Container, error)
}

// Adapts the containerd runtime to the pipeline's [Runtime] interface.
type containerdRuntime struct {
	rt *runtime.Runtime
}

// Wraps a containerd runtime for use by [Run].
func NewRuntime(rt *runtime.Runtime) Runtime {
	return containerdRuntime{rt: rt}
}

func (c containerdRuntime) ResolveBase(ctx context.Context, ref, root string) (string, error) {
	return c.rt.ResolveBase(ctx, ref, root)
}

func (c containerdRuntime) StartContainer(ctx context.Context, tag, id, platform string) (Container, error) {
	ctr, err := c.rt.StartContainer(ctx, tag, id, platform)
	if err != nil {
		return nil, err
	}
	return ctr, nil
}

// Controls manifest execution.
type Options struct {
	Manifest *manifest.Manifest // Manifest to execute.
	Resource string             // Resource name, used as a prefix for container IDs.
	Output   string             // Directory for the exported image.
	Root     string             // Build context directory.
	Platform string             // Target platform (e.g., "linux/amd64"). Defaults to host.
}

// Returned after successful manifest execution.
type Result struct {
	Output string // Directory containing the exported image.
	Phase  Phase  // Terminal phase, always [PhaseImageReady].
}

// Holds shared state while the pipeline runs.
type pipeline struct {
	rt       Runtime            // Container runtime for image and container operations.
	m        *manifest.Manifest // Manifest being executed.
	resource string             // Resource name, used as a prefix for the build container ID.
	output   string             // Output directory for the exported image.
	root     string             // Build context directory.
	platform string             // Target platform.
	phase    Phase              // Current pipeline phase.
	ctr      Container          // Build container, nil until the base stage runs.
}

// Executes a manifest against the container runtime.
//
// Stages run strictly in declaration order: base selection, mount
// declaration, source copy, dependency installation, compilation, and
// launch configuration. The first failure aborts the remaining stages and
// leaves no exported image. The build container is destroyed when the
// pipeline finishes, successfully or not.
func Run(ctx context.Context, rt Runtime, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = runtime.DefaultPlatform()
	}

	slog.Info("executing build",
		"resource", opts.Resource,
		"output", opts.Output,
		"platform", opts.Platform,
		"mounts", len(opts.Manifest.Mounts),
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	p := &pipeline{
		rt:       rt,
		m:        opts.Manifest,
		resource: opts.Resource,
		output:   opts.Output,
		root:     opts.Root,
		platform: opts.Platform,
		phase:    PhaseUnbuilt,
	}
	defer p.destroy(ctx)

	return p.run(ctx)
}

// Runs the stages in order, failing fast on the first error.
func (p *pipeline) run(ctx context.Context) (*Result, error) {
	stages := []func(context.Context) error{
		p.selectBase,
		p.copySource,
		p.installPackages,
		p.compile,
		p.configureLaunch,
	}

	for _, stage := range stages {
		if err := stage(ctx); err != nil {
			p.phase = PhaseBuildFailed
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		}
	}

	if err := p.advance(PhaseImageReady); err != nil {
		return nil, err
	}
	slog.Info("build complete", "phase", p.phase, "output", p.output)

	return &Result{Output: p.output, Phase: p.phase}, nil
}

// Moves the pipeline to the next phase, validating the transition.
func (p *pipeline) advance(to Phase) error {
	if err := transition(p.phase, to); err != nil {
		return err
	}
	p.phase = to
	slog.Debug("phase", "phase", to)
	return nil
}

// Stage 1: resolves the base toolchain image and starts the build container.
//
// Every subsequent stage executes inside this exact environment. An
// unresolvable image reference is fatal.
func (p *pipeline) selectBase(ctx context.Context) error {
	tag, err := p.rt.ResolveBase(ctx, p.m.Base.Image, p.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	ctr, err := p.rt.StartContainer(ctx, tag, p.containerID(), p.platform)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}
	p.ctr = ctr

	// Mount declarations are advisory metadata stamped into the exported
	// image config; nothing is written to those paths at build time.
	for _, mount := range p.m.Mounts {
		slog.Debug("declaring mount", "path", mount.Path)
	}

	return p.advance(PhaseBaseSelected)
}

// Stage 2: copies the build context into the container.
func (p *pipeline) copySource(ctx context.Context) error {
	dest := p.m.Source.Dest

	if err := p.ctr.MkdirAll(ctx, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	slog.Debug("copying source", "src", p.root, "dest", dest)
	if err := copyTree(ctx, p.ctr, p.root, dest); err != nil {
		return err
	}

	return p.advance(PhaseSourceCopied)
}

// Stage 3: refreshes the package index and installs native build
// dependencies non-interactively.
//
// A resolution or network failure is fatal and is never retried; the
// pipeline aborts before compilation is attempted.
func (p *pipeline) installPackages(ctx context.Context) error {
	pkgs := p.m.Packages.Install

	if len(pkgs) > 0 {
		if p.m.Packages.RefreshIndex() {
			if err := p.mustRun(ctx, updateCommand, installEnv(), "", ErrDependencyInstall); err != nil {
				return err
			}
		}

		slog.Debug("installing packages", "packages", pkgs)
		if err := p.mustRun(ctx, installCommand(pkgs), installEnv(), "", ErrDependencyInstall); err != nil {
			return err
		}
	}

	return p.advance(PhaseDependenciesInstalled)
}

// Stage 4: compiles the release artifact and verifies it exists and is
// executable.
func (p *pipeline) compile(ctx context.Context) error {
	slog.Info("compiling", "command", p.m.Build.Command, "workdir", p.m.Build.Workdir)

	env := environ(p.m.Build.Env)
	if err := p.mustRun(ctx, p.m.Build.Command, env, p.m.Build.Workdir, ErrCompilation); err != nil {
		return err
	}

	// The artifact must exist and be executable before the launch command
	// is fixed.
	check := "test -x " + p.m.Build.Artifact
	result, err := p.ctr.Exec(ctx, p.m.Build.Shell, check, nil, "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompilation, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: artifact %q missing or not executable", ErrCompilation, p.m.Build.Artifact)
	}

	return p.advance(PhaseCompiled)
}

// Stage 5: fixes the default launch command and exports the image.
//
// The container is stopped, its filesystem diff committed, and the OCI
// archive written with the launch invocation as entrypoint and the declared
// mounts in the config's volume set.
func (p *pipeline) configureLaunch(ctx context.Context) error {
	entrypoint := p.m.Launch.Command(p.m.Build.Artifact)
	slog.Debug("configuring launch", "entrypoint", entrypoint)

	if err := p.ctr.Stop(ctx); err != nil {
		return err
	}

	err := p.ctr.Export(ctx, p.output, runtime.ImageConfig{
		Entrypoint: entrypoint,
		Volumes:    p.m.MountPaths(),
		Workdir:    p.m.Build.Workdir,
	})
	if err != nil {
		return err
	}

	return p.advance(PhaseLaunchConfigured)
}

// Runs a shell command in the container, wrapping a non-zero exit in the
// given sentinel.
func (p *pipeline) mustRun(ctx context.Context, command string, env []string, workdir string, sentinel error) error {
	result, err := p.ctr.Exec(ctx, p.m.Build.Shell, command, env, workdir)
	if err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: %q exited %d: %s", sentinel, command, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Destroys the build container, if one was started.
func (p *pipeline) destroy(ctx context.Context) {
	if p.ctr != nil {
		p.ctr.Destroy(ctx)
	}
}

// Returns the build container ID, scoped to this resource and platform.
func (p *pipeline) containerID() string {
	slug := strings.ReplaceAll(p.platform, "/", "-")
	return fmt.Sprintf("%s-%s-build", p.resource, slug)
}

// Formats an environment map as sorted "key=value" strings for container
// exec.
func environ(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}
