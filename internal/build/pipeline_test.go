package build

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hullworks/slipway/internal/manifest"
	"github.com/hullworks/slipway/internal/runtime"
)

const testManifestTOML = `
[base]
image = "rust-toolchain"

[[mount]]
path = "/data"

[build]
command = "cargo build --release"
artifact = "/app/target/release/node"
`

// Records every runtime and container operation in call order.
type fakeRuntime struct {
	ops        []string
	resolveErr error
	startErr   error
	ctr        *fakeContainer
}

func newFakeRuntime() *fakeRuntime {
	f := &fakeRuntime{}
	f.ctr = &fakeContainer{rt: f, exitCodes: map[string]int{}}
	return f
}

func (f *fakeRuntime) record(op string) {
	f.ops = append(f.ops, op)
}

func (f *fakeRuntime) ResolveBase(ctx context.Context, ref, root string) (string, error) {
	f.record("resolve:" + ref)
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "tag/" + ref, nil
}

func (f *fakeRuntime) StartContainer(ctx context.Context, tag, id, platform string) (Container, error) {
	f.record("start:" + tag)
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.ctr, nil
}

type fakeContainer struct {
	rt        *fakeRuntime
	exitCodes map[string]int // Exit code per command, default 0.
	execErr   error
	exported  []runtime.ImageConfig
	destroyed bool
}

func (f *fakeContainer) Exec(ctx context.Context, shell, command string, env []string, workdir string) (*runtime.ExecResult, error) {
	f.rt.record("exec:" + command)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return &runtime.ExecResult{ExitCode: f.exitCodes[command], Stderr: "stub stderr"}, nil
}

func (f *fakeContainer) MkdirAll(ctx context.Context, path string) error {
	f.rt.record("mkdir:" + path)
	return nil
}

func (f *fakeContainer) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	f.rt.record("copyto:" + destDir)
	_, err := io.Copy(io.Discard, r)
	return err
}

func (f *fakeContainer) Stop(ctx context.Context) error {
	f.rt.record("stop")
	return nil
}

func (f *fakeContainer) Export(ctx context.Context, output string, cfg runtime.ImageConfig) error {
	f.rt.record("export:" + output)
	f.exported = append(f.exported, cfg)
	return nil
}

func (f *fakeContainer) Destroy(ctx context.Context) {
	f.rt.record("destroy")
	f.destroyed = true
}

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(testManifestTOML))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	return m
}

func testOptions(t *testing.T, m *manifest.Manifest) Options {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	return Options{
		Manifest: m,
		Resource: "node",
		Output:   filepath.Join(t.TempDir(), "dist"),
		Root:     root,
		Platform: "linux/amd64",
	}
}

func TestRunStageOrder(t *testing.T) {
	f := newFakeRuntime()
	m := testManifest(t)

	result, err := Run(context.Background(), f, testOptions(t, m))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Phase != PhaseImageReady {
		t.Fatalf("phase = %s, want IMAGE_READY", result.Phase)
	}

	want := []string{
		"resolve:rust-toolchain",
		"start:tag/rust-toolchain",
		"mkdir:/app",
		"copyto:/app",
		"exec:" + updateCommand,
		"exec:" + installCommand(manifest.DefaultPackages),
		"exec:cargo build --release",
		"exec:test -x /app/target/release/node",
		"stop",
		"export:" + result.Output,
		"destroy",
	}
	if diff := cmp.Diff(want, f.ops); diff != "" {
		t.Fatalf("operation order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFixesLaunchCommand(t *testing.T) {
	f := newFakeRuntime()
	m := testManifest(t)

	if _, err := Run(context.Background(), f, testOptions(t, m)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.ctr.exported) != 1 {
		t.Fatalf("exports = %d, want 1", len(f.ctr.exported))
	}

	cfg := f.ctr.exported[0]
	wantEntrypoint := []string{
		"/app/target/release/node",
		"--config", "run/config-testnet-turbo.toml",
		"--log", "run/log_config",
	}
	if diff := cmp.Diff(wantEntrypoint, cfg.Entrypoint); diff != "" {
		t.Fatalf("entrypoint mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/data"}, cfg.Volumes); diff != "" {
		t.Fatalf("volumes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunMountDeclarationWritesNothing(t *testing.T) {
	f := newFakeRuntime()
	m := testManifest(t)

	if _, err := Run(context.Background(), f, testOptions(t, m)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The declared mount point must never be touched during the build;
	// it surfaces only in the exported image config.
	for _, op := range f.ops {
		if strings.Contains(op, "/data") {
			t.Fatalf("build touched declared mount point: %q", op)
		}
	}
}

func TestRunBaseNotFound(t *testing.T) {
	f := newFakeRuntime()
	f.resolveErr = runtime.ErrImageNotFound
	m := testManifest(t)

	_, err := Run(context.Background(), f, testOptions(t, m))
	if !errors.Is(err, ErrProvisioning) {
		t.Fatalf("err = %v, want ErrProvisioning", err)
	}
	if !errors.Is(err, ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}

	// Nothing past base selection may run.
	for _, op := range f.ops {
		if strings.HasPrefix(op, "exec:") || strings.HasPrefix(op, "export:") {
			t.Fatalf("stage ran after provisioning failure: %q", op)
		}
	}
}

func TestRunDependencyInstallFailsFast(t *testing.T) {
	f := newFakeRuntime()
	m := testManifest(t)
	f.ctr.exitCodes[installCommand(manifest.DefaultPackages)] = 100

	_, err := Run(context.Background(), f, testOptions(t, m))
	if !errors.Is(err, ErrDependencyInstall) {
		t.Fatalf("err = %v, want ErrDependencyInstall", err)
	}

	// Compilation must never start and no artifact may be produced.
	for _, op := range f.ops {
		if op == "exec:cargo build --release" {
			t.Fatal("compilation ran after dependency failure")
		}
		if strings.HasPrefix(op, "export:") {
			t.Fatal("image exported after dependency failure")
		}
	}
}

func TestRunCompilationFailure(t *testing.T) {
	f := newFakeRuntime()
	m := testManifest(t)
	f.ctr.exitCodes["cargo build --release"] = 101

	_, err := Run(context.Background(), f, testOptions(t, m))
	if !errors.Is(err, ErrCompilation) {
		t.Fatalf("err = %v, want ErrCompilation", err)
	}
	for _, op := range f.ops {
		if strings.HasPrefix(op, "export:") {
			t.Fatal("image exported after compilation failure")
		}
	}
}

func TestRunArtifactMissing(t *testing.T) {
	f := newFakeRuntime()
	m := testManifest(t)
	f.ctr.exitCodes["test -x /app/target/release/node"] = 1

	_, err := Run(context.Background(), f, testOptions(t, m))
	if !errors.Is(err, ErrCompilation) {
		t.Fatalf("err = %v, want ErrCompilation", err)
	}
	for _, op := range f.ops {
		if strings.HasPrefix(op, "export:") {
			t.Fatal("image exported without a verified artifact")
		}
	}
}

func TestRunDestroysContainerOnFailure(t *testing.T) {
	f := newFakeRuntime()
	m := testManifest(t)
	f.ctr.exitCodes["cargo build --release"] = 1

	Run(context.Background(), f, testOptions(t, m))

	if !f.ctr.destroyed {
		t.Fatal("build container not destroyed after failure")
	}
}

func TestRunSkipsPackagesWhenListEmpty(t *testing.T) {
	f := newFakeRuntime()
	m, err := manifest.Parse([]byte(`
[base]
image = "rust-toolchain"

[packages]
install = []

[build]
command = "cargo build --release"
artifact = "/app/target/release/node"
`))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	if _, err := Run(context.Background(), f, testOptions(t, m)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, op := range f.ops {
		if strings.Contains(op, "apt-get") {
			t.Fatalf("package command ran with empty install list: %q", op)
		}
	}
}
