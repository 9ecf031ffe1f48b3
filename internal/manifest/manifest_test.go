package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const fullManifest = `
[base]
image = "images/rust-1.70.tar"

[[mount]]
path = "/data"

[source]
dest = "/node"

[packages]
install = ["clang", "libssl-dev"]
update = false

[build]
command = "cargo build --release"
workdir = "/node"
artifact = "/node/target/release/node"

[build.env]
CARGO_TERM_COLOR = "never"

[launch]
config = "run/config-mainnet.toml"
log = "run/log_config"
`

func TestParseFull(t *testing.T) {
	m, err := Parse([]byte(fullManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Base.Image != "images/rust-1.70.tar" {
		t.Fatalf("base.image = %q", m.Base.Image)
	}
	if diff := cmp.Diff([]string{"/data"}, m.MountPaths()); diff != "" {
		t.Fatalf("mount paths mismatch (-want +got):\n%s", diff)
	}
	if m.Source.Dest != "/node" {
		t.Fatalf("source.dest = %q", m.Source.Dest)
	}
	if m.Packages.RefreshIndex() {
		t.Fatal("update = false should disable index refresh")
	}
	if m.Build.Env["CARGO_TERM_COLOR"] != "never" {
		t.Fatalf("build.env = %v", m.Build.Env)
	}
	if m.Launch.Config != "run/config-mainnet.toml" {
		t.Fatalf("launch.config = %q", m.Launch.Config)
	}
}

func TestParseDefaults(t *testing.T) {
	m, err := Parse([]byte(`
[base]
image = "rust-toolchain"

[build]
command = "cargo build --release"
artifact = "/app/target/release/node"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Source.Dest != DefaultSourceDest {
		t.Fatalf("source.dest = %q, want %q", m.Source.Dest, DefaultSourceDest)
	}
	if m.Build.Workdir != DefaultSourceDest {
		t.Fatalf("build.workdir = %q, want %q", m.Build.Workdir, DefaultSourceDest)
	}
	if m.Build.Shell != DefaultShell {
		t.Fatalf("build.shell = %q, want %q", m.Build.Shell, DefaultShell)
	}
	if diff := cmp.Diff(DefaultPackages, m.Packages.Install); diff != "" {
		t.Fatalf("packages mismatch (-want +got):\n%s", diff)
	}
	if !m.Packages.RefreshIndex() {
		t.Fatal("index refresh should default to true when packages are installed")
	}
	if m.Launch.Config != DefaultLaunchConfig {
		t.Fatalf("launch.config = %q, want %q", m.Launch.Config, DefaultLaunchConfig)
	}
	if m.Launch.Log != DefaultLaunchLog {
		t.Fatalf("launch.log = %q, want %q", m.Launch.Log, DefaultLaunchLog)
	}
}

func TestParseWorkdirFollowsSourceDest(t *testing.T) {
	m, err := Parse([]byte(`
[base]
image = "rust-toolchain"

[source]
dest = "/build"

[build]
command = "cargo build --release"
artifact = "/build/target/release/node"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Build.Workdir != "/build" {
		t.Fatalf("build.workdir = %q, want /build", m.Build.Workdir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "missing base image",
			input: `
[build]
command = "make"
artifact = "/app/out"
`,
		},
		{
			name: "missing build command",
			input: `
[base]
image = "toolchain"

[build]
artifact = "/app/out"
`,
		},
		{
			name: "missing artifact",
			input: `
[base]
image = "toolchain"

[build]
command = "make"
`,
		},
		{
			name: "relative source dest",
			input: `
[base]
image = "toolchain"

[source]
dest = "app"

[build]
command = "make"
artifact = "/app/out"
`,
		},
		{
			name: "relative mount path",
			input: `
[base]
image = "toolchain"

[[mount]]
path = "data"

[build]
command = "make"
artifact = "/app/out"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, ErrManifest) {
				t.Fatalf("err = %v, want ErrManifest", err)
			}
		})
	}
}

func TestLaunchCommand(t *testing.T) {
	l := Launch{Config: "run/config-testnet-turbo.toml", Log: "run/log_config"}

	got := l.Command("/app/target/release/node")
	want := []string{
		"/app/target/release/node",
		"--config", "run/config-testnet-turbo.toml",
		"--log", "run/log_config",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("command mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slipway.toml")
	if err := os.WriteFile(path, []byte(fullManifest), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Build.Artifact != "/node/target/release/node" {
		t.Fatalf("build.artifact = %q", m.Build.Artifact)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, ErrManifest) {
		t.Fatalf("err = %v, want ErrManifest", err)
	}
}
