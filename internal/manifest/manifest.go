package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default values applied when the manifest omits the corresponding field.
// These mirror the build-and-launch declaration slipway was extracted from;
// every one of them can be overridden per manifest.
const (

	// Where the source tree is copied inside the build container.
	DefaultSourceDest = "/app"

	// Shell used for package installation and build commands.
	DefaultShell = "/bin/sh"

	// Configuration file passed to the launched process, relative to the
	// artifact's working directory.
	DefaultLaunchConfig = "run/config-testnet-turbo.toml"

	// Log-configuration directory passed to the launched process.
	DefaultLaunchLog = "run/log_config"
)

// Native build dependencies installed when the manifest does not give an
// explicit install list.
var DefaultPackages = []string{"clang", "cmake", "build-essential", "pkg-config", "libssl-dev"}

var ErrManifest = errors.New("invalid manifest")

// The root of a build-and-launch declaration.
type Manifest struct {
	Base     Base     `toml:"base"`
	Mounts   []Mount  `toml:"mount"`
	Source   Source   `toml:"source"`
	Packages Packages `toml:"packages"`
	Build    Build    `toml:"build"`
	Launch   Launch   `toml:"launch"`
}

// Identifies the base toolchain image all build stages execute within.
//
// The image reference is either a path to an OCI archive (resolved relative
// to the build context) or the tag of an image already imported into the
// runtime's namespace.
type Base struct {
	Image string `toml:"image"`
}

// Declares a persistent-data mount point stamped into the output image.
//
// The declaration is advisory metadata: nothing is written to the path at
// build time, and the host binds durable storage to it at launch.
type Mount struct {
	Path string `toml:"path"`
}

// Controls where the build context is copied inside the image filesystem.
type Source struct {
	Dest string `toml:"dest"`
}

// Declares the native packages installed before compilation.
//
// The package index is refreshed first unless Update is explicitly false.
// Installation is non-interactive; any resolution failure aborts the build.
type Packages struct {
	Update  *bool    `toml:"update"`
	Install []string `toml:"install"`
}

// Describes the release compilation step.
type Build struct {
	Command  string            `toml:"command"`
	Workdir  string            `toml:"workdir"`
	Artifact string            `toml:"artifact"`
	Shell    string            `toml:"shell"`
	Env      map[string]string `toml:"env"`
}

// Describes the default launch invocation baked into the output image.
type Launch struct {
	Config string `toml:"config"`
	Log    string `toml:"log"`
}

// Reads and parses a manifest file, applying defaults and validating the
// result.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	return Parse(data)
}

// Parses raw manifest TOML, applying defaults and validating the result.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Fills unset fields with their documented defaults.
func (m *Manifest) applyDefaults() {
	if m.Source.Dest == "" {
		m.Source.Dest = DefaultSourceDest
	}
	if m.Build.Workdir == "" {
		m.Build.Workdir = m.Source.Dest
	}
	if m.Build.Shell == "" {
		m.Build.Shell = DefaultShell
	}
	if m.Packages.Install == nil {
		m.Packages.Install = append([]string(nil), DefaultPackages...)
	}
	if m.Launch.Config == "" {
		m.Launch.Config = DefaultLaunchConfig
	}
	if m.Launch.Log == "" {
		m.Launch.Log = DefaultLaunchLog
	}
}

// Checks the manifest for fields the pipeline cannot proceed without.
func (m *Manifest) Validate() error {
	if m.Base.Image == "" {
		return fmt.Errorf("%w: base.image is required", ErrManifest)
	}
	if m.Build.Command == "" {
		return fmt.Errorf("%w: build.command is required", ErrManifest)
	}
	if m.Build.Artifact == "" {
		return fmt.Errorf("%w: build.artifact is required", ErrManifest)
	}
	if !filepath.IsAbs(m.Source.Dest) {
		return fmt.Errorf("%w: source.dest %q must be absolute", ErrManifest, m.Source.Dest)
	}
	for _, mount := range m.Mounts {
		if !filepath.IsAbs(mount.Path) {
			return fmt.Errorf("%w: mount path %q must be absolute", ErrManifest, mount.Path)
		}
	}
	return nil
}

// Returns the declared mount paths in declaration order.
func (m *Manifest) MountPaths() []string {
	paths := make([]string, 0, len(m.Mounts))
	for _, mount := range m.Mounts {
		paths = append(paths, mount.Path)
	}
	return paths
}

// Whether the package index should be refreshed before installation.
//
// Defaults to true whenever packages are installed.
func (p Packages) RefreshIndex() bool {
	if p.Update != nil {
		return *p.Update
	}
	return len(p.Install) > 0
}

// Returns the full default command line for the launched process: the
// artifact followed by the configuration and log flags.
func (l Launch) Command(artifact string) []string {
	return []string{artifact, "--config", l.Config, "--log", l.Log}
}
