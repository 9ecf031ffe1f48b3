package protocol

// Lifecycle state of a container as reported by the daemon.
type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerStopped    ContainerState = "stopped"
	ContainerNotCreated ContainerState = "not-created"
)

// Asks the daemon to execute a build manifest.
type BuildRequest struct {
	ManifestPath string `json:"manifest_path"`      // Path to the slipway.toml to execute.
	Resource     string `json:"resource,omitempty"` // Name prefix for build containers. Defaults to the context directory name.
	Output       string `json:"output"`             // Directory for the exported image archive.
	Root         string `json:"root"`               // Build context directory.
	Platform     string `json:"platform,omitempty"` // Target platform. Empty uses the host platform.
}

// Reports a completed build.
type BuildResult struct {
	Output string `json:"output"` // Directory containing the exported image.
	Phase  string `json:"phase"`  // Terminal pipeline phase, always "IMAGE_READY" on success.
}

// Asks the daemon to launch a container from a built image.
type LaunchRequest struct {
	Tag    string         `json:"tag"`              // Tag of the image to launch.
	ID     string         `json:"id,omitempty"`     // Container ID. Empty generates one.
	Args   []string       `json:"args,omitempty"`   // Full command override.
	Mounts []MountBinding `json:"mounts,omitempty"` // Host directories bound to declared mounts.
}

// Binds a host directory to a container mount point.
type MountBinding struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Reports a finished launch.
//
// A non-zero exit code is not an error at this layer; the launched process
// is opaque and its failure modes are its own.
type LaunchResult struct {
	ExitCode int `json:"exit_code"`
}

// Asks the daemon to import an OCI archive under a tag.
type ImageImportRequest struct {
	Path string `json:"path"`
	Tag  string `json:"tag"`
}

// Asks the daemon to remove an image and its containers.
type ImageDestroyRequest struct {
	Tag string `json:"tag"`
}

// Asks the daemon to stop a running container.
type ContainerStopRequest struct {
	ID string `json:"id"`
}

// Asks the daemon for a container's state.
type ContainerStatusRequest struct {
	ID string `json:"id"`
}

// Reports a container's state.
type ContainerStatusResult struct {
	State ContainerState `json:"state"`
}

// Reports daemon health and counters.
type StatusResult struct {
	Running  bool   `json:"running"`
	Version  string `json:"version"`
	Pid      int    `json:"pid"`
	Uptime   string `json:"uptime"`
	Builds   int    `json:"builds"`
	Launches int    `json:"launches"`
}

// Carries an error message back to the client.
type ErrorResult struct {
	Message string `json:"message"`
}
