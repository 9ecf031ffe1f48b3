package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "slipway"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/slipway or /run/user/<uid>/slipway
//	macOS:   ~/Library/Caches/slipway/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, toolName)
	}
	return filepath.Join(xdg.CacheHome, toolName, "run")
}

// Default path to the Unix domain socket for CLI-to-daemon communication.
//
//	Linux:   $XDG_RUNTIME_DIR/slipway/slipway.sock
//	macOS:   ~/Library/Caches/slipway/run/slipway.sock
func Socket() string {
	return filepath.Join(Runtime(), toolName+".sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/slipway/slipway.pid
//	macOS:   ~/Library/Caches/slipway/run/slipway.pid
func PIDFile() string {
	return filepath.Join(Runtime(), toolName+".pid")
}

// Path to the directory for durable data owned by slipway.
//
//	Linux:   $XDG_DATA_HOME/slipway or ~/.local/share/slipway
//	macOS:   ~/Library/Application Support/slipway
func Data() string {
	return filepath.Join(xdg.DataHome, toolName)
}

// Default directory backing persistent-data mounts for launched containers.
//
// Each container gets a subdirectory per declared mount point. The data here
// outlives the container's process lifetime.
func Volumes() string {
	return filepath.Join(Data(), "volumes")
}
