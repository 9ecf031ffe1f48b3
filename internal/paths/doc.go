// Provides platform-appropriate paths for the slipway tool.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The tool name "slipway" is used as the subdirectory
// under each base path. Runtime paths hold the daemon socket and PID file;
// data paths hold the host directories backing persistent-data mounts.
package paths
