// Package server implements the slipway daemon.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands
// from the slipway CLI. Each connection carries a single request-response
// exchange: the client sends a newline-delimited JSON envelope, the
// server dispatches the command, and writes the result back before
// closing the connection.
//
// Supported commands cover building node images, launching them, image
// import and removal, and daemon status and shutdown. Build commands are
// delegated to the build package, which in turn uses the runtime package
// for container operations against containerd.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    ContainerdAddress:   "/run/containerd/containerd.sock",
//	    ContainerdNamespace: "slipway",
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
