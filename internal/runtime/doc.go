// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image import
// and container creation. OCI archives are imported, tagged with a
// deterministic content hash, unpacked for the target platform, and used
// to create containers with overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Commands can be
// executed inside the container, files can be copied in and out as tar
// streams, and the final filesystem state can be committed and exported
// as a new OCI archive whose config carries the default launch command
// and declared persistent-data mount points. When the container is no
// longer needed it should be destroyed to release its snapshot and task
// resources.
//
// [Runtime.Launch] is the run-time half: it instantiates a built image as
// a single foreground container, binds host storage to each declared
// mount, and blocks until the process exits, returning its exit code
// unchanged.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "slipway")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	tag, err := rt.ResolveBase(ctx, "images/rust-1.70.tar", ".")
//	if err != nil {
//	    return err
//	}
//
//	ctr, err := rt.StartContainer(ctx, tag, "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "cargo build --release", nil, "/app")
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Entrypoint: []string{"/app/target/release/node"},
//	    Volumes:    []string{"/data"},
//	})
package runtime
