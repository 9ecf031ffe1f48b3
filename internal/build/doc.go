// Package build orchestrates the build half of the build-and-launch
// pipeline.
//
// A build executes a manifest against a container runtime as a strictly
// linear sequence of stages: select the base toolchain image, declare
// persistent-data mounts, copy the build context into the container,
// install native build dependencies, compile the release artifact, and
// fix the default launch command by exporting the container as an OCI
// image. Each stage depends on the filesystem state left by its
// predecessor, so there is no concurrency between stages and no retry:
// the first failure moves the pipeline to a terminal failed phase and
// aborts everything after it.
//
// Stage progress is tracked by an explicit [Phase] value. A successful
// build ends in [PhaseImageReady] with the archive written to the output
// directory; any failure ends in [PhaseBuildFailed] with no archive.
//
// Example usage:
//
//	result, err := build.Run(ctx, build.NewRuntime(rt), build.Options{
//	    Manifest: m,
//	    Resource: "node",
//	    Output:   "dist",
//	    Root:     ".",
//	})
//	if err != nil {
//	    return err
//	}
package build
