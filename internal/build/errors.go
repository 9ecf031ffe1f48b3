package build

import "errors"

// Build failures map onto the stage that produced them. All of them are
// fatal: the pipeline aborts, no image is exported, and nothing is retried.
var (
	ErrBuild               = errors.New("build failed")
	ErrProvisioning        = errors.New("base image unavailable")
	ErrCopy                = errors.New("source copy failed")
	ErrDependencyInstall   = errors.New("dependency installation failed")
	ErrCompilation         = errors.New("compilation failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
)
