// Package manifest defines the declarative build-and-launch manifest.
//
// A manifest (conventionally slipway.toml, next to the source it describes)
// declares everything the build pipeline needs: the base toolchain image,
// the persistent-data mount points to stamp into the output image, where
// the source tree lands inside the build container, which native packages
// are installed before compilation, the release build command and the
// artifact it produces, and the default launch flags baked into the image
// entrypoint.
//
// Loading applies documented defaults and validates the result, so callers
// always see a complete manifest:
//
//	m, err := manifest.Load("slipway.toml")
//	if err != nil {
//	    return err
//	}
//
//	entrypoint := m.Launch.Command(m.Build.Artifact)
package manifest
