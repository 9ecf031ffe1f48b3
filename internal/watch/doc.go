// Package watch monitors a build context for source changes.
//
// A watcher observes every directory under the configured root and
// coalesces filesystem events into change notifications after a short
// debounce window. The dev loop in the CLI consumes the notifications
// to trigger rebuilds.
//
// Ignore patterns use doublestar globs. Version control metadata and
// editor temp files are ignored by default; callers typically add the
// image output directory so exported archives do not retrigger builds.
package watch
