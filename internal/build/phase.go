package build

import "fmt"

// Tracks pipeline progress through the linear build sequence.
//
// Phases advance strictly in order; there is no branching and no loop.
// [PhaseImageReady] and [PhaseBuildFailed] are terminal. Any stage failure
// moves the pipeline to [PhaseBuildFailed], from which nothing advances.
type Phase int

const (
	PhaseUnbuilt Phase = iota
	PhaseBaseSelected
	PhaseSourceCopied
	PhaseDependenciesInstalled
	PhaseCompiled
	PhaseLaunchConfigured
	PhaseImageReady
	PhaseBuildFailed
)

var phaseNames = map[Phase]string{
	PhaseUnbuilt:               "UNBUILT",
	PhaseBaseSelected:          "BASE_SELECTED",
	PhaseSourceCopied:          "SOURCE_COPIED",
	PhaseDependenciesInstalled: "DEPENDENCIES_INSTALLED",
	PhaseCompiled:              "COMPILED",
	PhaseLaunchConfigured:      "LAUNCH_CONFIGURED",
	PhaseImageReady:            "IMAGE_READY",
	PhaseBuildFailed:           "BUILD_FAILED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Whether the phase admits no further transitions.
func (p Phase) Terminal() bool {
	return p == PhaseImageReady || p == PhaseBuildFailed
}

// Validates a phase transition.
//
// From any non-terminal phase the pipeline may fail, or advance to exactly
// the next phase in the sequence. Everything else is a programming error.
func transition(from, to Phase) error {
	if from.Terminal() {
		return fmt.Errorf("%w: no transition out of terminal phase %s", ErrBuild, from)
	}
	if to == PhaseBuildFailed {
		return nil
	}
	if to != from+1 {
		return fmt.Errorf("%w: illegal transition %s -> %s", ErrBuild, from, to)
	}
	return nil
}
