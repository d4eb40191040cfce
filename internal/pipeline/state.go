package pipeline

// State is a step of a run.
type State int

const (
	StateInit State = iota
	StateVerifyingEnvironment
	StateVerifyingSources
	StateLoadingProject
	StateGeneratingIcons
	StateGeneratingSplashscreens
	StateGeneratingPreviews
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:                    "init",
	StateVerifyingEnvironment:    "verifying environment",
	StateVerifyingSources:        "verifying sources",
	StateLoadingProject:          "loading project",
	StateGeneratingIcons:         "generating icons",
	StateGeneratingSplashscreens: "generating splashscreens",
	StateGeneratingPreviews:      "generating previews",
	StateDone:                    "done",
	StateFailed:                  "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Generating reports whether s is one of the generation stages.
func (s State) Generating() bool {
	return s >= StateGeneratingIcons && s <= StateGeneratingPreviews
}

// Outcome is the terminal classification of a run.
type Outcome int

const (
	OutcomeClean Outcome = iota
	OutcomeCompletedWithFailures
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClean:
		return "clean"
	case OutcomeCompletedWithFailures:
		return "completed with failures"
	case OutcomeAborted:
		return "aborted"
	}
	return "unknown"
}
