package model

import "strings"

// Stage is a job's position in the pipeline.
type Stage string

// Pipeline stages, in board order.
const (
	StageInTray             Stage = "In Tray"
	StageScoping            Stage = "Scoping"
	StageSubmittedToCarrier Stage = "Submitted to Carrier"
	StageAwaitingCarrier    Stage = "Awaiting Carrier"
	StageScheduled          Stage = "Scheduled"
	StageReadyForCutover    Stage = "Ready for Cutover"
	StageComplete           Stage = "Complete"
	StageOnHold             Stage = "On Hold"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageInTray,
	StageScoping,
	StageSubmittedToCarrier,
	StageAwaitingCarrier,
	StageScheduled,
	StageReadyForCutover,
	StageComplete,
	StageOnHold,
}

// IsValid reports whether s is one of the pipeline stages.
func (s Stage) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Prev returns the stage to the left of s on the board.
// The first stage and unknown stages map to themselves.
func (s Stage) Prev() Stage {
	i := s.Index()
	if i <= 0 {
		return s
	}
	return Stages[i-1]
}

// Next returns the stage to the right of s on the board.
// The last stage and unknown stages map to themselves.
func (s Stage) Next() Stage {
	i := s.Index()
	if i < 0 || i == len(Stages)-1 {
		return s
	}
	return Stages[i+1]
}

// ParseStage resolves a stage name. Exact names win; otherwise the match
// is case-insensitive and ignores surrounding whitespace.
func ParseStage(name string) (Stage, bool) {
	if st := Stage(name); st.IsValid() {
		return st, true
	}
	trimmed := strings.TrimSpace(name)
	for _, st := range Stages {
		if strings.EqualFold(string(st), trimmed) {
			return st, true
		}
	}
	return "", false
}
