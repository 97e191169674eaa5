package dvd

// RunState describes the conversion session status.
type RunState string

const (
	StateIdle       RunState = "idle"
	StateReady      RunState = "ready"
	StateConverting RunState = "converting"
)

// Outcome classifies a finished run.
type Outcome string

const (
	OutcomeAll  Outcome = "all"
	OutcomeSome Outcome = "some"
	OutcomeNone Outcome = "none"
)

// Report aggregates per-item results of one conversion run.
type Report struct {
	Succeeded int
	Total     int
}

// Outcome reports whether all, some, or none of the items converted.
func (r Report) Outcome() Outcome {
	switch {
	case r.Total > 0 && r.Succeeded == r.Total:
		return OutcomeAll
	case r.Succeeded > 0:
		return OutcomeSome
	default:
		return OutcomeNone
	}
}
