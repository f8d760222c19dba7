package state

import "time"

// ApplyPhase is the display state of the "apply estimate" action.
type ApplyPhase int

const (
	ApplyIdle ApplyPhase = iota
	// ApplyConfirming shows the confirmation before the width is written.
	ApplyConfirming
	// ApplyApplied holds the confirmation after the width was written.
	ApplyApplied
)

func (p ApplyPhase) String() string {
	switch p {
	case ApplyConfirming:
		return "confirming"
	case ApplyApplied:
		return "applied"
	default:
		return "idle"
	}
}

// Delays between the phases of the apply sequence.
const (
	ConfirmDelay = 800 * time.Millisecond
	SettleDelay  = 500 * time.Millisecond
)

// ApplyStep asks the caller to call Advance with Seq once After has elapsed.
// A zero After means the sequence is finished.
type ApplyStep struct {
	Seq   uint64
	Phase ApplyPhase
	After time.Duration
}

// ApplySequence drives Idle -> Confirming -> Applied -> Idle.
// Every step carries a fresh sequence number; ticks with an outdated number
// are ignored, which is how Cancel disarms timers that are already running.
type ApplySequence struct {
	phase ApplyPhase
	seq   uint64
	value float64
}

// Phase returns the current phase.
func (s *ApplySequence) Phase() ApplyPhase {
	return s.phase
}

// Value returns the width being applied.
func (s *ApplySequence) Value() float64 {
	return s.value
}

// Begin starts a sequence for value. It refuses while one is running.
func (s *ApplySequence) Begin(value float64) (ApplyStep, bool) {
	if s.phase != ApplyIdle {
		return ApplyStep{}, false
	}
	s.seq++
	s.phase = ApplyConfirming
	s.value = value
	return ApplyStep{Seq: s.seq, Phase: s.phase, After: ConfirmDelay}, true
}

// Advance moves to the next phase if seq is current. fire is true exactly
// once per sequence, on the transition that must write the width.
func (s *ApplySequence) Advance(seq uint64) (next ApplyStep, fire, ok bool) {
	if seq != s.seq || s.phase == ApplyIdle {
		return ApplyStep{}, false, false
	}

	s.seq++
	switch s.phase {
	case ApplyConfirming:
		s.phase = ApplyApplied
		return ApplyStep{Seq: s.seq, Phase: s.phase, After: SettleDelay}, true, true
	default:
		s.phase = ApplyIdle
		return ApplyStep{Seq: s.seq, Phase: s.phase}, false, true
	}
}

// Cancel returns to Idle and invalidates any pending step.
func (s *ApplySequence) Cancel() {
	s.seq++
	s.phase = ApplyIdle
}
