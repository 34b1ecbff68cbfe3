package checkout

// Stage is the checkout wizard's current step. Owned exclusively by the
// Session aggregate; nothing else assigns it.
type Stage string

const (
	StageSelection      Stage = "SELECTION"
	StagePaymentHandoff Stage = "PAYMENT_HANDOFF"
	StageConfirmation   Stage = "CONFIRMATION"
	StageTerminated     Stage = "TERMINATED"
)

// validTransitions is the stage machine. The hosted-payment branch leaves the
// process from PAYMENT_HANDOFF (modeled as TERMINATED); the direct-booking
// branch goes through CONFIRMATION. Both branches share SELECTION and its
// validation gate.
var validTransitions = map[Stage][]Stage{
	StageSelection:      {StagePaymentHandoff, StageConfirmation, StageTerminated},
	StagePaymentHandoff: {StageSelection, StageTerminated},
	StageConfirmation:   {StageTerminated},
	StageTerminated:     {},
}

func (s Stage) CanTransitionTo(target Stage) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Stage) IsTerminal() bool {
	allowed, ok := validTransitions[s]
	return !ok || len(allowed) == 0
}

func (s Stage) String() string { return string(s) }
