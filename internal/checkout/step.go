package checkout

import "fmt"

// Step is a stage of the checkout wizard.
type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	StepConfirmed
)

var stepNames = map[Step]string{
	StepShipping:  "shipping",
	StepPayment:   "payment",
	StepReview:    "review",
	StepConfirmed: "confirmed",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// MarshalText renders the step by name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transition returns the step that follows current given the validation
// result for current. Any error blocks the move. Review and Confirmed are
// never advanced here; leaving Review happens only through a submit.
func Transition(current Step, errs FieldErrors) Step {
	if !errs.OK() {
		return current
	}
	switch current {
	case StepShipping:
		return StepPayment
	case StepPayment:
		return StepReview
	default:
		return current
	}
}

// Back returns the previous step. Entered data is never touched.
func Back(current Step) Step {
	switch current {
	case StepPayment:
		return StepShipping
	case StepReview:
		return StepPayment
	default:
		return current
	}
}
