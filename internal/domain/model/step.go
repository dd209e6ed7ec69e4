// File: internal/domain/model/step.go
package model

import "seller-onboarding/internal/domain"

// Step is a position in the fixed onboarding sequence. Each step gates the
// single question the assistant is allowed to ask during that turn.
type Step string

const (
	StepLanguage    Step = "language"
	StepWelcome     Step = "welcome"
	StepStoreName   Step = "store_name"
	StepCategory    Step = "category"
	StepDescription Step = "description"
	StepPhone       Step = "phone"
	StepComplete    Step = "complete"
)

// stepOrder is the total order of the flow. Transitions only ever move
// forward one position, or stay in place on validation failure.
var stepOrder = []Step{
	StepLanguage,
	StepWelcome,
	StepStoreName,
	StepCategory,
	StepDescription,
	StepPhone,
	StepComplete,
}

// FirstStep returns the entry point of the flow.
func FirstStep() Step { return stepOrder[0] }

// ParseStep validates a caller-supplied step name. The empty string maps to
// the first step so the bootstrap turn can omit it.
func ParseStep(s string) (Step, error) {
	if s == "" {
		return FirstStep(), nil
	}
	for _, st := range stepOrder {
		if Step(s) == st {
			return st, nil
		}
	}
	return "", domain.ErrInvalidArgument
}

// Next returns the successor step. The terminal step is its own successor.
func (s Step) Next() Step {
	for i, st := range stepOrder {
		if st == s && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return StepComplete
}

// Terminal reports whether the flow is finished at this step.
func (s Step) Terminal() bool { return s == StepComplete }

func (s Step) String() string { return string(s) }
