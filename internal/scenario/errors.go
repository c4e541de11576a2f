package scenario

import (
	"errors"
	"fmt"
)

// Common errors for the scenario engine
var (
	// ErrInvalidScenario indicates the document failed schema validation or decoding
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrInvalidAction indicates an invalid or unsupported action
	ErrInvalidAction = errors.New("invalid action")

	// ErrMissingParameter indicates a required parameter is missing
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrInvalidParameter indicates a parameter has an invalid value
	ErrInvalidParameter = errors.New("invalid parameter value")

	// ErrUnknownAccount indicates a name that is neither declared nor an address
	ErrUnknownAccount = errors.New("unknown account")

	// ErrConservation indicates a pool balance that does not match its recorded flows
	ErrConservation = errors.New("pool balance does not match recorded flows")
)

// ParameterError represents an error with a specific parameter
type ParameterError struct {
	Parameter string
	Message   string
	Err       error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter '%s': %s", e.Parameter, e.Message)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

func missingParam(name string) error {
	return &ParameterError{Parameter: name, Message: "is required", Err: ErrMissingParameter}
}

func invalidParam(name string, value any) error {
	return &ParameterError{Parameter: name, Message: fmt.Sprintf("unusable value %v", value), Err: ErrInvalidParameter}
}

// StepError represents an error that occurred during step execution
type StepError struct {
	StepName  string
	StepIndex int
	Action    ActionType
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d '%s' (action: %s): %v", e.StepIndex, e.StepName, e.Action, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
