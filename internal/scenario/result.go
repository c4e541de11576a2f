package scenario

import (
	"encoding/json"
	"time"
)

// ExecutionResult represents the complete result of a scenario execution
type ExecutionResult struct {
	ScenarioID   string       `json:"scenario_id"`
	ScenarioName string       `json:"scenario_name"`
	RunID        string       `json:"run_id"`
	Store        string       `json:"store,omitempty"`
	Success      bool         `json:"success"`
	DurationMS   int64        `json:"duration_ms"`
	StartedAt    time.Time    `json:"started_at"`
	CompletedAt  time.Time    `json:"completed_at"`
	Steps        []StepResult `json:"steps"`
	Error        string       `json:"error,omitempty"`
	Pools        []PoolFlow   `json:"pools,omitempty"`
}

// StepResult represents the result of a single step execution
type StepResult struct {
	StepName   string            `json:"step_name"`
	StepIndex  int               `json:"step_index"`
	Action     ActionType        `json:"action"`
	Success    bool              `json:"success"`
	Output     map[string]any    `json:"output,omitempty"`
	Error      string            `json:"error,omitempty"`
	Assertions []AssertionResult `json:"assertions,omitempty"`
}

// AssertionResult compares one expected key with the step output
type AssertionResult struct {
	Key      string `json:"key"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
}

// NewExecutionResult creates a new ExecutionResult with initialized values
func NewExecutionResult(scenarioID, scenarioName string) *ExecutionResult {
	return &ExecutionResult{
		ScenarioID:   scenarioID,
		ScenarioName: scenarioName,
		Success:      true,
		StartedAt:    time.Now(),
		Steps:        make([]StepResult, 0),
	}
}

// Complete marks the execution as complete and calculates duration
func (r *ExecutionResult) Complete() {
	r.CompletedAt = time.Now()
	r.DurationMS = r.CompletedAt.Sub(r.StartedAt).Milliseconds()
}

// AddStepResult adds a step result and updates overall success
func (r *ExecutionResult) AddStepResult(step StepResult) {
	r.Steps = append(r.Steps, step)
	if !step.Success {
		r.Success = false
	}
}

// SetError marks the execution as failed with an error
func (r *ExecutionResult) SetError(err error) {
	r.Success = false
	r.Error = err.Error()
}

// NewStepResult creates a new StepResult with initialized values
func NewStepResult(stepName string, stepIndex int, action ActionType) *StepResult {
	return &StepResult{
		StepName:  stepName,
		StepIndex: stepIndex,
		Action:    action,
		Success:   true,
		Output:    make(map[string]any),
	}
}

// SetError marks the step as failed with an error
func (r *StepResult) SetError(err error) {
	r.Success = false
	r.Error = err.Error()
}

// AddAssertionResult adds an assertion result and updates step success
func (r *StepResult) AddAssertionResult(assertion AssertionResult) {
	r.Assertions = append(r.Assertions, assertion)
	if !assertion.Passed {
		r.Success = false
	}
}

// FailedSteps returns the steps that did not pass
func (r *ExecutionResult) FailedSteps() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.Success {
			failed = append(failed, s)
		}
	}
	return failed
}

// ToPrettyJSON converts the result to indented JSON bytes
func (r *ExecutionResult) ToPrettyJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
