package shared

import (
	"context"
	"fmt"
)

// SagaStep is a single step in a multi-step workflow. Run performs the
// step's remote effect; Compensate undoes it if a later step fails.
// A nil Compensate marks the step as not requiring compensation.
type SagaStep struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// SagaError reports a failed saga run: the step that failed, the original
// error, and any compensation failures. A non-empty CompensationErrors slice
// means earlier steps could not be undone and the remote state is inconsistent.
type SagaError struct {
	FailedStep         string
	Cause              error
	CompensationErrors []error
}

// Error implements the error interface
func (e *SagaError) Error() string {
	if len(e.CompensationErrors) > 0 {
		return fmt.Sprintf("saga step %q failed and %d compensation(s) also failed: %v",
			e.FailedStep, len(e.CompensationErrors), e.Cause)
	}
	return fmt.Sprintf("saga step %q failed: %v", e.FailedStep, e.Cause)
}

// Unwrap returns the original step error
func (e *SagaError) Unwrap() error {
	return e.Cause
}

// Inconsistent reports whether compensation itself failed, leaving
// partial remote state behind.
func (e *SagaError) Inconsistent() bool {
	return len(e.CompensationErrors) > 0
}

// Saga runs an ordered list of steps with compensating rollback. On the
// first step failure, the Compensate functions of all previously completed
// steps run in reverse order. Compensation is attempted for every completed
// step even when an earlier compensation fails.
type Saga struct {
	steps []SagaStep
}

// NewSaga creates an empty saga
func NewSaga() *Saga {
	return &Saga{}
}

// AddStep appends a step to the saga
func (s *Saga) AddStep(step SagaStep) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the saga. It returns nil when every step succeeds and a
// *SagaError otherwise.
func (s *Saga) Execute(ctx context.Context) error {
	completed := make([]SagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		if err := step.Run(ctx); err != nil {
			sagaErr := &SagaError{FailedStep: step.Name, Cause: err}
			for i := len(completed) - 1; i >= 0; i-- {
				if completed[i].Compensate == nil {
					continue
				}
				if compErr := completed[i].Compensate(ctx); compErr != nil {
					sagaErr.CompensationErrors = append(sagaErr.CompensationErrors,
						fmt.Errorf("compensating %q: %w", completed[i].Name, compErr))
				}
			}
			return sagaErr
		}
		completed = append(completed, step)
	}
	return nil
}
