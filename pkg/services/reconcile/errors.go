package reconcile

import (
	"errors"
	"fmt"
)

var (
	ErrNoData        = errors.New("no requirements or funding data available")
	ErrCardinality   = errors.New("join is not one-to-one")
	ErrInvalidPlan   = errors.New("invalid plan")
	ErrNoClusterData = errors.New("no cluster requirements or funding")
)

// PlanError aborts the processing of a single plan.
type PlanError struct {
	PlanID  string
	Message string
	Err     error
}

func (e *PlanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan %s: %v", e.PlanID, e.Err)
	}
	return fmt.Sprintf("plan %s: %s", e.PlanID, e.Message)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}
