package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrNonFiniteFeatures = errors.New("non-finite feature value")
	ErrRunInProgress     = errors.New("another pass holds the run lock")
)

// ComputeError is a failure isolated to one instrument. The pass skips the
// instrument and carries on.
type ComputeError struct {
	ISIN  string
	Stage string
	Err   error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("instrument %s: %s: %v", e.ISIN, e.Stage, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }
