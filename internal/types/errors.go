// README: Error taxonomy shared by the lifecycle modules. Module errors wrap these.
package types

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrEvidenceRequired      = errors.New("evidence required")
	ErrEvidenceAlreadyExists = errors.New("evidence already exists")
	ErrGateNotSatisfied      = errors.New("completion gate not satisfied")
	ErrValidation            = errors.New("validation error")
	ErrTimeout               = errors.New("timeout")

	// ErrConflict is returned by stores when an optimistic version check fails.
	ErrConflict = errors.New("version conflict")
)
