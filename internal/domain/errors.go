package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("domain: not found")
	ErrConflict   = errors.New("domain: conflict")
	ErrValidation = errors.New("domain: validation failed")

	// ErrDependencyCycle marks a task edge that would make the user's
	// dependency graph cyclic. Callers reject the single offending edge and
	// continue with the rest of the batch.
	ErrDependencyCycle = errors.New("domain: dependency cycle")

	ErrSkillNotFound = errors.New("domain: skill not found")
	ErrToolNotFound  = errors.New("domain: tool not found")
)
