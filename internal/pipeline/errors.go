package pipeline

import (
	"errors"
	"fmt"

	"idea2app/internal/artifact"
	"idea2app/internal/project"
)

var (
	// ErrInsufficientCredits means the ledger refused the charge.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrGenerationInProgress means the same artifact type is already being
	// generated for the project.
	ErrGenerationInProgress = errors.New("generation already in progress")
	// ErrProjectNotFound covers both missing and foreign projects.
	ErrProjectNotFound = project.ErrNotFound
)

// PrerequisiteError is returned when a dependent artifact is requested
// before the artifact it builds on exists.
type PrerequisiteError struct {
	Type    artifact.Type
	Missing artifact.Type
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("cannot generate %s: %s does not exist yet", e.Type, e.Missing)
}
